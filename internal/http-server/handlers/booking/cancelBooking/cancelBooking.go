package cancelBooking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/service"
	"ticketBooker/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingCanceler
type BookingCanceler interface {
	CancelBooking(ctx context.Context, bookingID int64) error
}

func New(log *slog.Logger, canceler BookingCanceler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.cancelBooking.New"

		log = log.With(slog.String("op", op))

		bookingIdStr := chi.URLParam(r, "id")
		if bookingIdStr == "" {
			log.Error("booking id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("booking id is required"))
			return
		}

		bookingID, err := strconv.ParseInt(bookingIdStr, 10, 64)
		if err != nil {
			log.Error("invalid booking id format", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid booking id format"))
			return
		}

		log = log.With(slog.Int64("booking_id", bookingID))

		if err = canceler.CancelBooking(r.Context(), bookingID); err != nil {
			log.Error("failed to cancel booking", sl.Err(err))

			switch {
			case errors.Is(err, storage.ErrBookingNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("booking not found"))
			case errors.Is(err, service.ErrBookingCanceled),
				errors.Is(err, service.ErrEventPassed):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(err.Error()))
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to cancel booking"))
			}
			return
		}

		log.Info("booking canceled")

		render.JSON(w, r, response.OK())
	}
}
