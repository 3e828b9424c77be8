package getBooking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BookingResponse struct {
	response.Response
	Booking *models.Booking `json:"booking"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingGetter
type BookingGetter interface {
	GetBooking(ctx context.Context, bookingID int64) (*models.Booking, error)
}

func New(log *slog.Logger, getter BookingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.getBooking.New"

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

		booking, err := getter.GetBooking(r.Context(), bookingID)
		if err != nil {
			log.Error("failed to get booking", sl.Err(err))

			if errors.Is(err, storage.ErrBookingNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("booking not found"))
				return
			}

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get booking"))
			return
		}

		render.JSON(w, r, BookingResponse{
			Response: response.OK(),
			Booking:  booking,
		})
	}
}
