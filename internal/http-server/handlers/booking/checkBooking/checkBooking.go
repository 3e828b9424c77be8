package checkBooking

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

	"github.com/go-chi/render"
)

type CheckResponse struct {
	response.Response
	HasActiveBooking bool `json:"has_active_booking"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingChecker
type BookingChecker interface {
	HasActiveBooking(ctx context.Context, eventID int64, userID string) (bool, error)
}

func New(log *slog.Logger, checker BookingChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.checkBooking.New"

		log = log.With(slog.String("op", op))

		eventIdStr := r.URL.Query().Get("event_id")
		userID := r.URL.Query().Get("user_id")

		if eventIdStr == "" || userID == "" {
			log.Error("event_id and user_id are required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("event_id and user_id are required"))
			return
		}

		eventID, err := strconv.ParseInt(eventIdStr, 10, 64)
		if err != nil {
			log.Error("invalid event id format", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid event id format"))
			return
		}

		hasBooking, err := checker.HasActiveBooking(r.Context(), eventID, userID)
		if err != nil {
			log.Error("failed to check booking", sl.Err(err))

			switch {
			case errors.Is(err, storage.ErrEventNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
			case errors.Is(err, service.ErrEmptyUserID):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to check booking"))
			}
			return
		}

		render.JSON(w, r, CheckResponse{
			Response:         response.OK(),
			HasActiveBooking: hasBooking,
		})
	}
}
