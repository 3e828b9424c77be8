package getUserBookings

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/models"
	"ticketBooker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BookingsResponse struct {
	response.Response
	Bookings []models.Booking `json:"bookings"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=UserBookingsGetter
type UserBookingsGetter interface {
	GetUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
}

func New(log *slog.Logger, getter UserBookingsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.getUserBookings.New"

		log = log.With(slog.String("op", op))

		userID := chi.URLParam(r, "userId")
		if userID == "" {
			log.Error("user id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("user id is required"))
			return
		}

		log = log.With(slog.String("user_id", userID))

		bookings, err := getter.GetUserBookings(r.Context(), userID)
		if err != nil {
			log.Error("failed to get user bookings", sl.Err(err))

			if errors.Is(err, service.ErrEmptyUserID) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
				return
			}

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get user bookings"))
			return
		}

		log.Info("user bookings retrieved", slog.Int("count", len(bookings)))

		render.JSON(w, r, BookingsResponse{
			Response: response.OK(),
			Bookings: bookings,
		})
	}
}
