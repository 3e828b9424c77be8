package getEventBookings

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

type BookingsResponse struct {
	response.Response
	Bookings    []models.Booking `json:"bookings"`
	BookedSeats int              `json:"booked_seats"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventBookingsGetter
type EventBookingsGetter interface {
	GetEventBookings(ctx context.Context, eventID int64) ([]models.Booking, error)
	BookedSeats(ctx context.Context, eventID int64) (int, error)
}

func New(log *slog.Logger, getter EventBookingsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.getEventBookings.New"

		log = log.With(slog.String("op", op))

		eventIdStr := chi.URLParam(r, "eventId")
		if eventIdStr == "" {
			log.Error("event id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("event id is required"))
			return
		}

		eventID, err := strconv.ParseInt(eventIdStr, 10, 64)
		if err != nil {
			log.Error("invalid event id format", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid event id format"))
			return
		}

		log = log.With(slog.Int64("event_id", eventID))

		bookings, err := getter.GetEventBookings(r.Context(), eventID)
		if err != nil {
			log.Error("failed to get event bookings", sl.Err(err))

			if errors.Is(err, storage.ErrEventNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
				return
			}

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get event bookings"))
			return
		}

		bookedSeats, err := getter.BookedSeats(r.Context(), eventID)
		if err != nil {
			log.Error("failed to get booked seats", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get event bookings"))
			return
		}

		log.Info("event bookings retrieved",
			slog.Int("count", len(bookings)),
			slog.Int("booked_seats", bookedSeats),
		)

		render.JSON(w, r, BookingsResponse{
			Response:    response.OK(),
			Bookings:    bookings,
			BookedSeats: bookedSeats,
		})
	}
}
