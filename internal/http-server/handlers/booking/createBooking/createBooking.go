package createBooking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/models"
	"ticketBooker/internal/service"
	"ticketBooker/internal/storage"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type BookingRequest struct {
	EventID int64  `json:"event_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
	Seats   int    `json:"seats" validate:"required,gt=0"`
}

type BookingResponse struct {
	response.Response
	Booking *models.Booking `json:"booking"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingCreator
type BookingCreator interface {
	CreateBooking(ctx context.Context, eventID int64, userID string, seats int) (*models.Booking, error)
}

func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.createBooking.New"

		log = log.With(slog.String("op", op))

		var req BookingRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Error("invalid request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
				return
			}
		}

		booking, err := creator.CreateBooking(r.Context(), req.EventID, req.UserID, req.Seats)
		if err != nil {
			log.Error("failed to create booking", sl.Err(err))

			var seatsErr *service.InsufficientSeatsError

			switch {
			case errors.Is(err, storage.ErrEventNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
			case errors.Is(err, service.ErrDuplicateBooking):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(err.Error()))
			case errors.As(err, &seatsErr):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(seatsErr.Error()))
			case errors.Is(err, service.ErrEventPassed):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(err.Error()))
			case errors.Is(err, service.ErrEmptyUserID),
				errors.Is(err, service.ErrInvalidSeats):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to create booking"))
			}
			return
		}

		log.Info("booking created",
			slog.Int64("booking_id", booking.ID),
			slog.String("user_id", booking.UserID),
			slog.Int("seats", booking.Seats),
		)

		responseOK(w, r, booking)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, booking *models.Booking) {
	render.JSON(w, r, BookingResponse{
		Response: response.OK(),
		Booking:  booking,
	})
}
