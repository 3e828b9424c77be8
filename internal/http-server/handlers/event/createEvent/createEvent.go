package createEvent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/models"
	"ticketBooker/internal/service"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type EventRequest struct {
	Name       string    `json:"name" validate:"required"`
	Date       time.Time `json:"date" validate:"required"`
	Location   string    `json:"location" validate:"required"`
	TotalSeats int       `json:"total_seats" validate:"required,gt=0"`
}

type EventResponse struct {
	response.Response
	Event *models.Event `json:"event"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventCreator
type EventCreator interface {
	CreateEvent(ctx context.Context, req service.CreateEventRequest) (*models.Event, error)
}

func New(log *slog.Logger, creator EventCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.createEvent.New"

		log = log.With(slog.String("op", op))

		var req EventRequest

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

		event, err := creator.CreateEvent(r.Context(), service.CreateEventRequest{
			Name:       req.Name,
			Date:       req.Date,
			Location:   req.Location,
			TotalSeats: req.TotalSeats,
		})
		if err != nil {
			log.Error("failed to create event", sl.Err(err))

			switch {
			case errors.Is(err, service.ErrEmptyEventName),
				errors.Is(err, service.ErrEmptyLocation),
				errors.Is(err, service.ErrInvalidCapacity),
				errors.Is(err, service.ErrPastEventDate):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to create event"))
			}
			return
		}

		log.Info("event created", slog.Int64("id", event.ID))

		responseOK(w, r, event)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, event *models.Event) {
	render.JSON(w, r, EventResponse{
		Response: response.OK(),
		Event:    event,
	})
}
