package updateEvent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/models"
	"ticketBooker/internal/service"
	"ticketBooker/internal/storage"

	"github.com/go-chi/chi/v5"
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

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventUpdater
type EventUpdater interface {
	UpdateEvent(ctx context.Context, eventID int64, req service.CreateEventRequest) (*models.Event, error)
}

func New(log *slog.Logger, updater EventUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.updateEvent.New"

		log = log.With(slog.String("op", op))

		eventIdStr := chi.URLParam(r, "id")
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

		var req EventRequest

		err = render.DecodeJSON(r.Body, &req)
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

		event, err := updater.UpdateEvent(r.Context(), eventID, service.CreateEventRequest{
			Name:       req.Name,
			Date:       req.Date,
			Location:   req.Location,
			TotalSeats: req.TotalSeats,
		})
		if err != nil {
			log.Error("failed to update event", sl.Err(err))

			var capacityErr *service.CapacityBelowBookedError

			switch {
			case errors.Is(err, storage.ErrEventNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
			case errors.As(err, &capacityErr):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(capacityErr.Error()))
			case errors.Is(err, service.ErrEmptyEventName),
				errors.Is(err, service.ErrEmptyLocation),
				errors.Is(err, service.ErrInvalidCapacity),
				errors.Is(err, service.ErrPastEventDate):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to update event"))
			}
			return
		}

		log.Info("event updated")

		render.JSON(w, r, EventResponse{
			Response: response.OK(),
			Event:    event,
		})
	}
}
