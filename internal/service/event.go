package service

import (
	"context"
	"strings"
	"time"

	"ticketBooker/internal/clock"
	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"
)

// EventService manages event lifecycle. Capacity reductions and deletions
// touch the active seat sum, so they run inside the same event exclusion
// scope as bookings.
type EventService struct {
	storage Storage
	ledger  *Ledger
	clock   clock.Clock
}

func NewEventService(st Storage, clk clock.Clock) *EventService {
	return &EventService{
		storage: st,
		ledger:  NewLedger(st),
		clock:   clk,
	}
}

// CreateEventRequest carries the already-decoded fields for a new event.
type CreateEventRequest struct {
	Name       string
	Date       time.Time
	Location   string
	TotalSeats int
}

func (s *EventService) CreateEvent(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)

	if req.Name == "" {
		return nil, ErrEmptyEventName
	}
	if req.Location == "" {
		return nil, ErrEmptyLocation
	}
	if req.TotalSeats <= 0 {
		return nil, ErrInvalidCapacity
	}
	if !req.Date.After(s.clock.Now()) {
		return nil, ErrPastEventDate
	}

	event := &models.Event{
		Name:       req.Name,
		Date:       req.Date,
		Location:   req.Location,
		TotalSeats: req.TotalSeats,
	}

	if err := s.storage.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	return s.storage.GetEvent(ctx, eventID)
}

// GetAllEvents lists events sorted by the given key; empty sortBy means date.
func (s *EventService) GetAllEvents(ctx context.Context, sortBy string) ([]models.Event, error) {
	if sortBy == "" {
		sortBy = storage.SortByDate
	}
	switch sortBy {
	case storage.SortByDate, storage.SortByLocation, storage.SortByAvailability:
	default:
		return nil, ErrInvalidSortBy
	}
	return s.storage.GetAllEvents(ctx, sortBy)
}

// UpdateEvent replaces the event's metadata and capacity. Reducing total
// seats below the current active seat sum is refused; the check and the
// write share the event lock so a concurrent booking cannot slip between
// them.
func (s *EventService) UpdateEvent(ctx context.Context, eventID int64, req CreateEventRequest) (*models.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)

	if req.Name == "" {
		return nil, ErrEmptyEventName
	}
	if req.Location == "" {
		return nil, ErrEmptyLocation
	}
	if req.TotalSeats <= 0 {
		return nil, ErrInvalidCapacity
	}
	if !req.Date.After(s.clock.Now()) {
		return nil, ErrPastEventDate
	}

	var updated *models.Event
	err := s.storage.WithEventLock(ctx, eventID, func(ctx context.Context) error {
		event, err := s.storage.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}

		if req.TotalSeats < event.TotalSeats {
			booked, err := s.storage.SumActiveSeats(ctx, eventID)
			if err != nil {
				return err
			}
			if req.TotalSeats < booked {
				return &CapacityBelowBookedError{Requested: req.TotalSeats, Booked: booked}
			}
		}

		event.Name = req.Name
		event.Date = req.Date
		event.Location = req.Location
		event.TotalSeats = req.TotalSeats

		if err := s.storage.UpdateEvent(ctx, event); err != nil {
			return err
		}

		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEvent removes an event that has no outstanding booking demand.
func (s *EventService) DeleteEvent(ctx context.Context, eventID int64) error {
	return s.storage.WithEventLock(ctx, eventID, func(ctx context.Context) error {
		booked, err := s.storage.SumActiveSeats(ctx, eventID)
		if err != nil {
			return err
		}
		if booked > 0 {
			return &ActiveBookingsError{Booked: booked}
		}

		return s.storage.DeleteEvent(ctx, eventID)
	})
}
