package service

import (
	"context"
	"strings"

	"ticketBooker/internal/clock"
	"ticketBooker/internal/models"
)

// BookingService is the single authority that creates and cancels bookings.
// Every mutating call runs its checks and its write inside the event's
// exclusion scope, so the capacity check and the duplicate-booking check can
// never race the insert they guard.
type BookingService struct {
	storage Storage
	ledger  *Ledger
	clock   clock.Clock
}

func NewBookingService(storage Storage, clk clock.Clock) *BookingService {
	return &BookingService{
		storage: storage,
		ledger:  NewLedger(storage),
		clock:   clk,
	}
}

// CreateBooking admits a booking request against current capacity.
//
// Preconditions, checked in order: non-empty user id, positive seat count,
// event exists, event date still in the future, no active booking for the
// same (event, user) pair, requested seats within available capacity.
func (s *BookingService) CreateBooking(ctx context.Context, eventID int64, userID string, seats int) (*models.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	if seats <= 0 {
		return nil, ErrInvalidSeats
	}

	now := s.clock.Now()

	var booking *models.Booking
	err := s.storage.WithEventLock(ctx, eventID, func(ctx context.Context) error {
		event, err := s.storage.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}

		if !event.Date.After(now) {
			return ErrEventPassed
		}

		exists, err := s.storage.HasActiveBooking(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateBooking
		}

		available, err := s.ledger.availableFor(ctx, event)
		if err != nil {
			return err
		}
		if seats > available {
			return &InsufficientSeatsError{Requested: seats, Available: available}
		}

		booking = &models.Booking{
			EventID:   eventID,
			UserID:    userID,
			Seats:     seats,
			Status:    models.StatusActive,
			CreatedAt: now,
		}

		return s.storage.CreateBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// CancelBooking flips an ACTIVE booking to CANCELED, releasing its seats.
// The booking is re-read under the event lock so the transition is atomic
// with respect to concurrent admissions reading the active seat sum.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64) error {
	booking, err := s.storage.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	now := s.clock.Now()

	return s.storage.WithEventLock(ctx, booking.EventID, func(ctx context.Context) error {
		booking, err := s.storage.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		if booking.Status == models.StatusCanceled {
			return ErrBookingCanceled
		}

		event, err := s.storage.GetEvent(ctx, booking.EventID)
		if err != nil {
			return err
		}
		if !event.Date.After(now) {
			return ErrEventPassed
		}

		return s.storage.UpdateBookingStatus(ctx, bookingID, models.StatusCanceled)
	})
}

// GetBooking returns a single booking by id.
func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	return s.storage.GetBooking(ctx, bookingID)
}

// GetUserBookings returns all bookings ever made by the user, canceled ones
// included.
func (s *BookingService) GetUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	return s.storage.GetUserBookings(ctx, userID)
}

// GetEventBookings returns the ACTIVE bookings for an event.
func (s *BookingService) GetEventBookings(ctx context.Context, eventID int64) ([]models.Booking, error) {
	if _, err := s.storage.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.storage.GetEventBookings(ctx, eventID, models.StatusActive)
}

// HasActiveBooking reports whether the user holds an active booking for the
// event.
func (s *BookingService) HasActiveBooking(ctx context.Context, eventID int64, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrEmptyUserID
	}
	if _, err := s.storage.GetEvent(ctx, eventID); err != nil {
		return false, err
	}
	return s.storage.HasActiveBooking(ctx, eventID, userID)
}

// BookedSeats returns the total seats held by active bookings for the event.
func (s *BookingService) BookedSeats(ctx context.Context, eventID int64) (int, error) {
	return s.ledger.BookedSeats(ctx, eventID)
}

// AvailableSeats returns the seats still sellable for the event.
func (s *BookingService) AvailableSeats(ctx context.Context, eventID int64) (int, error) {
	return s.ledger.AvailableSeats(ctx, eventID)
}
