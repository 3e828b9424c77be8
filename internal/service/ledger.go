// Package service implements the booking admission and capacity accounting
// rules on top of a storage backend. All capacity figures are recomputed from
// the ACTIVE booking set on every read; there is no stored counter to drift.
package service

import (
	"context"

	"ticketBooker/internal/models"
)

// Storage is the persistence contract the services operate against.
// WithEventLock must serialize all mutating operations on one event while
// letting different events proceed in parallel; reads made inside the
// callback must observe a single consistent snapshot.
type Storage interface {
	WithEventLock(ctx context.Context, eventID int64, fn func(ctx context.Context) error) error

	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	GetAllEvents(ctx context.Context, sortBy string) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id int64) error

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	GetEventBookings(ctx context.Context, eventID int64, status models.BookingStatus) ([]models.Booking, error)
	GetUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	HasActiveBooking(ctx context.Context, eventID int64, userID string) (bool, error)
	SumActiveSeats(ctx context.Context, eventID int64) (int, error)
}

// Ledger answers how many seats are booked and how many remain for an event.
type Ledger struct {
	storage Storage
}

func NewLedger(storage Storage) *Ledger {
	return &Ledger{storage: storage}
}

// BookedSeats returns the sum of seats over all ACTIVE bookings for the
// event, 0 when none exist. Fails with storage.ErrEventNotFound when the
// event does not resolve.
func (l *Ledger) BookedSeats(ctx context.Context, eventID int64) (int, error) {
	if _, err := l.storage.GetEvent(ctx, eventID); err != nil {
		return 0, err
	}
	return l.storage.SumActiveSeats(ctx, eventID)
}

// AvailableSeats returns total seats minus the active seat sum.
func (l *Ledger) AvailableSeats(ctx context.Context, eventID int64) (int, error) {
	event, err := l.storage.GetEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return l.availableFor(ctx, event)
}

// availableFor computes availability for an already resolved event. Inside
// an event lock the sum reflects the transaction snapshot, so the admission
// decision and the write see the same figure.
func (l *Ledger) availableFor(ctx context.Context, event *models.Event) (int, error) {
	booked, err := l.storage.SumActiveSeats(ctx, event.ID)
	if err != nil {
		return 0, err
	}
	return event.TotalSeats - booked, nil
}
