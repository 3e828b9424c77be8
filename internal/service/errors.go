package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyUserID      = errors.New("user id cannot be empty")
	ErrInvalidSeats     = errors.New("number of seats must be greater than 0")
	ErrEventPassed      = errors.New("event has already occurred")
	ErrDuplicateBooking = errors.New("user already has an active booking for this event")
	ErrBookingCanceled  = errors.New("booking is already canceled")

	ErrEmptyEventName  = errors.New("event name cannot be empty")
	ErrEmptyLocation   = errors.New("event location cannot be empty")
	ErrPastEventDate   = errors.New("event date cannot be in the past")
	ErrInvalidCapacity = errors.New("total seats must be greater than 0")
	ErrInvalidSortBy   = errors.New("invalid sort parameter, must be one of: date, location, availability")
)

// InsufficientSeatsError carries both sides of a denied capacity check so
// callers can build an actionable message.
type InsufficientSeatsError struct {
	Requested int
	Available int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("not enough seats available: requested %d, available %d", e.Requested, e.Available)
}

// CapacityBelowBookedError is returned when an event's total seats would be
// reduced below the seats currently held by active bookings.
type CapacityBelowBookedError struct {
	Requested int
	Booked    int
}

func (e *CapacityBelowBookedError) Error() string {
	return fmt.Sprintf("cannot reduce total seats below current bookings: requested %d, booked %d", e.Requested, e.Booked)
}

// ActiveBookingsError is returned when an event with outstanding booking
// demand would be deleted.
type ActiveBookingsError struct {
	Booked int
}

func (e *ActiveBookingsError) Error() string {
	return fmt.Sprintf("cannot delete event with active bookings: %d seats booked", e.Booked)
}
