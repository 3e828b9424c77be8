// Package storage defines the errors shared by all storage backends.
package storage

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrBookingNotFound = errors.New("booking not found")
)

// Sort keys accepted by GetAllEvents.
const (
	SortByDate         = "date"
	SortByLocation     = "location"
	SortByAvailability = "availability"
)
