package models

import "time"

type BookingStatus string

const (
	StatusActive   BookingStatus = "ACTIVE"
	StatusCanceled BookingStatus = "CANCELED"
)

type Booking struct {
	ID        int64         `json:"id"`
	EventID   int64         `json:"event_id"`
	UserID    string        `json:"user_id"`
	Seats     int           `json:"seats"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// IsActive reports whether the booking still counts against event capacity.
func (b *Booking) IsActive() bool {
	return b.Status == StatusActive
}
