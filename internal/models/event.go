package models

import "time"

type Event struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	Location   string    `json:"location"`
	TotalSeats int       `json:"total_seats"`
	// BookedSeats is derived from the ACTIVE booking set on every read,
	// never stored.
	BookedSeats int `json:"booked_seats"`
}

// AvailableSeats returns the seats still sellable for the event.
func (e *Event) AvailableSeats() int {
	return e.TotalSeats - e.BookedSeats
}
