// Package inmem implements event and booking storage in process memory.
//
// The per-event exclusion scope is a mutex keyed by event ID: WithEventLock
// holds the event's mutex for the whole admission or cancellation sequence,
// so concurrent mutations of the same event serialize while different events
// proceed in parallel. A separate RWMutex guards the maps themselves.
package inmem

import (
	"context"
	"sort"
	"sync"

	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"
)

type Storage struct {
	mu            sync.RWMutex
	events        map[int64]models.Event
	bookings      map[int64]models.Booking
	nextEventID   int64
	nextBookingID int64

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

func New() *Storage {
	return &Storage{
		events:   make(map[int64]models.Event),
		bookings: make(map[int64]models.Booking),
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (s *Storage) eventLock(eventID int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[eventID] = lock
	}
	return lock
}

// WithEventLock serializes fn against all other locked operations on the
// same event. Returns storage.ErrEventNotFound when the event does not exist.
func (s *Storage) WithEventLock(ctx context.Context, eventID int64, fn func(ctx context.Context) error) error {
	lock := s.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	_, ok := s.events[eventID]
	s.mu.RUnlock()
	if !ok {
		return storage.ErrEventNotFound
	}

	return fn(ctx)
}

func (s *Storage) CreateEvent(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	event.ID = s.nextEventID
	s.events[event.ID] = *event

	return nil
}

func (s *Storage) GetEvent(_ context.Context, id int64) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return nil, storage.ErrEventNotFound
	}
	event.BookedSeats = s.sumActiveSeatsLocked(id)

	return &event, nil
}

func (s *Storage) GetAllEvents(_ context.Context, sortBy string) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]models.Event, 0, len(s.events))
	for id, event := range s.events {
		event.BookedSeats = s.sumActiveSeatsLocked(id)
		events = append(events, event)
	}

	sort.Slice(events, func(i, j int) bool {
		switch sortBy {
		case storage.SortByLocation:
			if events[i].Location != events[j].Location {
				return events[i].Location < events[j].Location
			}
		case storage.SortByAvailability:
			if events[i].AvailableSeats() != events[j].AvailableSeats() {
				return events[i].AvailableSeats() > events[j].AvailableSeats()
			}
		default:
			if !events[i].Date.Equal(events[j].Date) {
				return events[i].Date.Before(events[j].Date)
			}
		}
		return events[i].ID < events[j].ID
	})

	return events, nil
}

func (s *Storage) UpdateEvent(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; !ok {
		return storage.ErrEventNotFound
	}
	s.events[event.ID] = *event

	return nil
}

func (s *Storage) DeleteEvent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return storage.ErrEventNotFound
	}
	delete(s.events, id)

	// Bookings cascade with their parent event.
	for bookingID, booking := range s.bookings {
		if booking.EventID == id {
			delete(s.bookings, bookingID)
		}
	}

	return nil
}

func (s *Storage) CreateBooking(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBookingID++
	booking.ID = s.nextBookingID
	s.bookings[booking.ID] = *booking

	return nil
}

func (s *Storage) GetBooking(_ context.Context, id int64) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}

	return &booking, nil
}

func (s *Storage) UpdateBookingStatus(_ context.Context, id int64, status models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return storage.ErrBookingNotFound
	}
	booking.Status = status
	s.bookings[id] = booking

	return nil
}

func (s *Storage) GetEventBookings(_ context.Context, eventID int64, status models.BookingStatus) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []models.Booking
	for _, booking := range s.bookings {
		if booking.EventID == eventID && booking.Status == status {
			bookings = append(bookings, booking)
		}
	}
	sortBookings(bookings)

	return bookings, nil
}

func (s *Storage) GetUserBookings(_ context.Context, userID string) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []models.Booking
	for _, booking := range s.bookings {
		if booking.UserID == userID {
			bookings = append(bookings, booking)
		}
	}
	sortBookings(bookings)

	return bookings, nil
}

func (s *Storage) HasActiveBooking(_ context.Context, eventID int64, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, booking := range s.bookings {
		if booking.EventID == eventID && booking.UserID == userID && booking.IsActive() {
			return true, nil
		}
	}

	return false, nil
}

func (s *Storage) SumActiveSeats(_ context.Context, eventID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sumActiveSeatsLocked(eventID), nil
}

func (s *Storage) sumActiveSeatsLocked(eventID int64) int {
	total := 0
	for _, booking := range s.bookings {
		if booking.EventID == eventID && booking.IsActive() {
			total += booking.Seats
		}
	}
	return total
}

func sortBookings(bookings []models.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].ID < bookings[j].ID
	})
}
