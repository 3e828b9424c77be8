package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ticketBooker/internal/clock"
	"ticketBooker/internal/models"
	"ticketBooker/internal/service"
	"ticketBooker/internal/storage"
	"ticketBooker/internal/storage/inmem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestServices(clk clock.Clock) (*service.EventService, *service.BookingService, *inmem.Storage) {
	st := inmem.New()
	return service.NewEventService(st, clk), service.NewBookingService(st, clk), st
}

func createTestEvent(t *testing.T, events *service.EventService, totalSeats int) int64 {
	t.Helper()

	event, err := events.CreateEvent(context.Background(), service.CreateEventRequest{
		Name:       "Go Conference",
		Date:       testNow.Add(24 * time.Hour),
		Location:   "Berlin",
		TotalSeats: totalSeats,
	})
	require.NoError(t, err)

	return event.ID
}

func TestCreateBooking_ReducesAvailability(t *testing.T) {
	t.Parallel()

	events, bookings, _ := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, 5)

	booking, err := bookings.CreateBooking(context.Background(), eventID, "u1", 3)
	require.NoError(t, err)

	assert.Equal(t, eventID, booking.EventID)
	assert.Equal(t, "u1", booking.UserID)
	assert.Equal(t, 3, booking.Seats)
	assert.Equal(t, models.StatusActive, booking.Status)
	assert.NotZero(t, booking.ID)

	available, err := bookings.AvailableSeats(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, available)

	booked, err := bookings.BookedSeats(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 3, booked)
}

func TestCreateBooking_DuplicateActiveBooking(t *testing.T) {
	t.Parallel()

	events, bookings, _ := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, 5)

	_, err := bookings.CreateBooking(context.Background(), eventID, "u1", 3)
	require.NoError(t, err)

	_, err = bookings.CreateBooking(context.Background(), eventID, "u1", 1)
	assert.ErrorIs(t, err, service.ErrDuplicateBooking)

	available, err := bookings.AvailableSeats(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, available)
}

func TestCreateBooking_InsufficientCapacity(t *testing.T) {
	t.Parallel()

	events, bookings, _ := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, 5)

	_, err := bookings.CreateBooking(context.Background(), eventID, "u1", 3)
	require.NoError(t, err)

	_, err = bookings.CreateBooking(context.Background(), eventID, "u2", 3)

	var seatsErr *service.InsufficientSeatsError
	require.ErrorAs(t, err, &seatsErr)
	assert.Equal(t, 3, seatsErr.Requested)
	assert.Equal(t, 2, seatsErr.Available)

	available, err := bookings.AvailableSeats(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, available)
}

func TestCancelBooking_ReleasesCapacity(t *testing.T) {
	t.Parallel()

	events, bookings, _ := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, 5)

	booking, err := bookings.CreateBooking(context.Background(), eventID, "u1", 3)
	require.NoError(t, err)

	err = bookings.CancelBooking(context.Background(), booking.ID)
	require.NoError(t, err)

	available, err := bookings.AvailableSeats(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 5, available)

	canceled, err := bookings.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, canceled.Status)

	err = bookings.CancelBooking(context.Background(), booking.ID)
	assert.ErrorIs(t, err, service.ErrBookingCanceled)
}

func TestCreateBooking_RebookAfterCancel(t *testing.T) {
	t.Parallel()

	events, bookings, _ := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, 5)

	booking, err := bookings.CreateBooking(context.Background(), eventID, "u1", 2)
	require.NoError(t, err)

	require.NoError(t, bookings.CancelBooking(context.Background(), booking.ID))

	// Uniqueness only constrains ACTIVE bookings.
	_, err = bookings.CreateBooking(context.Background(), eventID, "u1", 2)
	require.NoError(t, err)
}

func TestCreateBooking_PastEvent(t *testing.T) {
	t.Parallel()

	events, _, st := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, 5)

	// A clock past the event date makes it a past event for a new service.
	lateClock := clock.NewFixed(testNow.Add(48 * time.Hour))
	lateBookings := service.NewBookingService(st, lateClock)

	_, err := lateBookings.CreateBooking(context.Background(), eventID, "u1", 1)
	assert.ErrorIs(t, err, service.ErrEventPassed)
}

func TestCancelBooking_PastEvent(t *testing.T) {
	t.Parallel()

	events, bookings, st := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, 5)

	booking, err := bookings.CreateBooking(context.Background(), eventID, "u1", 1)
	require.NoError(t, err)

	lateClock := clock.NewFixed(testNow.Add(48 * time.Hour))
	lateBookings := service.NewBookingService(st, lateClock)

	err = lateBookings.CancelBooking(context.Background(), booking.ID)
	assert.ErrorIs(t, err, service.ErrEventPassed)
}

func TestCreateBooking_Validation(t *testing.T) {
	t.Parallel()

	events, bookings, _ := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, 5)

	testCases := []struct {
		name        string
		eventID     int64
		userID      string
		seats       int
		expectedErr error
	}{
		{
			name:        "empty user id",
			eventID:     eventID,
			userID:      "",
			seats:       1,
			expectedErr: service.ErrEmptyUserID,
		},
		{
			name:        "whitespace user id",
			eventID:     eventID,
			userID:      "   ",
			seats:       1,
			expectedErr: service.ErrEmptyUserID,
		},
		{
			name:        "zero seats",
			eventID:     eventID,
			userID:      "u1",
			seats:       0,
			expectedErr: service.ErrInvalidSeats,
		},
		{
			name:        "negative seats",
			eventID:     eventID,
			userID:      "u1",
			seats:       -2,
			expectedErr: service.ErrInvalidSeats,
		},
		{
			name:        "unknown event",
			eventID:     9999,
			userID:      "u1",
			seats:       1,
			expectedErr: storage.ErrEventNotFound,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := bookings.CreateBooking(context.Background(), tc.eventID, tc.userID, tc.seats)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestCancelBooking_NotFound(t *testing.T) {
	t.Parallel()

	_, bookings, _ := newTestServices(clock.NewFixed(testNow))

	err := bookings.CancelBooking(context.Background(), 42)
	assert.ErrorIs(t, err, storage.ErrBookingNotFound)
}

func TestBookingQueries(t *testing.T) {
	t.Parallel()

	events, bookings, _ := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, 10)

	b1, err := bookings.CreateBooking(context.Background(), eventID, "u1", 2)
	require.NoError(t, err)
	_, err = bookings.CreateBooking(context.Background(), eventID, "u2", 3)
	require.NoError(t, err)

	require.NoError(t, bookings.CancelBooking(context.Background(), b1.ID))

	// Only active bookings are listed for the event.
	active, err := bookings.GetEventBookings(context.Background(), eventID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "u2", active[0].UserID)

	// The user's history keeps the canceled booking.
	history, err := bookings.GetUserBookings(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	hasBooking, err := bookings.HasActiveBooking(context.Background(), eventID, "u1")
	require.NoError(t, err)
	assert.False(t, hasBooking)

	hasBooking, err = bookings.HasActiveBooking(context.Background(), eventID, "u2")
	require.NoError(t, err)
	assert.True(t, hasBooking)
}

func TestCreateBooking_ConcurrentRequests(t *testing.T) {
	t.Parallel()

	const (
		capacity = 10
		requests = 50
	)

	events, bookings, _ := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, capacity)

	var wg sync.WaitGroup
	errs := make([]error, requests)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = bookings.CreateBooking(context.Background(), eventID, fmt.Sprintf("user-%d", i), 1)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		var seatsErr *service.InsufficientSeatsError
		require.ErrorAs(t, err, &seatsErr)
	}

	assert.Equal(t, capacity, succeeded)

	booked, err := bookings.BookedSeats(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, capacity, booked)

	available, err := bookings.AvailableSeats(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}

func TestCreateBooking_ConcurrentSameUser(t *testing.T) {
	t.Parallel()

	const requests = 20

	events, bookings, _ := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, 100)

	var wg sync.WaitGroup
	errs := make([]error, requests)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = bookings.CreateBooking(context.Background(), eventID, "u1", 1)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, service.ErrDuplicateBooking)
		}
	}

	assert.Equal(t, 1, succeeded)
}

func TestCreateBooking_ConcurrentWithCancellations(t *testing.T) {
	t.Parallel()

	const capacity = 5

	events, bookings, _ := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, capacity)

	// Fill the event.
	ids := make([]int64, capacity)
	for i := 0; i < capacity; i++ {
		booking, err := bookings.CreateBooking(context.Background(), eventID, fmt.Sprintf("holder-%d", i), 1)
		require.NoError(t, err)
		ids[i] = booking.ID
	}

	var wg sync.WaitGroup

	// Cancellations and admissions race; the capacity invariant must hold
	// throughout.
	for i := 0; i < capacity; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, bookings.CancelBooking(context.Background(), ids[i]))
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := bookings.CreateBooking(context.Background(), eventID, fmt.Sprintf("taker-%d", i), 1)
			if err != nil {
				var seatsErr *service.InsufficientSeatsError
				assert.True(t, errors.As(err, &seatsErr), "unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	booked, err := bookings.BookedSeats(context.Background(), eventID)
	require.NoError(t, err)
	assert.LessOrEqual(t, booked, capacity)
}

func TestCancelThenCreate_SeesReleasedCapacity(t *testing.T) {
	t.Parallel()

	events, bookings, _ := newTestServices(clock.NewFixed(testNow))
	eventID := createTestEvent(t, events, 1)

	booking, err := bookings.CreateBooking(context.Background(), eventID, "u1", 1)
	require.NoError(t, err)

	_, err = bookings.CreateBooking(context.Background(), eventID, "u2", 1)
	var seatsErr *service.InsufficientSeatsError
	require.ErrorAs(t, err, &seatsErr)

	require.NoError(t, bookings.CancelBooking(context.Background(), booking.ID))

	// A request starting after the cancel commit must see the freed seat.
	_, err = bookings.CreateBooking(context.Background(), eventID, "u2", 1)
	require.NoError(t, err)
}
