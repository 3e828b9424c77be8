package updateEvent_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ticketBooker/internal/http-server/handlers/event/updateEvent"
	"ticketBooker/internal/http-server/handlers/event/updateEvent/mocks"
	"ticketBooker/internal/lib/logger/handlers/slogdiscard"
	"ticketBooker/internal/models"
	"ticketBooker/internal/service"
	"ticketBooker/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdateEventHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	eventDate := time.Date(2026, 9, 15, 19, 0, 0, 0, time.UTC)
	requestBody := `{"name": "Go Conference", "date": "2026-09-15T19:00:00Z", "location": "Berlin", "total_seats": 50}`

	testCases := []struct {
		name           string
		eventID        string
		requestBody    string
		mockSetup      func(m *mocks.EventUpdater)
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:        "Success",
			eventID:     "1",
			requestBody: requestBody,
			mockSetup: func(m *mocks.EventUpdater) {
				m.On("UpdateEvent", mock.Anything, int64(1), service.CreateEventRequest{
					Name:       "Go Conference",
					Date:       eventDate,
					Location:   "Berlin",
					TotalSeats: 50,
				}).Return(&models.Event{
					ID:         1,
					Name:       "Go Conference",
					Date:       eventDate,
					Location:   "Berlin",
					TotalSeats: 50,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"OK"`)
				assert.Contains(t, body, `"total_seats":50`)
			},
		},
		{
			name:           "Invalid event id",
			eventID:        "abc",
			requestBody:    requestBody,
			mockSetup:      func(m *mocks.EventUpdater) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid event id format"}`,
		},
		{
			name:        "Event not found",
			eventID:     "99",
			requestBody: requestBody,
			mockSetup: func(m *mocks.EventUpdater) {
				m.On("UpdateEvent", mock.Anything, int64(99), mock.AnythingOfType("service.CreateEventRequest")).
					Return(nil, storage.ErrEventNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"event not found"}`,
		},
		{
			name:        "Capacity below booked seats",
			eventID:     "1",
			requestBody: requestBody,
			mockSetup: func(m *mocks.EventUpdater) {
				m.On("UpdateEvent", mock.Anything, int64(1), mock.AnythingOfType("service.CreateEventRequest")).
					Return(nil, &service.CapacityBelowBookedError{Requested: 50, Booked: 60})
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"cannot reduce total seats below current bookings: requested 50, booked 60"}`,
		},
		{
			name:        "Internal server error",
			eventID:     "1",
			requestBody: requestBody,
			mockSetup: func(m *mocks.EventUpdater) {
				m.On("UpdateEvent", mock.Anything, int64(1), mock.AnythingOfType("service.CreateEventRequest")).
					Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to update event"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockUpdater := mocks.NewEventUpdater(t)
			tc.mockSetup(mockUpdater)

			handler := updateEvent.New(logger, mockUpdater)

			req, err := http.NewRequest(http.MethodPut, "/events/"+tc.eventID, bytes.NewBufferString(tc.requestBody))
			require.NoError(t, err)

			router := chi.NewRouter()
			router.Put("/events/{id}", handler)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")

			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
			} else if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.String())
			}
		})
	}
}
