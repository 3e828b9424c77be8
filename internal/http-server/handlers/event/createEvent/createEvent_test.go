package createEvent_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ticketBooker/internal/http-server/handlers/event/createEvent"
	"ticketBooker/internal/http-server/handlers/event/createEvent/mocks"
	"ticketBooker/internal/lib/logger/handlers/slogdiscard"
	"ticketBooker/internal/models"
	"ticketBooker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateEventHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	eventDate := time.Date(2026, 9, 15, 19, 0, 0, 0, time.UTC)

	testCases := []struct {
		name           string
		requestBody    string
		mockSetup      func(m *mocks.EventCreator)
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:        "Success",
			requestBody: `{"name": "Go Conference", "date": "2026-09-15T19:00:00Z", "location": "Berlin", "total_seats": 100}`,
			mockSetup: func(m *mocks.EventCreator) {
				m.On("CreateEvent", mock.Anything, service.CreateEventRequest{
					Name:       "Go Conference",
					Date:       eventDate,
					Location:   "Berlin",
					TotalSeats: 100,
				}).Return(&models.Event{
					ID:         1,
					Name:       "Go Conference",
					Date:       eventDate,
					Location:   "Berlin",
					TotalSeats: 100,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"OK"`)
				assert.Contains(t, body, `"id":1`)
				assert.Contains(t, body, `"Go Conference"`)
			},
		},
		{
			name:           "Invalid JSON",
			requestBody:    `not json`,
			mockSetup:      func(m *mocks.EventCreator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "Missing name",
			requestBody:    `{"date": "2026-09-15T19:00:00Z", "location": "Berlin", "total_seats": 100}`,
			mockSetup:      func(m *mocks.EventCreator) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"Error"`)
				assert.Contains(t, body, "Name")
			},
		},
		{
			name:           "Zero total seats",
			requestBody:    `{"name": "Go Conference", "date": "2026-09-15T19:00:00Z", "location": "Berlin", "total_seats": 0}`,
			mockSetup:      func(m *mocks.EventCreator) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"Error"`)
				assert.Contains(t, body, "TotalSeats")
			},
		},
		{
			name:        "Past date",
			requestBody: `{"name": "Go Conference", "date": "2026-09-15T19:00:00Z", "location": "Berlin", "total_seats": 100}`,
			mockSetup: func(m *mocks.EventCreator) {
				m.On("CreateEvent", mock.Anything, mock.AnythingOfType("service.CreateEventRequest")).
					Return(nil, service.ErrPastEventDate)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"event date cannot be in the past"}`,
		},
		{
			name:        "Internal server error",
			requestBody: `{"name": "Go Conference", "date": "2026-09-15T19:00:00Z", "location": "Berlin", "total_seats": 100}`,
			mockSetup: func(m *mocks.EventCreator) {
				m.On("CreateEvent", mock.Anything, mock.AnythingOfType("service.CreateEventRequest")).
					Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to create event"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockCreator := mocks.NewEventCreator(t)
			tc.mockSetup(mockCreator)

			handler := createEvent.New(logger, mockCreator)

			req, err := http.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tc.requestBody))
			require.NoError(t, err)

			router := chi.NewRouter()
			router.Post("/events", handler)

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
