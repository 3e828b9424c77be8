package cancelBooking_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ticketBooker/internal/http-server/handlers/booking/cancelBooking"
	"ticketBooker/internal/http-server/handlers/booking/cancelBooking/mocks"
	"ticketBooker/internal/lib/logger/handlers/slogdiscard"
	"ticketBooker/internal/service"
	"ticketBooker/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelBookingHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testCases := []struct {
		name           string
		bookingID      string
		mockSetup      func(m *mocks.BookingCanceler)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "Success",
			bookingID: "7",
			mockSetup: func(m *mocks.BookingCanceler) {
				m.On("CancelBooking", mock.Anything, int64(7)).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"}`,
		},
		{
			name:           "Invalid booking id",
			bookingID:      "abc",
			mockSetup:      func(m *mocks.BookingCanceler) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid booking id format"}`,
		},
		{
			name:      "Booking not found",
			bookingID: "99",
			mockSetup: func(m *mocks.BookingCanceler) {
				m.On("CancelBooking", mock.Anything, int64(99)).
					Return(storage.ErrBookingNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"booking not found"}`,
		},
		{
			name:      "Already canceled",
			bookingID: "7",
			mockSetup: func(m *mocks.BookingCanceler) {
				m.On("CancelBooking", mock.Anything, int64(7)).
					Return(service.ErrBookingCanceled)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"booking is already canceled"}`,
		},
		{
			name:      "Event passed",
			bookingID: "7",
			mockSetup: func(m *mocks.BookingCanceler) {
				m.On("CancelBooking", mock.Anything, int64(7)).
					Return(service.ErrEventPassed)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"event has already occurred"}`,
		},
		{
			name:      "Internal server error",
			bookingID: "7",
			mockSetup: func(m *mocks.BookingCanceler) {
				m.On("CancelBooking", mock.Anything, int64(7)).
					Return(errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to cancel booking"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockCanceler := mocks.NewBookingCanceler(t)
			tc.mockSetup(mockCanceler)

			handler := cancelBooking.New(logger, mockCanceler)

			req, err := http.NewRequest(http.MethodDelete, "/bookings/"+tc.bookingID, nil)
			require.NoError(t, err)

			router := chi.NewRouter()
			router.Delete("/bookings/{id}", handler)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
		})
	}
}
