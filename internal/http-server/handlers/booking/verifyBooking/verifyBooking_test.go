package verifyBooking

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"slotBooker/internal/http-server/handlers/booking/verifyBooking/mocks"
	"slotBooker/internal/lib/logger/handlers/slogdiscard"
	"slotBooker/internal/models"
	"slotBooker/internal/services/booking"
)

func TestVerifyBookingHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testCases := []struct {
		name           string
		token          string
		mockSetup      func(m *mocks.BookingVerifier)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "Verified",
			token: "tok-1",
			mockSetup: func(m *mocks.BookingVerifier) {
				m.On("Verify", mock.Anything, "tok-1").Return(booking.Verified, &models.Booking{ID: 1}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","result":"verified","message":"booking verified successfully"}`,
		},
		{
			name:  "Renewed",
			token: "tok-old",
			mockSetup: func(m *mocks.BookingVerifier) {
				m.On("Verify", mock.Anything, "tok-old").Return(booking.Renewed, &models.Booking{ID: 1}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","result":"renewed","message":"verification link expired, a new one has been sent to your email"}`,
		},
		{
			name:  "Invalid token",
			token: "nope",
			mockSetup: func(m *mocks.BookingVerifier) {
				m.On("Verify", mock.Anything, "nope").
					Return(booking.VerifyResult(""), nil, fmt.Errorf("op: %w", booking.ErrInvalidToken))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid or already used token"}`,
		},
		{
			name:  "Internal server error",
			token: "tok-1",
			mockSetup: func(m *mocks.BookingVerifier) {
				m.On("Verify", mock.Anything, "tok-1").
					Return(booking.VerifyResult(""), nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to verify booking"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockVerifier := mocks.NewBookingVerifier(t)
			tc.mockSetup(mockVerifier)

			router := chi.NewRouter()
			router.Get("/verify/{token}", New(logger, mockVerifier))

			req, err := http.NewRequest(http.MethodGet, "/verify/"+tc.token, nil)
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
		})
	}
}

func TestHandlerWithoutChiContext(t *testing.T) {
	t.Parallel()

	mockVerifier := mocks.NewBookingVerifier(t)
	handler := New(slogdiscard.NewDiscardLogger(), mockVerifier)

	req, err := http.NewRequest(http.MethodGet, "/verify/", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "token is required")
}
