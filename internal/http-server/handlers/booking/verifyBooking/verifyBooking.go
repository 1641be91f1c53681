package verifyBooking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"slotBooker/internal/lib/api/response"
	"slotBooker/internal/lib/logger/sl"
	"slotBooker/internal/models"
	"slotBooker/internal/services/booking"
)

type VerifyResponse struct {
	response.Response
	Result  booking.VerifyResult `json:"result"`
	Message string               `json:"message"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingVerifier
type BookingVerifier interface {
	Verify(ctx context.Context, token string) (booking.VerifyResult, *models.Booking, error)
}

func New(log *slog.Logger, verifier BookingVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.verifyBooking.New"

		log := log.With(slog.String("op", op))

		token := chi.URLParam(r, "token")
		if token == "" {
			log.Error("token is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("token is required"))
			return
		}

		result, b, err := verifier.Verify(r.Context(), token)
		if err != nil {
			log.Error("failed to verify booking", sl.Err(err))

			if errors.Is(err, booking.ErrInvalidToken) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(booking.ErrInvalidToken.Error()))
				return
			}

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to verify booking"))
			return
		}

		log.Info("verification handled", slog.Int64("id", b.ID), slog.String("result", string(result)))

		responseOK(w, r, result)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, result booking.VerifyResult) {
	msg := "booking verified successfully"
	if result == booking.Renewed {
		msg = "verification link expired, a new one has been sent to your email"
	}

	render.JSON(w, r, VerifyResponse{
		Response: response.OK(),
		Result:   result,
		Message:  msg,
	})
}
