package updateBooking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"slotBooker/internal/lib/api/response"
	"slotBooker/internal/lib/logger/sl"
	"slotBooker/internal/models"
	"slotBooker/internal/services/booking"
)

type UpdateResponse struct {
	response.Response
	Booking *models.Booking `json:"booking"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingUpdater
type BookingUpdater interface {
	Update(ctx context.Context, id int64, patch models.Patch) (*models.Booking, error)
}

func New(log *slog.Logger, updater BookingUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.updateBooking.New"

		log := log.With(slog.String("op", op))

		idStr := chi.URLParam(r, "id")
		if idStr == "" {
			log.Error("booking id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("booking id is required"))
			return
		}

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			log.Error("invalid booking id format", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid booking id format"))
			return
		}

		log = log.With(slog.Int64("booking_id", id))

		// Validation happens in the service, after the verified lock check.
		var patch models.Patch

		err = render.DecodeJSON(r.Body, &patch)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		b, err := updater.Update(r.Context(), id, patch)
		if err != nil {
			log.Error("failed to update booking", sl.Err(err))

			var validateErr validator.ValidationErrors

			switch {
			case errors.Is(err, booking.ErrBookingNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(booking.ErrBookingNotFound.Error()))
			case errors.Is(err, booking.ErrVerifiedLocked):
				render.Status(r, http.StatusLocked)
				render.JSON(w, r, response.Error(booking.ErrVerifiedLocked.Error()))
			case errors.Is(err, booking.ErrSlotTaken):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(booking.ErrSlotTaken.Error()))
			case errors.As(err, &validateErr):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
			case errors.Is(err, booking.ErrInvalidInput):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(booking.ErrInvalidInput.Error()))
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to update booking"))
			}
			return
		}

		log.Info("booking updated")

		render.JSON(w, r, UpdateResponse{
			Response: response.OK(),
			Booking:  b,
		})
	}
}
