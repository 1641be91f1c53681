package createBooking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"slotBooker/internal/lib/api/response"
	"slotBooker/internal/lib/logger/sl"
	"slotBooker/internal/models"
	"slotBooker/internal/services/booking"
)

type BookingRequest struct {
	Name          string    `json:"name" validate:"required,max=100"`
	Email         string    `json:"email" validate:"required,email"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
}

type BookingResponse struct {
	response.Response
	Message   string `json:"message,omitempty"`
	BookingID int64  `json:"booking_id,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingCreator
type BookingCreator interface {
	Create(ctx context.Context, draft models.Draft) (*models.Booking, error)
}

func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.createBooking.New"

		log := log.With(slog.String("op", op))

		var req BookingRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		log.Info("request body decoded", slog.String("email", req.Email), slog.Time("scheduled_date", req.ScheduledDate))

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		b, err := creator.Create(r.Context(), models.Draft{
			Name:          req.Name,
			Email:         req.Email,
			ScheduledDate: req.ScheduledDate,
		})
		if err != nil {
			log.Error("failed to create booking", sl.Err(err))

			var validateErr validator.ValidationErrors

			switch {
			case errors.Is(err, booking.ErrSlotTaken):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(booking.ErrSlotTaken.Error()))
			case errors.As(err, &validateErr):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
			case errors.Is(err, booking.ErrInvalidInput):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(booking.ErrInvalidInput.Error()))
			case errors.Is(err, booking.ErrMessaging) && b != nil:
				render.Status(r, http.StatusBadGateway)
				render.JSON(w, r, BookingResponse{
					Response:  response.Error("booking saved, but the verification email could not be sent"),
					BookingID: b.ID,
				})
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to create booking"))
			}
			return
		}

		log.Info("booking created", slog.Int64("id", b.ID))

		responseCreated(w, r, b.ID)
	}
}

func responseCreated(w http.ResponseWriter, r *http.Request, id int64) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, BookingResponse{
		Response:  response.OK(),
		Message:   "please check your email to verify your booking",
		BookingID: id,
	})
}
