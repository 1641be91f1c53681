package listBookings

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"slotBooker/internal/lib/api/response"
	"slotBooker/internal/lib/logger/sl"
	"slotBooker/internal/models"
)

type BookingsResponse struct {
	response.Response
	Count    int              `json:"count"`
	Bookings []models.Booking `json:"bookings"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingsLister
type BookingsLister interface {
	List(ctx context.Context, filter models.Filter) ([]models.Booking, error)
}

func New(log *slog.Logger, lister BookingsLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.listBookings.New"

		log := log.With(slog.String("op", op))

		filter := parseFilter(r)

		bookings, err := lister.List(r.Context(), filter)
		if err != nil {
			log.Error("failed to get bookings", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get bookings"))
			return
		}

		log.Info("bookings retrieved successfully", slog.Int("count", len(bookings)))

		responseOK(w, r, bookings)
	}
}

// parseFilter reads the optional verified and search query parameters. Any
// verified value other than "true" (in any case) selects unverified bookings.
func parseFilter(r *http.Request) models.Filter {
	q := r.URL.Query()

	var filter models.Filter

	if q.Has("verified") {
		verified := strings.EqualFold(q.Get("verified"), "true")
		filter.Verified = &verified
	}

	filter.Search = q.Get("search")

	return filter
}

func responseOK(w http.ResponseWriter, r *http.Request, bookings []models.Booking) {
	if bookings == nil {
		bookings = []models.Booking{}
	}

	render.JSON(w, r, BookingsResponse{
		Response: response.OK(),
		Count:    len(bookings),
		Bookings: bookings,
	})
}
