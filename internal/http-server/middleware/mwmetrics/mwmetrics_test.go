package mwmetrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"slotBooker/internal/metrics"
)

func TestMetricsUseRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(New)
	router.Get("/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.RequestCount.WithLabelValues("/bookings/{id}", http.MethodGet, "418")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/bookings/1", "/bookings/2"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTeapot, rr.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
