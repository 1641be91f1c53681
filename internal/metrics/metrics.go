package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_booker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slot_booker_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// BookingEvents counts lifecycle transitions: created, verified,
	// renewed, accepted, rejected, updated, deleted, purged.
	BookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_booker_booking_events_total",
			Help: "Number of booking lifecycle events",
		},
		[]string{"event"},
	)

	EmailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_booker_emails_total",
			Help: "Number of email send attempts by kind and result",
		},
		[]string{"kind", "result"},
	)
)

func Init(reg prometheus.Registerer) {
	reg.MustRegister(RequestCount, RequestDuration, BookingEvents, EmailsSent)
}
