package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	require.NotPanics(t, func() { Init(reg) })

	BookingEvents.WithLabelValues("created").Inc()
	EmailsSent.WithLabelValues("verification", "ok").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}

	assert.Contains(t, names, "slot_booker_booking_events_total")
	assert.Contains(t, names, "slot_booker_emails_total")
	assert.Panics(t, func() { Init(reg) }, "collectors must not register twice")
}
