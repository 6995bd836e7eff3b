package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveValidation("DISPONIBLE")
	m.ObserveValidation("DISPONIBLE")
	m.ObserveValidation("FUERA_DE_HORARIO")
	m.ObserveWrite("create", "ok")
	m.ObserveSlotRace()

	mf := gather(t, reg, "tutorias_bookings_validations_total")
	require.NotNil(t, mf)
	total := 0.0
	for _, metric := range mf.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	assert.Equal(t, 3.0, total)

	races := gather(t, reg, "tutorias_bookings_slot_races_total")
	require.NotNil(t, races)
	assert.Equal(t, 1.0, races.GetMetric()[0].GetCounter().GetValue())
}

func TestNotifyMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewNotifyMetrics(reg)

	m.ObserveEmails("confirmacion", 2, 1)

	mf := gather(t, reg, "tutorias_notify_emails_total")
	require.NotNil(t, mf)
	byOutcome := map[string]float64{}
	for _, metric := range mf.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "outcome" {
				byOutcome[label.GetValue()] = metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, byOutcome["sent"])
	assert.Equal(t, 1.0, byOutcome["failed"])
}

func TestNilMetricsAreSafe(t *testing.T) {
	var b *BookingMetrics
	var n *NotifyMetrics
	var r *ReminderMetrics
	assert.NotPanics(t, func() {
		b.ObserveValidation("DISPONIBLE")
		b.ObserveWrite("create", "ok")
		b.ObserveSlotRace()
		n.ObserveEmails("recordatorio", 1, 0)
		r.ObserveSweep(1, 0, 0)
	})
}
