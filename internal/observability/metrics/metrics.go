// Package metrics exposes the platform's Prometheus instrumentation. All
// Observe methods are nil-safe so wiring metrics stays optional in tests.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking validation and lifecycle
// flows.
type BookingMetrics struct {
	validationsTotal *prometheus.CounterVec
	writesTotal      *prometheus.CounterVec
	slotRaces        prometheus.Counter
}

// NewBookingMetrics registers booking metrics on reg (default registerer
// when nil).
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		validationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutorias",
			Subsystem: "bookings",
			Name:      "validations_total",
			Help:      "Availability validations by verdict reason",
		}, []string{"motivo"}),
		writesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutorias",
			Subsystem: "bookings",
			Name:      "writes_total",
			Help:      "Booking writes by operation and outcome",
		}, []string{"operation", "outcome"}),
		slotRaces: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tutorias",
			Subsystem: "bookings",
			Name:      "slot_races_total",
			Help:      "Writes rejected by the exclusion constraint after validation passed",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.validationsTotal, m.writesTotal, m.slotRaces)
	return m
}

// ObserveValidation counts one validation verdict.
func (m *BookingMetrics) ObserveValidation(motivo string) {
	if m == nil {
		return
	}
	m.validationsTotal.WithLabelValues(motivo).Inc()
}

// ObserveWrite counts one booking write attempt.
func (m *BookingMetrics) ObserveWrite(operation, outcome string) {
	if m == nil {
		return
	}
	m.writesTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveSlotRace counts one exclusion-constraint rejection.
func (m *BookingMetrics) ObserveSlotRace() {
	if m == nil {
		return
	}
	m.slotRaces.Inc()
}

// NotifyMetrics exposes counters for email dispatches.
type NotifyMetrics struct {
	emailsTotal *prometheus.CounterVec
}

// NewNotifyMetrics registers notification metrics on reg.
func NewNotifyMetrics(reg prometheus.Registerer) *NotifyMetrics {
	m := &NotifyMetrics{
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutorias",
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Booking emails by kind and outcome",
		}, []string{"tipo", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.emailsTotal)
	return m
}

// ObserveEmails counts one dispatch's sent and failed emails.
func (m *NotifyMetrics) ObserveEmails(tipo string, sent, failed int) {
	if m == nil {
		return
	}
	m.emailsTotal.WithLabelValues(tipo, "sent").Add(float64(sent))
	m.emailsTotal.WithLabelValues(tipo, "failed").Add(float64(failed))
}

// ReminderMetrics exposes counters for the daily reminder sweep.
type ReminderMetrics struct {
	sweepsTotal  prometheus.Counter
	resultsTotal *prometheus.CounterVec
}

// NewReminderMetrics registers reminder metrics on reg.
func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	m := &ReminderMetrics{
		sweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tutorias",
			Subsystem: "reminders",
			Name:      "sweeps_total",
			Help:      "Reminder sweep runs",
		}),
		resultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutorias",
			Subsystem: "reminders",
			Name:      "results_total",
			Help:      "Reminder outcomes per sweep item",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sweepsTotal, m.resultsTotal)
	return m
}

// ObserveSweep counts one sweep with its per-item outcomes.
func (m *ReminderMetrics) ObserveSweep(sent, failed, skipped int) {
	if m == nil {
		return
	}
	m.sweepsTotal.Inc()
	m.resultsTotal.WithLabelValues("sent").Add(float64(sent))
	m.resultsTotal.WithLabelValues("failed").Add(float64(failed))
	m.resultsTotal.WithLabelValues("skipped").Add(float64(skipped))
}
