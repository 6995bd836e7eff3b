package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/tutorwise/tutorwise-platform/internal/observability/metrics"
	"github.com/tutorwise/tutorwise-platform/internal/scheduling"
	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

// Kind selects the email template and recipient set. The wire values are
// shared with the admin frontend.
type Kind string

const (
	KindConfirmation Kind = "confirmacion"
	KindReminder     Kind = "recordatorio"
	KindCancellation Kind = "cancelacion"
)

// BookingEmail carries everything the templates need about one booking.
type BookingEmail struct {
	BookingID       int64
	ClientName      string
	ClientEmail     string
	TutorName       string
	TutorEmail      string
	ServiceName     string
	StartsAt        time.Time
	DurationMinutes int
	Notes           string
}

// SendResult reports one recipient's outcome.
type SendResult struct {
	Recipient string `json:"destinatario"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// DispatchResult summarizes a dispatch. Partial failure is a normal outcome;
// callers decide whether to care.
type DispatchResult struct {
	EmailsSent  int          `json:"emails_enviados"`
	TotalEmails int          `json:"total_emails"`
	Results     []SendResult `json:"resultados"`
}

// Dispatcher maps a booking and a kind to the right recipients and
// templates, then sends through the configured EmailSender.
type Dispatcher struct {
	sender  EmailSender
	metrics *metrics.NotifyMetrics
	logger  *logging.Logger
}

// NewDispatcher creates a dispatcher over the given sender.
func NewDispatcher(sender EmailSender, logger *logging.Logger) *Dispatcher {
	if sender == nil {
		panic("notify: email sender required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{sender: sender, logger: logger}
}

// WithMetrics enables email delivery counters.
func (d *Dispatcher) WithMetrics(m *metrics.NotifyMetrics) *Dispatcher {
	d.metrics = m
	return d
}

// Dispatch sends the emails for one booking event. Confirmation and
// cancellation go to both client and tutor; reminders go to the client only.
// A failed recipient never aborts the others.
func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, b BookingEmail) (*DispatchResult, error) {
	if b.ClientEmail == "" || b.TutorEmail == "" {
		return nil, fmt.Errorf("notify: client and tutor email required")
	}

	msgs, err := d.buildMessages(kind, b)
	if err != nil {
		return nil, err
	}

	result := &DispatchResult{TotalEmails: len(msgs)}
	for _, msg := range msgs {
		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Error("booking email failed", "kind", kind, "booking_id", b.BookingID, "to", msg.To, "error", err)
			result.Results = append(result.Results, SendResult{Recipient: msg.To, Error: err.Error()})
			continue
		}
		result.EmailsSent++
		result.Results = append(result.Results, SendResult{Recipient: msg.To, Success: true})
	}

	d.metrics.ObserveEmails(string(kind), result.EmailsSent, result.TotalEmails-result.EmailsSent)
	d.logger.Info("booking emails dispatched",
		"kind", kind, "booking_id", b.BookingID,
		"sent", result.EmailsSent, "total", result.TotalEmails)
	return result, nil
}

func (d *Dispatcher) buildMessages(kind Kind, b BookingEmail) ([]EmailMessage, error) {
	switch kind {
	case KindConfirmation:
		return []EmailMessage{
			d.render(b, b.ClientEmail, b.ClientName,
				fmt.Sprintf("Confirmación de Tutoría - %s", b.ServiceName),
				fmt.Sprintf("Hola %s,\n\nTu tutoría ha sido confirmada.", b.ClientName)),
			d.render(b, b.TutorEmail, b.TutorName,
				fmt.Sprintf("Nueva Reserva Asignada - %s", b.ServiceName),
				fmt.Sprintf("Hola %s,\n\nSe te ha asignado una nueva reserva con %s.", b.TutorName, b.ClientName)),
		}, nil
	case KindReminder:
		return []EmailMessage{
			d.render(b, b.ClientEmail, b.ClientName,
				fmt.Sprintf("Recordatorio: Tutoría mañana - %s", b.ServiceName),
				fmt.Sprintf("Hola %s,\n\nTe recordamos que mañana tienes una tutoría.", b.ClientName)),
		}, nil
	case KindCancellation:
		return []EmailMessage{
			d.render(b, b.ClientEmail, b.ClientName,
				fmt.Sprintf("Cancelación de Tutoría - %s", b.ServiceName),
				fmt.Sprintf("Hola %s,\n\nTu tutoría ha sido cancelada.", b.ClientName)),
			d.render(b, b.TutorEmail, b.TutorName,
				fmt.Sprintf("Reserva Cancelada - %s", b.ServiceName),
				fmt.Sprintf("Hola %s,\n\nLa reserva con %s ha sido cancelada.", b.TutorName, b.ClientName)),
		}, nil
	default:
		return nil, fmt.Errorf("notify: unknown email kind %q", kind)
	}
}

func (d *Dispatcher) render(b BookingEmail, to, toName, subject, intro string) EmailMessage {
	fecha := FormatDateES(b.StartsAt)
	hora := b.StartsAt.Format("15:04")
	notes := b.Notes
	if notes == "" {
		notes = "Sin notas adicionales"
	}

	body := fmt.Sprintf(`%s

Servicio: %s
Fecha: %s
Hora: %s
Duración: %d minutos
Tutor: %s
Notas: %s
`, intro, b.ServiceName, fecha, hora, b.DurationMinutes, b.TutorName, notes)

	html := fmt.Sprintf(`<p>%s</p>
<ul>
  <li><strong>Servicio:</strong> %s</li>
  <li><strong>Fecha:</strong> %s</li>
  <li><strong>Hora:</strong> %s</li>
  <li><strong>Duración:</strong> %d minutos</li>
  <li><strong>Tutor:</strong> %s</li>
  <li><strong>Notas:</strong> %s</li>
</ul>`, intro, b.ServiceName, fecha, hora, b.DurationMinutes, b.TutorName, notes)

	return EmailMessage{To: to, ToName: toName, Subject: subject, Body: body, HTML: html}
}

var monthNames = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDateES renders a date the way the admin frontend shows it, e.g.
// "lunes, 3 de marzo de 2025".
func FormatDateES(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d",
		scheduling.DayName(t.Weekday()), t.Day(), monthNames[t.Month()-1], t.Year())
}
