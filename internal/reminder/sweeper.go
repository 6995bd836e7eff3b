package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/tutorwise/tutorwise-platform/internal/notify"
	"github.com/tutorwise/tutorwise-platform/internal/observability/metrics"
	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

// BookingSource lists tomorrow's confirmed bookings with recipients joined.
type BookingSource interface {
	ListConfirmedBetween(ctx context.Context, from, to time.Time) ([]notify.BookingEmail, error)
}

// EmailDispatcher sends the reminder emails.
type EmailDispatcher interface {
	Dispatch(ctx context.Context, kind notify.Kind, b notify.BookingEmail) (*notify.DispatchResult, error)
}

// Report summarizes one sweep.
type Report struct {
	Found     int `json:"encontradas"`
	Attempted int `json:"intentadas"`
	Sent      int `json:"enviadas"`
	Failed    int `json:"fallidas"`
	Skipped   int `json:"omitidas"`
}

// Sweeper emails clients about tomorrow's confirmed sessions. Failures are
// isolated per booking; one bad address never stops the rest.
type Sweeper struct {
	bookings   BookingSource
	dispatcher EmailDispatcher
	processed  *ProcessedStore
	loc        *time.Location
	metrics    *metrics.ReminderMetrics
	logger     *logging.Logger
}

// NewSweeper creates a sweeper. processed and m may be nil.
func NewSweeper(bookings BookingSource, dispatcher EmailDispatcher, processed *ProcessedStore,
	loc *time.Location, m *metrics.ReminderMetrics, logger *logging.Logger) *Sweeper {
	if bookings == nil {
		panic("reminder: booking source required")
	}
	if dispatcher == nil {
		panic("reminder: dispatcher required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Sweeper{
		bookings:   bookings,
		dispatcher: dispatcher,
		processed:  processed,
		loc:        loc,
		metrics:    m,
		logger:     logger,
	}
}

// Run sweeps tomorrow's window in the configured time zone.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	return s.runAt(ctx, time.Now().In(s.loc))
}

// runAt is Run with an injectable clock.
func (s *Sweeper) runAt(ctx context.Context, now time.Time) (*Report, error) {
	targetDate := now.AddDate(0, 0, 1)
	from := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, s.loc)
	to := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 23, 59, 59, 0, s.loc)

	emails, err := s.bookings.ListConfirmedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reminder: list confirmed bookings: %w", err)
	}

	report := &Report{Found: len(emails)}
	for _, email := range emails {
		done, err := s.processed.AlreadyProcessed(ctx, email.BookingID, from)
		if err != nil {
			s.logger.Error("reminder processed check failed", "booking_id", email.BookingID, "error", err)
		} else if done {
			report.Skipped++
			continue
		}

		report.Attempted++
		result, err := s.dispatcher.Dispatch(ctx, notify.KindReminder, email)
		if err != nil || result.EmailsSent == 0 {
			report.Failed++
			s.logger.Error("reminder send failed", "booking_id", email.BookingID, "error", err)
			continue
		}
		report.Sent++

		if err := s.processed.MarkProcessed(ctx, email.BookingID, from); err != nil {
			s.logger.Error("reminder mark processed failed", "booking_id", email.BookingID, "error", err)
		}
	}

	s.metrics.ObserveSweep(report.Sent, report.Failed, report.Skipped)
	s.logger.Info("reminder sweep finished",
		"target_date", from.Format(time.DateOnly),
		"found", report.Found, "sent", report.Sent,
		"failed", report.Failed, "skipped", report.Skipped)
	return report, nil
}
