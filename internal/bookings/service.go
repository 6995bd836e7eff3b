package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tutorwise/tutorwise-platform/internal/notify"
	"github.com/tutorwise/tutorwise-platform/internal/observability/metrics"
	"github.com/tutorwise/tutorwise-platform/internal/scheduling"
	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

var bookingsTracer = otel.Tracer("tutorias.internal.bookings")

// ErrDenied carries a deny verdict out of Create/Reschedule. The verdict
// message is surfaced verbatim to the caller.
type ErrDenied struct {
	Verdict *scheduling.Verdict
}

func (e *ErrDenied) Error() string {
	return e.Verdict.Message
}

// Service runs every booking write through the availability validator before
// it touches the database, and fires the matching notification afterwards.
type Service struct {
	repo       *Repository
	validator  *scheduling.Validator
	catalog    scheduling.ServiceCatalog
	dispatcher *notify.Dispatcher
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger
}

// NewService constructs a bookings service. dispatcher and m may be nil.
func NewService(repo *Repository, validator *scheduling.Validator, catalog scheduling.ServiceCatalog,
	dispatcher *notify.Dispatcher, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if validator == nil {
		panic("bookings: validator required")
	}
	if catalog == nil {
		panic("bookings: service catalog required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:       repo,
		validator:  validator,
		catalog:    catalog,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

// CheckAvailability runs the validator without writing anything.
func (s *Service) CheckAvailability(ctx context.Context, tutorID int64, start time.Time, serviceID int64, excludeBookingID *int64) (*scheduling.Verdict, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.check_availability")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("tutorias.tutor_id", tutorID),
		attribute.Int64("tutorias.servicio_id", serviceID),
	)

	verdict, err := s.validator.Validate(ctx, tutorID, start, serviceID, excludeBookingID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveValidation(string(verdict.Reason))
	return verdict, nil
}

// Create validates and inserts a booking. A deny returns *ErrDenied and
// writes nothing. The exclusion constraint stays the final authority: a
// race that slips past validation surfaces as the same deny.
func (s *Service) Create(ctx context.Context, b *Booking) error {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create")
	defer span.End()
	span.SetAttributes(attribute.Int64("tutorias.tutor_id", b.TutorID))

	endsAt, err := s.validateWrite(ctx, b, nil)
	if err != nil {
		return err
	}

	if err := s.repo.Create(ctx, b, endsAt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveSlotRace()
			return s.slotTakenDenial()
		}
		span.RecordError(err)
		s.metrics.ObserveWrite("create", "error")
		return err
	}
	s.metrics.ObserveWrite("create", "ok")
	s.logger.Info("booking created", "booking_id", b.ID, "tutor_id", b.TutorID, "fecha_hora", b.StartsAt)

	if b.Status == StatusConfirmed {
		s.notifyAsync(b.ID, notify.KindConfirmation)
	}
	return nil
}

// Reschedule validates and rewrites a booking's schedule fields. The booking
// is excluded from its own conflict check.
func (s *Service) Reschedule(ctx context.Context, b *Booking) error {
	ctx, span := bookingsTracer.Start(ctx, "bookings.reschedule")
	defer span.End()
	span.SetAttributes(attribute.Int64("tutorias.booking_id", b.ID))

	endsAt, err := s.validateWrite(ctx, b, &b.ID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateSchedule(ctx, b, endsAt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveSlotRace()
			return s.slotTakenDenial()
		}
		span.RecordError(err)
		s.metrics.ObserveWrite("reschedule", "error")
		return err
	}
	s.metrics.ObserveWrite("reschedule", "ok")
	s.logger.Info("booking rescheduled", "booking_id", b.ID, "fecha_hora", b.StartsAt)
	return nil
}

// SetStatus transitions a booking's lifecycle state. Confirmed fires a
// confirmation email, Cancelled a cancellation email; both fire-and-forget.
func (s *Service) SetStatus(ctx context.Context, id int64, status Status) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.set_status")
	defer span.End()
	span.SetAttributes(attribute.Int64("tutorias.booking_id", id))

	if !status.Valid() {
		return nil, fmt.Errorf("bookings: invalid status %q", status)
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		span.RecordError(err)
		return nil, err
	}
	current.Status = status
	s.logger.Info("booking status changed", "booking_id", id, "estado", status)

	switch status {
	case StatusConfirmed:
		s.notifyAsync(id, notify.KindConfirmation)
	case StatusCancelled:
		s.notifyAsync(id, notify.KindCancellation)
	}
	return current, nil
}

// Get loads one booking.
func (s *Service) Get(ctx context.Context, id int64) (*Booking, error) {
	return s.repo.Get(ctx, id)
}

// Calendar returns all bookings in [from, to) with display names.
func (s *Service) Calendar(ctx context.Context, from, to time.Time) ([]CalendarEntry, error) {
	return s.repo.ListBetween(ctx, from, to)
}

// Delete removes a booking permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("booking deleted", "booking_id", id)
	return nil
}

func (s *Service) validateWrite(ctx context.Context, b *Booking, exclude *int64) (time.Time, error) {
	if b.ClientID <= 0 {
		return time.Time{}, fmt.Errorf("bookings: client id is required")
	}

	verdict, err := s.validator.Validate(ctx, b.TutorID, b.StartsAt, b.ServiceID, exclude)
	if err != nil {
		return time.Time{}, err
	}
	s.metrics.ObserveValidation(string(verdict.Reason))
	if !verdict.Available {
		return time.Time{}, &ErrDenied{Verdict: verdict}
	}

	svc, err := s.catalog.GetService(ctx, b.ServiceID)
	if err != nil {
		return time.Time{}, err
	}
	return b.StartsAt.Add(time.Duration(svc.DurationMinutes) * time.Minute), nil
}

// slotTakenDenial shapes an exclusion-constraint rejection like a validator
// deny so the API reports races and pre-checked conflicts identically.
func (s *Service) slotTakenDenial() error {
	return &ErrDenied{Verdict: &scheduling.Verdict{
		Available: false,
		Reason:    scheduling.ReasonBookingConflict,
		Message:   "El tutor ya tiene una reserva en este horario",
	}}
}

// notifyAsync dispatches a booking email without blocking or failing the
// write that triggered it.
func (s *Service) notifyAsync(bookingID int64, kind notify.Kind) {
	if s.dispatcher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		email, err := s.repo.EmailContext(ctx, bookingID)
		if err != nil {
			s.logger.Error("notification context load failed", "booking_id", bookingID, "kind", kind, "error", err)
			return
		}
		if _, err := s.dispatcher.Dispatch(ctx, kind, *email); err != nil {
			s.logger.Error("notification dispatch failed", "booking_id", bookingID, "kind", kind, "error", err)
		}
	}()
}
