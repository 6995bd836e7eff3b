package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	services map[int64]*ServiceInfo
	err      error
}

func (f *fakeCatalog) GetService(_ context.Context, id int64) (*ServiceInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	svc, ok := f.services[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}

type fakeWindows struct {
	byDay map[time.Weekday][]Window
	err   error
}

func (f *fakeWindows) ActiveWindows(_ context.Context, _ int64, day time.Weekday) ([]Window, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byDay[day], nil
}

type fakeBookings struct {
	slots []BookedSlot
	err   error
}

func (f *fakeBookings) ListForTutorBetween(_ context.Context, _ int64, from, to time.Time) ([]BookedSlot, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []BookedSlot
	for _, s := range f.slots {
		if !s.StartsAt.Before(from) && s.StartsAt.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

// monday returns a Monday at the given local clock time.
func monday(hour, min int) time.Time {
	return time.Date(2025, time.March, 3, hour, min, 0, 0, time.UTC)
}

func newTestValidator(catalog *fakeCatalog, windows *fakeWindows, bookings *fakeBookings) *Validator {
	if catalog == nil {
		catalog = &fakeCatalog{services: map[int64]*ServiceInfo{
			1: {ID: 1, Name: "Clase de matemáticas", DurationMinutes: 50},
		}}
	}
	if windows == nil {
		windows = &fakeWindows{byDay: map[time.Weekday][]Window{
			time.Monday: {{ID: 10, Start: "09:00:00", End: "17:00:00"}},
		}}
	}
	if bookings == nil {
		bookings = &fakeBookings{}
	}
	return NewValidator(catalog, windows, bookings)
}

func TestValidateInputErrors(t *testing.T) {
	v := newTestValidator(nil, nil, nil)
	ctx := context.Background()

	_, err := v.Validate(ctx, 0, monday(10, 0), 1, nil)
	assert.Error(t, err)

	_, err = v.Validate(ctx, 5, monday(10, 0), 0, nil)
	assert.Error(t, err)

	_, err = v.Validate(ctx, 5, time.Time{}, 1, nil)
	assert.Error(t, err)
}

func TestValidateUnknownService(t *testing.T) {
	v := newTestValidator(nil, nil, nil)

	_, err := v.Validate(context.Background(), 5, monday(10, 0), 99, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestValidateStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	ctx := context.Background()

	v := newTestValidator(&fakeCatalog{err: boom}, nil, nil)
	_, err := v.Validate(ctx, 5, monday(10, 0), 1, nil)
	assert.ErrorIs(t, err, boom)

	v = newTestValidator(nil, &fakeWindows{err: boom}, nil)
	_, err = v.Validate(ctx, 5, monday(10, 0), 1, nil)
	assert.ErrorIs(t, err, boom)

	v = newTestValidator(nil, nil, &fakeBookings{err: boom})
	_, err = v.Validate(ctx, 5, monday(10, 0), 1, nil)
	assert.ErrorIs(t, err, boom)
}

func TestValidateNoAvailabilityConfigured(t *testing.T) {
	v := newTestValidator(nil, nil, nil)

	// Tuesday has no windows at all.
	start := monday(10, 0).AddDate(0, 0, 1)
	verdict, err := v.Validate(context.Background(), 5, start, 1, nil)
	require.NoError(t, err)
	assert.False(t, verdict.Available)
	assert.Equal(t, ReasonNoAvailability, verdict.Reason)
	assert.Contains(t, verdict.Message, "martes")
	assert.Equal(t, int(time.Tuesday), verdict.Details["dia_semana"])
	assert.Equal(t, "10:00:00", verdict.Details["hora_solicitada"])
}

func TestValidateOutsideWindow(t *testing.T) {
	v := newTestValidator(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		start time.Time
	}{
		{"before opening", monday(8, 30)},
		{"ends past closing", monday(16, 20)}, // 16:20 + 50min = 17:10
		{"after closing", monday(17, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := v.Validate(ctx, 5, tt.start, 1, nil)
			require.NoError(t, err)
			assert.False(t, verdict.Available)
			assert.Equal(t, ReasonOutsideWindow, verdict.Reason)
			assert.Equal(t, "09:00:00-17:00:00", verdict.Details["horarios_disponibles"])
			assert.Equal(t, "50 minutos", verdict.Details["duracion_servicio"])
		})
	}
}

func TestValidateLastFittingSlot(t *testing.T) {
	v := newTestValidator(nil, nil, nil)

	// 16:10 + 50min = exactly 17:00, the window edge.
	verdict, err := v.Validate(context.Background(), 5, monday(16, 10), 1, nil)
	require.NoError(t, err)
	assert.True(t, verdict.Available)
	assert.Equal(t, ReasonAvailable, verdict.Reason)
}

func TestValidateStraddlingAdjacentWindowsDenied(t *testing.T) {
	windows := &fakeWindows{byDay: map[time.Weekday][]Window{
		time.Monday: {
			{ID: 10, Start: "09:00:00", End: "12:00:00"},
			{ID: 11, Start: "12:00:00", End: "17:00:00"},
		},
	}}
	v := newTestValidator(nil, windows, nil)

	// 11:30-12:20 crosses the seam between two contiguous windows.
	verdict, err := v.Validate(context.Background(), 5, monday(11, 30), 1, nil)
	require.NoError(t, err)
	assert.False(t, verdict.Available)
	assert.Equal(t, ReasonOutsideWindow, verdict.Reason)
	assert.Equal(t, "09:00:00-12:00:00, 12:00:00-17:00:00", verdict.Details["horarios_disponibles"])
}

func TestValidateDirectConflict(t *testing.T) {
	bookings := &fakeBookings{slots: []BookedSlot{
		{ID: 77, StartsAt: monday(10, 30), EndsAt: monday(11, 20), ServiceName: "Clase de física", Status: "Confirmada"},
	}}
	v := newTestValidator(nil, nil, bookings)

	// The 10:30 start falls inside the 10:00-10:50 candidate interval.
	verdict, err := v.Validate(context.Background(), 5, monday(10, 0), 1, nil)
	require.NoError(t, err)
	assert.False(t, verdict.Available)
	assert.Equal(t, ReasonBookingConflict, verdict.Reason)

	conflict, ok := verdict.Details["reserva_conflicto"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(77), conflict["id"])
	assert.Equal(t, "Confirmada", conflict["estado"])
}

func TestValidatePartialOverlap(t *testing.T) {
	// Existing 09:30-10:20; candidate 10:00-10:50 overlaps but the existing
	// start is outside the candidate interval.
	bookings := &fakeBookings{slots: []BookedSlot{
		{ID: 42, StartsAt: monday(9, 30), EndsAt: monday(10, 20), ServiceName: "Clase de física", Status: "Pendiente"},
	}}
	v := newTestValidator(nil, nil, bookings)

	verdict, err := v.Validate(context.Background(), 5, monday(10, 0), 1, nil)
	require.NoError(t, err)
	assert.False(t, verdict.Available)
	assert.Equal(t, ReasonPartialOverlap, verdict.Reason)

	existing, ok := verdict.Details["reserva_existente"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Clase de física", existing["servicio"])
	requested, ok := verdict.Details["reserva_solicitada"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Clase de matemáticas", requested["servicio"])
}

func TestValidateDirectConflictWinsOverPartialOverlap(t *testing.T) {
	// Two conflicting bookings: one only overlapping, one starting inside the
	// candidate. The start-within conflict is reported even though the
	// overlapping one comes first in slot order.
	bookings := &fakeBookings{slots: []BookedSlot{
		{ID: 1, StartsAt: monday(9, 30), EndsAt: monday(10, 20), ServiceName: "A", Status: "Confirmada"},
		{ID: 2, StartsAt: monday(10, 10), EndsAt: monday(11, 0), ServiceName: "B", Status: "Pendiente"},
	}}
	v := newTestValidator(nil, nil, bookings)

	verdict, err := v.Validate(context.Background(), 5, monday(10, 0), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonBookingConflict, verdict.Reason)
	conflict := verdict.Details["reserva_conflicto"].(map[string]any)
	assert.Equal(t, int64(2), conflict["id"])
}

func TestValidateBackToBackAllowed(t *testing.T) {
	// Existing 10:00-10:50; a new booking at 10:50 touches but does not
	// overlap.
	bookings := &fakeBookings{slots: []BookedSlot{
		{ID: 7, StartsAt: monday(10, 0), EndsAt: monday(10, 50), ServiceName: "Clase de física", Status: "Confirmada"},
	}}
	v := newTestValidator(nil, nil, bookings)

	verdict, err := v.Validate(context.Background(), 5, monday(10, 50), 1, nil)
	require.NoError(t, err)
	assert.True(t, verdict.Available)
	assert.Equal(t, ReasonAvailable, verdict.Reason)
}

func TestValidateSelfExclusionOnEdit(t *testing.T) {
	bookings := &fakeBookings{slots: []BookedSlot{
		{ID: 7, StartsAt: monday(10, 0), EndsAt: monday(10, 50), ServiceName: "Clase de física", Status: "Confirmada"},
	}}
	v := newTestValidator(nil, nil, bookings)
	ctx := context.Background()

	// Without exclusion the booking collides with itself.
	verdict, err := v.Validate(ctx, 5, monday(10, 0), 1, nil)
	require.NoError(t, err)
	assert.False(t, verdict.Available)

	// Excluding its own id makes the edit legal.
	exclude := int64(7)
	verdict, err = v.Validate(ctx, 5, monday(10, 0), 1, &exclude)
	require.NoError(t, err)
	assert.True(t, verdict.Available)

	// Excluding some other id changes nothing.
	other := int64(999)
	verdict, err = v.Validate(ctx, 5, monday(10, 0), 1, &other)
	require.NoError(t, err)
	assert.False(t, verdict.Available)
}

func TestValidateIdempotent(t *testing.T) {
	bookings := &fakeBookings{slots: []BookedSlot{
		{ID: 7, StartsAt: monday(11, 0), EndsAt: monday(11, 50), ServiceName: "Clase de física", Status: "Confirmada"},
	}}
	v := newTestValidator(nil, nil, bookings)
	ctx := context.Background()

	first, err := v.Validate(ctx, 5, monday(10, 0), 1, nil)
	require.NoError(t, err)
	second, err := v.Validate(ctx, 5, monday(10, 0), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidateAvailableVerdictDetails(t *testing.T) {
	windows := &fakeWindows{byDay: map[time.Weekday][]Window{
		time.Monday: {{ID: 10, Start: "09:00:00", End: "12:00:00"}},
	}}
	v := newTestValidator(nil, windows, nil)

	start := monday(9, 0)
	verdict, err := v.Validate(context.Background(), 5, start, 1, nil)
	require.NoError(t, err)
	require.True(t, verdict.Available)
	assert.Equal(t, "El horario está disponible para la reserva", verdict.Message)
	assert.Equal(t, int64(5), verdict.Details["tutor_id"])
	assert.Equal(t, start.Format(time.RFC3339), verdict.Details["fecha_hora"])
	assert.Equal(t, "Clase de matemáticas", verdict.Details["servicio"])
	assert.Equal(t, 50, verdict.Details["duracion_minutos"])
	assert.Equal(t, "lunes", verdict.Details["dia_semana"])

	block, ok := verdict.Details["bloque_disponibilidad"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "09:00:00", block["inicio"])
	assert.Equal(t, "12:00:00", block["fin"])
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "domingo", DayName(time.Sunday))
	assert.Equal(t, "lunes", DayName(time.Monday))
	assert.Equal(t, "sábado", DayName(time.Saturday))
}
