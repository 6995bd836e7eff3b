// Package dashboard aggregates the counts the admin home screen shows.
package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Stats holds the dashboard home counters.
type Stats struct {
	Clients        int64            `json:"clientes"`
	Tutors         int64            `json:"tutores"`
	Services       int64            `json:"servicios"`
	Bookings       int64            `json:"reservas"`
	ByStatus       map[string]int64 `json:"reservas_por_estado"`
	TodayConfirmed int64            `json:"confirmadas_hoy"`
	Upcoming       int64            `json:"proximas_confirmadas"`
	GeneratedAt    string           `json:"generado_en"`
}

// StatsRepository queries dashboard metrics from the database.
type StatsRepository struct {
	db  *sql.DB
	loc *time.Location
}

// NewStatsRepository creates a stats repository. Day boundaries for the
// "today" counters follow loc.
func NewStatsRepository(db *sql.DB, loc *time.Location) *StatsRepository {
	if db == nil {
		panic("dashboard: db required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &StatsRepository{db: db, loc: loc}
}

// GetStats retrieves the dashboard counters.
func (r *StatsRepository) GetStats(ctx context.Context) (*Stats, error) {
	now := time.Now().In(r.loc)
	stats := &Stats{
		ByStatus:    map[string]int64{},
		GeneratedAt: now.Format(time.RFC3339),
	}

	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM clientes`, &stats.Clients},
		{`SELECT COUNT(*) FROM tutores`, &stats.Tutors},
		{`SELECT COUNT(*) FROM servicios`, &stats.Services},
		{`SELECT COUNT(*) FROM reservas`, &stats.Bookings},
	}
	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("dashboard stats: %q: %w", c.query, err)
		}
	}

	rows, err := r.db.QueryContext(ctx, `SELECT estado, COUNT(*) FROM reservas GROUP BY estado`)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var estado string
		var n int64
		if err := rows.Scan(&estado, &n); err != nil {
			return nil, fmt.Errorf("dashboard stats: scan status count: %w", err)
		}
		stats.ByStatus[estado] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard stats: count by status: %w", err)
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)
	endOfDay := startOfDay.AddDate(0, 0, 1)

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservas
		WHERE estado = 'Confirmada' AND fecha_hora >= $1 AND fecha_hora < $2`,
		startOfDay, endOfDay).Scan(&stats.TodayConfirmed)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: count today: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservas
		WHERE estado = 'Confirmada' AND fecha_hora >= $1`,
		endOfDay).Scan(&stats.Upcoming)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: count upcoming: %w", err)
	}

	return stats, nil
}
