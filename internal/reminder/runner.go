package reminder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

// Runner fires the sweep once a day at a configured local time.
type Runner struct {
	sweeper *Sweeper
	runAt   string // "HH:MM"
	loc     *time.Location
	logger  *logging.Logger
}

// NewRunner creates a daily runner for the sweeper.
func NewRunner(sweeper *Sweeper, runAt string, loc *time.Location, logger *logging.Logger) (*Runner, error) {
	if sweeper == nil {
		panic("reminder: sweeper required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	if _, _, err := parseRunAt(runAt); err != nil {
		return nil, err
	}
	return &Runner{sweeper: sweeper, runAt: runAt, loc: loc, logger: logger}, nil
}

// Run blocks until ctx is cancelled, sweeping once per day at the configured
// time.
func (r *Runner) Run(ctx context.Context) {
	for {
		next := r.nextRun(time.Now().In(r.loc))
		r.logger.Info("reminder runner sleeping", "next_run", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("reminder runner stopped")
			return
		case <-timer.C:
		}

		if _, err := r.sweeper.Run(ctx); err != nil {
			r.logger.Error("reminder sweep failed", "error", err)
		}
	}
}

// nextRun returns the next occurrence of runAt strictly after now.
func (r *Runner) nextRun(now time.Time) time.Time {
	hour, minute, _ := parseRunAt(r.runAt)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, r.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func parseRunAt(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("reminder: run time must be HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("reminder: invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("reminder: invalid minute in %q", s)
	}
	return hour, minute, nil
}
