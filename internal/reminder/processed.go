// Package reminder runs the daily sweep that emails clients about tomorrow's
// confirmed sessions.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProcessedStore remembers which (booking, target date) pairs were already
// reminded, so a rerun of the sweep on the same day stays idempotent. Backed
// by Redis keys with a TTL slightly longer than the sweep horizon.
type ProcessedStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProcessedStore creates a processed store. A nil client disables the
// guard: every booking then looks unprocessed.
func NewProcessedStore(client *redis.Client, ttl time.Duration) *ProcessedStore {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &ProcessedStore{client: client, ttl: ttl}
}

func processedKey(bookingID int64, targetDate time.Time) string {
	return fmt.Sprintf("tutorias:reminders:%s:%d", targetDate.Format(time.DateOnly), bookingID)
}

// AlreadyProcessed checks whether a reminder for this booking and date went
// out before.
func (s *ProcessedStore) AlreadyProcessed(ctx context.Context, bookingID int64, targetDate time.Time) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}
	n, err := s.client.Exists(ctx, processedKey(bookingID, targetDate)).Result()
	if err != nil {
		return false, fmt.Errorf("reminder: check processed: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records that a reminder went out.
func (s *ProcessedStore) MarkProcessed(ctx context.Context, bookingID int64, targetDate time.Time) error {
	if s == nil || s.client == nil {
		return nil
	}
	if err := s.client.Set(ctx, processedKey(bookingID, targetDate), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("reminder: mark processed: %w", err)
	}
	return nil
}
