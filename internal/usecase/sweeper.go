package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"JobScanner/internal/domain"
	"JobScanner/internal/ports"
)

// Sweeper deletes postings that have not been re-observed within the retention window.
type Sweeper struct {
	store     ports.JobStore
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewSweeper builds a sweeper for the given window.
func NewSweeper(store ports.JobStore, retention time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{store: store, retention: retention, logger: logger, now: time.Now}
}

// Sweep removes records whose last_seen_at is older than now minus the window.
// Errors are logged and returned; the next scheduled run retries.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, fmt.Errorf("retention window must be positive, got %s", s.retention)
	}

	started := s.now().UTC()
	cutoff := started.Add(-s.retention)

	deleted, err := s.store.DeleteWhere(ctx, domain.DeletePredicate{LastSeenBefore: cutoff})
	if err != nil {
		s.logger.Error("sweep failed", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("sweep before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	s.logger.Info("sweep finished",
		"deleted", deleted,
		"cutoff", cutoff,
		"retention", s.retention.String(),
		"duration", time.Since(started).String(),
	)
	return deleted, nil
}
