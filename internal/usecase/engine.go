package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"JobScanner/internal/domain"
	"JobScanner/internal/ports"
)

// ErrStoreUnavailable means every write of a non-empty batch failed.
var ErrStoreUnavailable = errors.New("job store rejected every upsert")

// Engine decides insert, update or no-op for validated postings.
type Engine struct {
	store  ports.JobStore
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine wires the store the engine writes to.
func NewEngine(store ports.JobStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger, now: time.Now}
}

// Apply upserts the batch one key at a time with a single observation
// timestamp. A failing record is counted and skipped; ErrStoreUnavailable is
// returned only when nothing could be written.
func (e *Engine) Apply(ctx context.Context, batch []domain.JobPosting) (domain.BatchResult, error) {
	var result domain.BatchResult
	if len(batch) == 0 {
		return result, nil
	}

	seenAt := e.now().UTC()
	var lastErr error
	for _, posting := range batch {
		if err := ctx.Err(); err != nil {
			result.Failed += len(batch) - result.Attempted()
			return result, err
		}

		if posting.IdentityKey == "" {
			posting.IdentityKey = domain.IdentityKey(posting.SourceCompany, posting.URL, posting.Title, posting.Location, domain.IdentityByURL)
		}

		outcome, err := e.upsert(ctx, posting, seenAt)
		if err != nil {
			lastErr = err
			result.Failed++
			e.logger.Warn("upsert failed", "company", posting.SourceCompany, "url", posting.URL, "error", err)
			continue
		}

		switch outcome {
		case domain.OutcomeInserted:
			result.Inserted++
		case domain.OutcomeUpdated:
			result.Updated++
		default:
			result.Unchanged++
		}
	}

	if result.Failed == len(batch) {
		return result, fmt.Errorf("%w: %w", ErrStoreUnavailable, lastErr)
	}
	return result, nil
}

// upsert retries once on a lost insert race; the second attempt sees the
// winner's row and becomes an update.
func (e *Engine) upsert(ctx context.Context, posting domain.JobPosting, seenAt time.Time) (domain.UpsertOutcome, error) {
	outcome, err := e.store.Upsert(ctx, posting, seenAt)
	if errors.Is(err, domain.ErrUpsertConflict) {
		e.logger.Debug("upsert conflict, retrying", "key", posting.IdentityKey)
		outcome, err = e.store.Upsert(ctx, posting, seenAt)
	}
	return outcome, err
}
