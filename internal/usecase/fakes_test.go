package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"JobScanner/internal/domain"
	"JobScanner/internal/ports"
)

type fakeAdapter struct {
	name     string
	company  string
	mode     domain.IdentityMode
	postings []domain.RawPosting
	err      error
	// block, when set, holds Fetch until closed or the context ends.
	block chan struct{}
	// stall ignores the context entirely.
	stall   time.Duration
	panics  bool
	calls   atomic.Int32
	lastReq atomic.Value
}

func (f *fakeAdapter) Name() string    { return f.name }
func (f *fakeAdapter) Company() string { return f.company }

func (f *fakeAdapter) IdentityMode() domain.IdentityMode {
	if f.mode == "" {
		return domain.IdentityByURL
	}
	return f.mode
}

func (f *fakeAdapter) Fetch(ctx context.Context, roles []string, _ time.Duration) ([]domain.RawPosting, error) {
	f.calls.Add(1)
	f.lastReq.Store(roles)

	if f.panics {
		panic("boom")
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.stall > 0 {
		time.Sleep(f.stall)
	}
	return f.postings, f.err
}

type scopedAdapter struct {
	*fakeAdapter
	roles []string
}

func (s scopedAdapter) Roles() []string { return s.roles }

type fakeCatalog struct {
	adapters []ports.SourceAdapter
}

func (c fakeCatalog) Adapters() ([]ports.SourceAdapter, error) {
	return c.adapters, nil
}

type failingStore struct {
	ports.JobStore
	err error
}

func (s failingStore) Upsert(context.Context, domain.JobPosting, time.Time) (domain.UpsertOutcome, error) {
	return "", s.err
}

// conflictOnce loses the first insert race for every key.
type conflictOnce struct {
	ports.JobStore
	conflicts atomic.Int32
	seen      map[string]bool
}

func (s *conflictOnce) Upsert(ctx context.Context, p domain.JobPosting, at time.Time) (domain.UpsertOutcome, error) {
	if !s.seen[p.IdentityKey] {
		s.seen[p.IdentityKey] = true
		s.conflicts.Add(1)
		// Another writer inserted the row first.
		if _, err := s.JobStore.Upsert(ctx, p, at); err != nil {
			return "", err
		}
		return "", domain.ErrUpsertConflict
	}
	return s.JobStore.Upsert(ctx, p, at)
}

type fakeLock struct {
	ok       bool
	err      error
	released atomic.Int32
}

func (l *fakeLock) TryAcquire(context.Context) (func(context.Context) error, bool, error) {
	if l.err != nil || !l.ok {
		return nil, false, l.err
	}
	return func(context.Context) error {
		l.released.Add(1)
		return nil
	}, true, nil
}

type recordingSink struct {
	reports []domain.CycleReport
}

func (r *recordingSink) Emit(_ context.Context, report domain.CycleReport) error {
	r.reports = append(r.reports, report)
	return nil
}

var errBoom = errors.New("boom")

func rawPosting(title, url string) domain.RawPosting {
	return domain.RawPosting{Title: title, URL: url, Location: "Remote"}
}
