package ports

import (
	"context"
	"time"

	"JobScanner/internal/domain"
)

// SourceAdapter fetches raw postings from one career site.
type SourceAdapter interface {
	Name() string
	Company() string
	IdentityMode() domain.IdentityMode
	Fetch(ctx context.Context, roles []string, lookback time.Duration) ([]domain.RawPosting, error)
}

// RoleScoped is implemented by adapters that search their own role list instead of the global one.
type RoleScoped interface {
	Roles() []string
}

// AdapterCatalog discovers the enabled adapters for a cycle.
type AdapterCatalog interface {
	Adapters() ([]SourceAdapter, error)
}

// JobStore is the persistence contract of the pipeline.
type JobStore interface {
	// Upsert writes one observation atomically per identity key.
	Upsert(ctx context.Context, posting domain.JobPosting, seenAt time.Time) (domain.UpsertOutcome, error)
	QueryByTimeRange(ctx context.Context, query domain.JobQuery) (domain.JobPage, error)
	DeleteWhere(ctx context.Context, predicate domain.DeletePredicate) (int64, error)
	Get(ctx context.Context, identityKey string) (domain.JobPosting, error)
	Companies(ctx context.Context) ([]string, error)
	Roles(ctx context.Context) ([]string, error)
}

// CycleLock guards against overlapping cycles across processes.
type CycleLock interface {
	// TryAcquire returns ok=false when another holder owns the lock.
	TryAcquire(ctx context.Context) (release func(context.Context) error, ok bool, err error)
}

// ReportSink receives every finished CycleReport.
type ReportSink interface {
	Emit(ctx context.Context, report domain.CycleReport) error
}

// Scheduler controls when jobs execute.
type Scheduler interface {
	Schedule(spec string, job func(time.Time)) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
