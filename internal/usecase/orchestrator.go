package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"JobScanner/internal/domain"
	"JobScanner/internal/ports"
	"JobScanner/internal/roles"
)

const sinkTimeout = 10 * time.Second

// OrchestratorDeps wires all driven adapters into the scrape cycle.
type OrchestratorDeps struct {
	Catalog   ports.AdapterCatalog
	Validator *roles.Validator
	Tracker   *roles.Tracker
	Engine    *Engine
	// Lock is optional and only needed when several processes share a store.
	Lock   ports.CycleLock
	Sinks  []ports.ReportSink
	Logger *slog.Logger
}

// CycleSettings are the per-cycle knobs taken from configuration.
type CycleSettings struct {
	Roles          []string
	Lookback       time.Duration
	AdapterTimeout time.Duration
	Concurrency    int
}

// Orchestrator runs scrape cycles: fetch every source with bounded
// concurrency, validate roles, upsert per source and emit a CycleReport.
type Orchestrator struct {
	catalog   ports.AdapterCatalog
	validator *roles.Validator
	tracker   *roles.Tracker
	engine    *Engine
	lock      ports.CycleLock
	sinks     []ports.ReportSink
	logger    *slog.Logger
	settings  CycleSettings
	structure *validator.Validate
	now       func() time.Time

	running atomic.Bool

	mu   sync.RWMutex
	last *domain.CycleReport
}

// NewOrchestrator constructs the orchestration component.
func NewOrchestrator(deps OrchestratorDeps, settings CycleSettings) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if settings.Concurrency < 1 {
		settings.Concurrency = 1
	}
	if settings.AdapterTimeout <= 0 {
		settings.AdapterTimeout = 30 * time.Second
	}
	validatorInst := deps.Validator
	if validatorInst == nil {
		validatorInst = roles.NewValidator(nil)
	}
	tracker := deps.Tracker
	if tracker == nil {
		tracker = roles.NewTracker()
	}

	return &Orchestrator{
		catalog:   deps.Catalog,
		validator: validatorInst,
		tracker:   tracker,
		engine:    deps.Engine,
		lock:      deps.Lock,
		sinks:     deps.Sinks,
		logger:    logger,
		settings:  settings,
		structure: validator.New(),
		now:       time.Now,
	}
}

// Running reports whether a cycle is in flight in this process.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// LastReport returns the report of the most recent finished cycle.
func (o *Orchestrator) LastReport() (domain.CycleReport, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.last == nil {
		return domain.CycleReport{}, false
	}
	return *o.last, true
}

// RunCycle executes one cycle and blocks until it ends. It returns false
// without touching any source when another cycle is already running.
func (o *Orchestrator) RunCycle(ctx context.Context, trigger string) (domain.CycleReport, bool) {
	if !o.begin(trigger) {
		return domain.CycleReport{}, false
	}
	defer o.running.Store(false)

	return o.execute(ctx, trigger)
}

// Start launches a cycle in the background and reports whether it was started.
func (o *Orchestrator) Start(ctx context.Context, trigger string) bool {
	if !o.begin(trigger) {
		return false
	}

	go func() {
		defer o.running.Store(false)
		o.execute(context.WithoutCancel(ctx), trigger)
	}()
	return true
}

func (o *Orchestrator) begin(trigger string) bool {
	if o.running.CompareAndSwap(false, true) {
		return true
	}
	o.logger.Info("cycle already running, trigger ignored", "trigger", trigger)
	return false
}

func (o *Orchestrator) execute(ctx context.Context, trigger string) (domain.CycleReport, bool) {
	if o.lock != nil {
		release, ok, err := o.lock.TryAcquire(ctx)
		switch {
		case err != nil:
			o.logger.Warn("cycle lock unavailable, continuing with local guard", "error", err)
		case !ok:
			o.logger.Info("cycle held by another process, trigger ignored", "trigger", trigger)
			return domain.CycleReport{}, false
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					o.logger.Warn("release cycle lock", "error", err)
				}
			}()
		}
	}

	report := o.run(ctx, trigger)

	o.mu.Lock()
	o.last = &report
	o.mu.Unlock()

	o.emit(ctx, report)
	return report, true
}

func (o *Orchestrator) run(ctx context.Context, trigger string) domain.CycleReport {
	report := domain.CycleReport{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Status:    domain.CycleRunning,
		StartedAt: o.now().UTC(),
	}
	o.logger.Info("cycle started", "cycle", report.ID, "trigger", trigger)

	var adapters []ports.SourceAdapter
	if o.catalog != nil {
		var err error
		adapters, err = o.catalog.Adapters()
		if err != nil {
			o.logger.Warn("some sources could not be resolved", "cycle", report.ID, "error", err)
		}
	}

	sources := make([]domain.SourceReport, len(adapters))
	var g errgroup.Group
	g.SetLimit(o.settings.Concurrency)
	for i, adapter := range adapters {
		g.Go(func() error {
			sources[i] = o.runSource(ctx, adapter)
			return nil
		})
	}
	_ = g.Wait()

	report.Sources = sources
	for _, src := range sources {
		report.Totals.Add(src.Result)
		report.Rejected += src.Rejected
		if src.Status != domain.SourceSuccess {
			report.Failures++
		}
	}
	report.Status = cycleStatus(report)
	report.EndedAt = o.now().UTC()
	return report
}

func cycleStatus(report domain.CycleReport) domain.CycleStatus {
	attempted := report.Totals.Attempted()
	switch {
	case attempted > 0 && report.Totals.Failed == attempted:
		return domain.CycleFailed
	case report.Failures > 0 || report.Totals.Failed > 0:
		return domain.CyclePartialFailure
	default:
		return domain.CycleCompleted
	}
}

func (o *Orchestrator) runSource(ctx context.Context, adapter ports.SourceAdapter) domain.SourceReport {
	started := time.Now()
	rep := domain.SourceReport{Source: adapter.Name(), Company: adapter.Company()}
	requested := o.rolesFor(adapter)

	raw, err := o.fetch(ctx, adapter, requested)
	if err != nil {
		rep.Duration = time.Since(started)
		rep.Status = domain.SourceFailure
		rep.Error = err.Error()

		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			rep.Reason = fetchErr.Reason
			if fetchErr.Reason == domain.ReasonTimeout {
				rep.Status = domain.SourceTimeout
			}
		}
		o.logger.Warn("source failed", "source", rep.Source, "reason", rep.Reason, "error", err)
		return rep
	}

	batch, malformed, rejected := o.normalize(adapter, raw, requested)
	rep.Fetched = len(raw)
	rep.Malformed = malformed
	rep.Rejected = rejected
	rep.Status = domain.SourceSuccess

	if o.engine != nil {
		result, err := o.engine.Apply(ctx, batch)
		rep.Result = result
		if err != nil {
			o.logger.Error("persist source failed", "source", rep.Source, "error", err)
		}
	}

	rep.Duration = time.Since(started)
	o.logger.Debug("source done",
		"source", rep.Source,
		"fetched", rep.Fetched,
		"malformed", malformed,
		"rejected", rejected,
		"inserted", rep.Result.Inserted,
		"updated", rep.Result.Updated,
	)
	return rep
}

func (o *Orchestrator) rolesFor(adapter ports.SourceAdapter) []string {
	if scoped, ok := adapter.(ports.RoleScoped); ok {
		if own := scoped.Roles(); len(own) > 0 {
			return own
		}
	}
	return o.settings.Roles
}

type fetchOutcome struct {
	postings []domain.RawPosting
	err      error
}

// fetch bounds one adapter call by the adapter timeout. An adapter that
// ignores its context is abandoned and its late result dropped.
func (o *Orchestrator) fetch(ctx context.Context, adapter ports.SourceAdapter, requested []string) ([]domain.RawPosting, error) {
	fctx, cancel := context.WithTimeout(ctx, o.settings.AdapterTimeout)
	defer cancel()

	done := make(chan fetchOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchOutcome{err: domain.NewParseError(adapter.Name(), fmt.Errorf("adapter panic: %v", r))}
			}
		}()
		postings, err := adapter.Fetch(fctx, requested, o.settings.Lookback)
		done <- fetchOutcome{postings: postings, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, classify(adapter.Name(), out.err)
		}
		return out.postings, nil
	case <-fctx.Done():
		return nil, &domain.FetchError{Source: adapter.Name(), Reason: domain.ReasonTimeout, Cause: fctx.Err()}
	}
}

func classify(source string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.FetchError{Source: source, Reason: domain.ReasonTimeout, Cause: err}
	}

	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.Source == "" {
			fetchErr.Source = source
		}
		return fetchErr
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.NewHTTPError(source, err)
	}
	return domain.NewParseError(source, err)
}

// normalize is the boundary check and role filter every adapter output passes through.
func (o *Orchestrator) normalize(adapter ports.SourceAdapter, raw []domain.RawPosting, requested []string) ([]domain.JobPosting, int, int) {
	var (
		batch     = make([]domain.JobPosting, 0, len(raw))
		seen      = map[string]struct{}{}
		malformed int
		rejected  int
		company   = adapter.Company()
		mode      = adapter.IdentityMode()
	)

	for _, posting := range raw {
		posting.Title = strings.TrimSpace(posting.Title)
		if err := o.structure.Struct(posting); err != nil {
			malformed++
			continue
		}
		link, err := domain.SanitizeURL(posting.URL)
		if err != nil {
			malformed++
			continue
		}

		matched, ok := o.validator.Validate(posting.Title, requested)
		if !ok {
			rejected++
			o.tracker.Track(company, posting.Title)
			continue
		}

		job := domain.JobPosting{
			SourceCompany:  company,
			Title:          posting.Title,
			MatchedRole:    matched,
			Location:       strings.TrimSpace(posting.Location),
			EmploymentType: domain.NormalizeEmploymentType(posting.EmploymentType),
			URL:            link,
		}
		if posting.PostedAt != nil {
			job.PostedAt = posting.PostedAt.UTC()
		}
		job.IdentityKey = domain.IdentityKey(company, link, job.Title, job.Location, mode)

		if _, dup := seen[job.IdentityKey]; dup {
			continue
		}
		seen[job.IdentityKey] = struct{}{}
		batch = append(batch, job)
	}
	return batch, malformed, rejected
}

func (o *Orchestrator) emit(ctx context.Context, report domain.CycleReport) {
	attrs := []any{
		"cycle", report.ID,
		"trigger", report.Trigger,
		"status", report.Status,
		"started_at", report.StartedAt,
		"ended_at", report.EndedAt,
		"sources", len(report.Sources),
		"failures", report.Failures,
		"inserted", report.Totals.Inserted,
		"updated", report.Totals.Updated,
		"unchanged", report.Totals.Unchanged,
		"failed_writes", report.Totals.Failed,
		"rejected", report.Rejected,
	}
	for _, src := range report.FailedSources() {
		o.logger.Warn("cycle source failure", "cycle", report.ID, "source", src.Source, "status", src.Status, "reason", src.Reason)
	}
	o.logger.Info("cycle finished", attrs...)

	for _, sink := range o.sinks {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
		if err := sink.Emit(sctx, report); err != nil {
			o.logger.Warn("emit cycle report", "cycle", report.ID, "error", err)
		}
		cancel()
	}
}
