package domain

import "time"

// UpsertOutcome is what the store did with a single observation.
type UpsertOutcome string

const (
	OutcomeInserted  UpsertOutcome = "inserted"
	OutcomeUpdated   UpsertOutcome = "updated"
	OutcomeUnchanged UpsertOutcome = "unchanged"
)

// BatchResult aggregates upsert outcomes for one batch.
type BatchResult struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Add folds another result into r.
func (r *BatchResult) Add(other BatchResult) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Unchanged += other.Unchanged
	r.Failed += other.Failed
}

// Attempted counts every posting the engine tried to write.
func (r BatchResult) Attempted() int {
	return r.Inserted + r.Updated + r.Unchanged + r.Failed
}

// CycleStatus is the terminal state of a scrape cycle.
type CycleStatus string

const (
	CycleIdle           CycleStatus = "idle"
	CycleRunning        CycleStatus = "running"
	CycleCompleted      CycleStatus = "completed"
	CyclePartialFailure CycleStatus = "partial_failure"
	// CycleFailed is reserved for a total store outage.
	CycleFailed CycleStatus = "failed"
)

// SourceStatus is the per-adapter outcome inside a cycle.
type SourceStatus string

const (
	SourceSuccess SourceStatus = "success"
	SourceFailure SourceStatus = "failure"
	SourceTimeout SourceStatus = "timeout"
)

// SourceReport summarizes one adapter run.
type SourceReport struct {
	Source    string        `json:"source"`
	Company   string        `json:"company"`
	Status    SourceStatus  `json:"status"`
	Reason    FetchReason   `json:"reason,omitempty"`
	Error     string        `json:"error,omitempty"`
	Fetched   int           `json:"fetched"`
	Malformed int           `json:"malformed"`
	Rejected  int           `json:"rejected"`
	Result    BatchResult   `json:"result"`
	Duration  time.Duration `json:"duration"`
}

// CycleReport is emitted once per cycle and never persisted.
type CycleReport struct {
	ID        string         `json:"id"`
	Trigger   string         `json:"trigger"`
	Status    CycleStatus    `json:"status"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at"`
	Sources   []SourceReport `json:"sources"`
	Totals    BatchResult    `json:"totals"`
	Rejected  int            `json:"rejected"`
	Failures  int            `json:"failures"`
}

// FailedSources lists the adapters that did not succeed.
func (r CycleReport) FailedSources() []SourceReport {
	var failed []SourceReport
	for _, s := range r.Sources {
		if s.Status != SourceSuccess {
			failed = append(failed, s)
		}
	}
	return failed
}
