package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"JobScanner/internal/domain"
	"JobScanner/internal/ports"
)

// MemoryStore keeps postings in a map guarded by a mutex. It backs the
// "memory" driver and the unit tests.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]domain.JobPosting
}

var _ ports.JobStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: map[string]domain.JobPosting{}}
}

// Upsert inserts or refreshes a posting under a single lock.
func (s *MemoryStore) Upsert(_ context.Context, posting domain.JobPosting, seenAt time.Time) (domain.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.jobs[posting.IdentityKey]
	if !ok {
		posting.FirstSeenAt = seenAt
		posting.LastSeenAt = seenAt
		if posting.PostedAt.IsZero() {
			posting.PostedAt = seenAt
		}
		s.jobs[posting.IdentityKey] = posting
		return domain.OutcomeInserted, nil
	}

	outcome := domain.OutcomeUnchanged
	if !existing.SameDisplay(posting) {
		existing.Title = posting.Title
		existing.Location = posting.Location
		existing.EmploymentType = posting.EmploymentType
		outcome = domain.OutcomeUpdated
	}
	if posting.MatchedRole != "" {
		existing.MatchedRole = posting.MatchedRole
	}
	if seenAt.After(existing.LastSeenAt) {
		existing.LastSeenAt = seenAt
	}
	s.jobs[posting.IdentityKey] = existing
	return outcome, nil
}

// QueryByTimeRange filters on posted_at and the optional facets, newest first.
func (s *MemoryStore) QueryByTimeRange(_ context.Context, q domain.JobQuery) (domain.JobPage, error) {
	s.mu.Lock()
	matched := make([]domain.JobPosting, 0, len(s.jobs))
	for _, job := range s.jobs {
		if matches(job, q) {
			matched = append(matched, job)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PostedAt.Equal(matched[j].PostedAt) {
			return matched[i].PostedAt.After(matched[j].PostedAt)
		}
		return matched[i].IdentityKey < matched[j].IdentityKey
	})

	page := domain.JobPage{Total: len(matched)}
	start := min(max(q.Offset, 0), len(matched))
	end := len(matched)
	if q.Limit > 0 && q.Limit < end-start {
		end = start + q.Limit
	}
	page.Jobs = matched[start:end]
	return page, nil
}

// DeleteWhere removes every posting the predicate selects.
func (s *MemoryStore) DeleteWhere(_ context.Context, p domain.DeletePredicate) (int64, error) {
	if p.Empty() {
		return 0, errEmptyPredicate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, job := range s.jobs {
		if !p.LastSeenBefore.IsZero() && !job.LastSeenAt.Before(p.LastSeenBefore) {
			continue
		}
		if p.Company != "" && job.SourceCompany != p.Company {
			continue
		}
		delete(s.jobs, key)
		deleted++
	}
	return deleted, nil
}

// Get returns a posting by identity key.
func (s *MemoryStore) Get(_ context.Context, key string) (domain.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[key]
	if !ok {
		return domain.JobPosting{}, domain.ErrNotFound
	}
	return job, nil
}

// Companies lists distinct source companies.
func (s *MemoryStore) Companies(_ context.Context) ([]string, error) {
	return s.distinct(func(j domain.JobPosting) string { return j.SourceCompany }), nil
}

// Roles lists distinct matched roles.
func (s *MemoryStore) Roles(_ context.Context) ([]string, error) {
	return s.distinct(func(j domain.JobPosting) string { return j.MatchedRole }), nil
}

// Len reports how many postings are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Put stores a posting verbatim, bypassing upsert semantics. Test seeding only.
func (s *MemoryStore) Put(job domain.JobPosting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.IdentityKey] = job
}

func (s *MemoryStore) distinct(field func(domain.JobPosting) string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]struct{}{}
	for _, job := range s.jobs {
		if v := field(job); v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func matches(job domain.JobPosting, q domain.JobQuery) bool {
	if !q.Since.IsZero() && job.PostedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && job.PostedAt.After(q.Until) {
		return false
	}
	if len(q.Roles) > 0 && !containsFold(q.Roles, job.MatchedRole) {
		return false
	}
	if len(q.Companies) > 0 && !containsFold(q.Companies, job.SourceCompany) {
		return false
	}
	if q.Location != "" && !strings.Contains(strings.ToLower(job.Location), strings.ToLower(q.Location)) {
		return false
	}
	if q.EmploymentType != "" && job.EmploymentType != q.EmploymentType {
		return false
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(job.Title), strings.ToLower(q.Search)) {
		return false
	}
	return true
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
