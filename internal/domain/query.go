package domain

import "time"

// JobQuery filters a time-range read over posted_at. Zero values disable a filter.
type JobQuery struct {
	Since          time.Time
	Until          time.Time
	Roles          []string
	Companies      []string
	Location       string
	EmploymentType string
	Search         string
	Limit          int
	Offset         int
}

// JobPage is one page of a query plus the unpaginated total.
type JobPage struct {
	Jobs  []JobPosting
	Total int
}

// DeletePredicate selects records for removal. At least one field must be set.
type DeletePredicate struct {
	LastSeenBefore time.Time
	Company        string
}

// Empty reports whether the predicate would match every record.
func (p DeletePredicate) Empty() bool {
	return p.LastSeenBefore.IsZero() && p.Company == ""
}
