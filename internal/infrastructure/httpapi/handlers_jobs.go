package httpapi

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"JobScanner/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ListJobsResponse is one page of postings with navigation links.
type ListJobsResponse struct {
	Jobs     []domain.JobPosting `json:"jobs"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Next     *string             `json:"next"`
	Prev     *string             `json:"prev"`
}

// parseQueryInt reads a positive integer parameter, clamped to maxValue when maxValue > 0.
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return defaultValue
	}
	if maxValue > 0 && v > maxValue {
		return maxValue
	}
	return v
}

// parseTime accepts RFC3339 or a bare date. A bare date with endOfDay set
// covers the whole day.
func parseTime(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		if endOfDay {
			return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q, expected RFC3339 or YYYY-MM-DD", raw)
}

func (s *Server) parseJobQuery(r *http.Request) (domain.JobQuery, int, int, error) {
	values := r.URL.Query()
	page := parseQueryInt(r, "page", 1, 0)
	pageSize := parseQueryInt(r, "page_size", defaultPageSize, maxPageSize)
	if page > math.MaxInt32/pageSize {
		return domain.JobQuery{}, 0, 0, errors.New("page is out of range")
	}

	q := domain.JobQuery{
		Roles:          nonEmpty(values["role"]),
		Companies:      nonEmpty(values["company"]),
		Location:       strings.TrimSpace(values.Get("location")),
		EmploymentType: domain.NormalizeEmploymentType(values.Get("employment_type")),
		Search:         strings.TrimSpace(values.Get("search")),
		Limit:          pageSize,
		Offset:         (page - 1) * pageSize,
	}
	if raw := values.Get("employment_type"); raw != "" && q.EmploymentType == "" {
		return q, 0, 0, fmt.Errorf("unknown employment_type %q", raw)
	}

	if raw := values.Get("since"); raw != "" {
		t, err := parseTime(raw, false)
		if err != nil {
			return q, 0, 0, err
		}
		q.Since = t
	}
	if raw := values.Get("until"); raw != "" {
		t, err := parseTime(raw, true)
		if err != nil {
			return q, 0, 0, err
		}
		q.Until = t
	}
	if raw := values.Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 {
			return q, 0, 0, errors.New("days must be a positive integer")
		}
		since := s.now().UTC().AddDate(0, 0, -days)
		if since.After(q.Since) {
			q.Since = since
		}
	}
	if !q.Since.IsZero() && !q.Until.IsZero() && q.Until.Before(q.Since) {
		return q, 0, 0, errors.New("until is before since")
	}
	return q, page, pageSize, nil
}

// handleListJobs lists postings newest first with filters and pagination.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q, page, pageSize, err := s.parseJobQuery(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.store.QueryByTimeRange(r.Context(), q)
	if err != nil {
		s.logger.Error("query jobs", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "query failed")
		return
	}

	jobs := result.Jobs
	if jobs == nil {
		jobs = []domain.JobPosting{}
	}
	resp := ListJobsResponse{
		Jobs:     jobs,
		Total:    result.Total,
		Page:     page,
		PageSize: pageSize,
	}
	if page*pageSize < result.Total {
		resp.Next = pageLink(r.URL, page+1)
	}
	if page > 1 {
		resp.Prev = pageLink(r.URL, page-1)
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	posting, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrNotFound) {
		s.errorResponse(w, http.StatusNotFound, "job posting not found")
		return
	}
	if err != nil {
		s.logger.Error("get job", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	s.jsonResponse(w, http.StatusOK, posting)
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.store.Companies(r.Context())
	if err != nil {
		s.logger.Error("list companies", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "query failed")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string][]string{"companies": orEmpty(companies)})
}

func pageLink(u *url.URL, page int) *string {
	next := *u
	q := next.Query()
	q.Set("page", strconv.Itoa(page))
	next.RawQuery = q.Encode()
	link := next.RequestURI()
	return &link
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
