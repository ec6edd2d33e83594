package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"JobScanner/internal/domain"
	"JobScanner/internal/scanner"
)

const (
	workdayPageSize      = 20
	workdayMaxPages      = 5
	workdayDetailWorkers = 5
	userAgent            = "Mozilla/5.0 (compatible; JobScanner/1.0)"
)

var (
	postedDaysExpr = regexp.MustCompile(`(?i)posted\s+(\d+)\+?\s+days?\s+ago`)
	dateLayouts    = []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02", "01/02/2006"}
)

// WorkdayScanner talks to the CXS JSON API that backs every Workday career site.
type WorkdayScanner struct {
	client        *http.Client
	pageSize      int
	maxPages      int
	detailWorkers int
	logger        *slog.Logger
	now           func() time.Time
}

// NewWorkdayScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewWorkdayScanner(client *http.Client) *WorkdayScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &WorkdayScanner{
		client:        client,
		pageSize:      workdayPageSize,
		maxPages:      workdayMaxPages,
		detailWorkers: workdayDetailWorkers,
		logger:        slog.Default(),
		now:           time.Now,
	}
}

// WithLogger sets the logger used for role searches that fail while others succeed.
func (w *WorkdayScanner) WithLogger(logger *slog.Logger) *WorkdayScanner {
	if logger != nil {
		w.logger = logger
	}
	return w
}

// Name identifies the strategy inside the registry.
func (w *WorkdayScanner) Name() string {
	return "workday"
}

type workdaySearch struct {
	AppliedFacets map[string][]string `json:"appliedFacets"`
	Limit         int                 `json:"limit"`
	Offset        int                 `json:"offset"`
	SearchText    string              `json:"searchText"`
}

type workdayListing struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	LocationsText string   `json:"locationsText"`
	PostedOn      string   `json:"postedOn"`
	BulletFields  []string `json:"bulletFields"`
}

type workdayResponse struct {
	Total       int               `json:"total"`
	JobPostings *[]workdayListing `json:"jobPostings"`
}

type workdayTarget struct {
	host   string
	tenant string
	site   string
}

func (t workdayTarget) searchURL() string {
	return fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", t.host, t.tenant, t.site)
}

func (t workdayTarget) referer() string {
	return fmt.Sprintf("%s/%s", t.host, t.site)
}

func (t workdayTarget) jobURL(externalPath string) string {
	if strings.Contains(t.host, "myworkdaysite.com") {
		return fmt.Sprintf("%s/recruiting/%s/%s%s", t.host, t.tenant, t.site, externalPath)
	}
	return fmt.Sprintf("%s/en-US/%s%s", t.host, t.site, externalPath)
}

// Scan searches every requested role, collects unique listings and enriches them from detail pages.
func (w *WorkdayScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawPosting, error) {
	target := workdayTarget{
		host:   strings.TrimSuffix(req.BaseURL, "/"),
		tenant: req.Options["tenant"],
		site:   req.Options["site"],
	}
	if target.tenant == "" || target.site == "" {
		return nil, domain.NewParseError(req.SiteName, fmt.Errorf("site options tenant and site are required"))
	}
	if len(req.Roles) == 0 {
		return nil, nil
	}

	var (
		postings []domain.RawPosting
		seen     = map[string]struct{}{}
		failures []error
		failed   []string
	)

	for _, role := range req.Roles {
		listings, err := w.search(ctx, req, target, role)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures = append(failures, err)
			failed = append(failed, role)
			continue
		}

		for _, l := range listings {
			if _, ok := seen[l.ExternalPath]; ok {
				continue
			}
			seen[l.ExternalPath] = struct{}{}
			postings = append(postings, w.fromListing(target, l, role))
		}
	}

	if len(failures) == len(req.Roles) {
		return nil, failures[0]
	}
	for i, err := range failures {
		w.logger.Warn("role search failed, site results are incomplete",
			"site", req.SiteName, "role", failed[i], "searched", len(req.Roles), "failed", len(failures), "error", err)
	}

	if err := w.enrich(ctx, postings); err != nil {
		return nil, err
	}

	fresh := postings[:0]
	for _, p := range postings {
		if p.PostedAt != nil && !req.Since.IsZero() && p.PostedAt.Before(req.Since) {
			continue
		}
		fresh = append(fresh, p)
	}
	return fresh, nil
}

func (w *WorkdayScanner) search(ctx context.Context, req scanner.Request, target workdayTarget, role string) ([]workdayListing, error) {
	facets := req.Facets
	if facets == nil {
		facets = map[string][]string{}
	}

	var collected []workdayListing
	for page := 0; page < w.maxPages; page++ {
		offset := page * w.pageSize
		body, err := json.Marshal(workdaySearch{
			AppliedFacets: facets,
			Limit:         w.pageSize,
			Offset:        offset,
			SearchText:    role,
		})
		if err != nil {
			return nil, domain.NewParseError(req.SiteName, fmt.Errorf("encode search: %w", err))
		}

		resp, err := w.fetchPage(ctx, req.SiteName, target, body)
		if err != nil {
			return nil, err
		}

		for _, l := range *resp.JobPostings {
			if strings.TrimSpace(l.Title) == "" || l.ExternalPath == "" {
				continue
			}
			collected = append(collected, l)
		}

		if len(*resp.JobPostings) < w.pageSize || offset+w.pageSize >= resp.Total {
			break
		}
	}
	return collected, nil
}

func (w *WorkdayScanner) fetchPage(ctx context.Context, source string, target workdayTarget, body []byte) (workdayResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target.searchURL(), bytes.NewReader(body))
	if err != nil {
		return workdayResponse{}, domain.NewHTTPError(source, fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Referer", target.referer())

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return workdayResponse{}, domain.NewHTTPError(source, fmt.Errorf("search jobs: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return workdayResponse{}, domain.NewHTTPError(source, fmt.Errorf("workday returned %s", resp.Status))
	}

	var decoded workdayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return workdayResponse{}, domain.NewParseError(source, fmt.Errorf("decode search: %w", err))
	}
	if decoded.JobPostings == nil {
		return workdayResponse{}, domain.NewParseError(source, errors.New("response has no jobPostings"))
	}
	return decoded, nil
}

func (w *WorkdayScanner) fromListing(target workdayTarget, l workdayListing, role string) domain.RawPosting {
	posting := domain.RawPosting{
		ExternalID: externalID(l),
		Title:      strings.TrimSpace(l.Title),
		URL:        target.jobURL(l.ExternalPath),
		Location:   strings.TrimSpace(l.LocationsText),
		SearchRole: role,
	}
	if posted, ok := parsePostedOn(l.PostedOn, w.now()); ok {
		posting.PostedAt = &posted
	}
	return posting
}

// enrich fills date, employment type and location from the detail pages.
// A failing detail page keeps the listing data.
func (w *WorkdayScanner) enrich(ctx context.Context, postings []domain.RawPosting) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.detailWorkers)

	for i := range postings {
		g.Go(func() error {
			detail, err := w.fetchDetail(gctx, postings[i].URL)
			if err != nil {
				return nil
			}
			detail.apply(&postings[i])
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

func (w *WorkdayScanner) fetchDetail(ctx context.Context, pageURL string) (jobDetail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return jobDetail{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return jobDetail{}, fmt.Errorf("request detail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return jobDetail{}, fmt.Errorf("detail returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return jobDetail{}, fmt.Errorf("parse detail: %w", err)
	}
	return parseDetail(doc), nil
}

type jobDetail struct {
	title          string
	location       string
	employmentType string
	postedAt       *time.Time
}

func (d jobDetail) apply(p *domain.RawPosting) {
	if d.title != "" && p.Title == "" {
		p.Title = d.title
	}
	if d.location != "" {
		p.Location = d.location
	}
	if d.employmentType != "" {
		p.EmploymentType = d.employmentType
	}
	if d.postedAt != nil {
		p.PostedAt = d.postedAt
	}
}

type jobPostingLD struct {
	Type           string          `json:"@type"`
	Title          string          `json:"title"`
	DatePosted     string          `json:"datePosted"`
	EmploymentType json.RawMessage `json:"employmentType"`
	JobLocation    json.RawMessage `json:"jobLocation"`
}

type placeLD struct {
	Address struct {
		AddressLocality string `json:"addressLocality"`
		AddressRegion   string `json:"addressRegion"`
	} `json:"address"`
}

// parseDetail reads the JSON-LD JobPosting block, then falls back to meta tags.
func parseDetail(doc *goquery.Document) jobDetail {
	var detail jobDetail

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var ld jobPostingLD
		if err := json.Unmarshal([]byte(s.Text()), &ld); err != nil {
			return true
		}
		if ld.Type != "JobPosting" && ld.DatePosted == "" {
			return true
		}

		detail.title = strings.TrimSpace(ld.Title)
		detail.employmentType = firstString(ld.EmploymentType)
		detail.location = locality(ld.JobLocation)
		if t, ok := parseDate(ld.DatePosted); ok {
			detail.postedAt = &t
		}
		return false
	})

	if detail.postedAt == nil {
		if v, ok := doc.Find(`meta[property="og:article:published_time"]`).Attr("content"); ok {
			if t, ok := parseDate(v); ok {
				detail.postedAt = &t
			}
		}
	}
	if detail.employmentType == "" {
		if v, ok := doc.Find(`meta[name="employmentType"]`).Attr("content"); ok {
			detail.employmentType = strings.TrimSpace(v)
		}
	}

	return detail
}

// firstString accepts either "FULL_TIME" or ["FULL_TIME", ...].
func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return strings.TrimSpace(many[0])
	}
	return ""
}

func locality(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var places []placeLD
	var one placeLD
	if err := json.Unmarshal(raw, &one); err == nil {
		places = []placeLD{one}
	} else if err := json.Unmarshal(raw, &places); err != nil {
		return ""
	}

	for _, p := range places {
		city := strings.TrimSpace(p.Address.AddressLocality)
		region := strings.TrimSpace(p.Address.AddressRegion)
		switch {
		case city != "" && region != "":
			return city + ", " + region
		case city != "":
			return city
		}
	}
	return ""
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parsePostedOn understands the relative labels of the listing ("Posted Today", "Posted 3 Days Ago").
func parsePostedOn(label string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(strings.TrimSpace(label))
	day := 24 * time.Hour
	switch {
	case lower == "":
		return time.Time{}, false
	case strings.Contains(lower, "today"):
		return now.UTC(), true
	case strings.Contains(lower, "yesterday"):
		return now.UTC().Add(-day), true
	}

	m := postedDaysExpr.FindStringSubmatch(lower)
	if m == nil {
		return time.Time{}, false
	}
	days, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	return now.UTC().Add(-time.Duration(days) * day), true
}

// externalID prefers the requisition bullet, then the suffix after the last underscore of the path.
func externalID(l workdayListing) string {
	if len(l.BulletFields) > 0 && strings.TrimSpace(l.BulletFields[0]) != "" {
		return strings.TrimSpace(l.BulletFields[0])
	}
	path := l.ExternalPath
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	}
	if i := strings.LastIndex(path, "_"); i >= 0 && i < len(path)-1 {
		return path[i+1:]
	}
	return path
}
