package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"JobScanner/internal/domain"
	"JobScanner/internal/logging"
	"JobScanner/internal/scanner"
)

const detailWithLD = `<html><head>
<script type="application/ld+json">
{"@context":"http://schema.org","@type":"JobPosting","title":"Senior Data Scientist",
 "datePosted":"2025-03-01","employmentType":"FULL_TIME",
 "jobLocation":{"@type":"Place","address":{"addressLocality":"Santa Clara","addressRegion":"CA"}}}
</script></head><body></body></html>`

const detailStale = `<html><head>
<script type="application/ld+json">{"@type":"JobPosting","datePosted":"2024-01-01"}</script>
</head></html>`

func workdayServer(t *testing.T, searches *[]workdaySearch, mu *sync.Mutex) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/wday/cxs/acme/careers/jobs":
			if r.Header.Get("Referer") == "" || r.Header.Get("Content-Type") != "application/json" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			var body workdaySearch
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			mu.Lock()
			*searches = append(*searches, body)
			mu.Unlock()

			_, _ = w.Write([]byte(`{"total":3,"jobPostings":[
			  {"title":"Senior Data Scientist","externalPath":"/job/Santa-Clara/Senior-Data-Scientist_JR100","locationsText":"US, CA","postedOn":"Posted 2 Days Ago"},
			  {"title":"Data Analyst","externalPath":"/job/Remote/Data-Analyst_JR200","locationsText":"Remote","postedOn":"Posted Today"},
			  {"title":"Data Scientist II","externalPath":"/job/Austin/Data-Scientist-II_JR300","postedOn":"Posted 30+ Days Ago"}
			]}`))
		case strings.HasSuffix(r.URL.Path, "_JR100"):
			_, _ = w.Write([]byte(detailWithLD))
		case strings.HasSuffix(r.URL.Path, "_JR300"):
			_, _ = w.Write([]byte(detailStale))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestWorkdayScannerScan(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		searches []workdaySearch
	)
	server := workdayServer(t, &searches, &mu)
	defer server.Close()

	now := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)
	sc := NewWorkdayScanner(server.Client())
	sc.now = func() time.Time { return now }

	req := scanner.Request{
		SiteName: "acme",
		BaseURL:  server.URL,
		Roles:    []string{"Data Scientist", "Data Analyst"},
		Since:    now.AddDate(0, 0, -7),
		Options:  map[string]string{"tenant": "acme", "site": "careers"},
		Facets:   map[string][]string{"locationCountry": {"us"}},
	}

	postings, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(searches) != 2 {
		t.Fatalf("expected one search per role, got %d", len(searches))
	}
	if searches[0].SearchText != "Data Scientist" || searches[0].Limit != workdayPageSize {
		t.Fatalf("unexpected search body: %+v", searches[0])
	}
	if got := searches[1].AppliedFacets["locationCountry"]; len(got) != 1 || got[0] != "us" {
		t.Fatalf("facets not forwarded: %v", searches[1].AppliedFacets)
	}

	if len(postings) != 2 {
		t.Fatalf("expected 2 fresh postings, got %d: %+v", len(postings), postings)
	}

	first := postings[0]
	if first.URL != server.URL+"/en-US/careers/job/Santa-Clara/Senior-Data-Scientist_JR100" {
		t.Fatalf("unexpected url: %s", first.URL)
	}
	if first.ExternalID != "JR100" {
		t.Fatalf("unexpected external id: %s", first.ExternalID)
	}
	if first.Location != "Santa Clara, CA" || first.EmploymentType != "FULL_TIME" {
		t.Fatalf("detail not applied: %+v", first)
	}
	if first.PostedAt == nil || !first.PostedAt.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected posted date: %v", first.PostedAt)
	}
	if first.SearchRole != "Data Scientist" {
		t.Fatalf("unexpected search role: %s", first.SearchRole)
	}

	second := postings[1]
	if second.Title != "Data Analyst" || second.Location != "Remote" {
		t.Fatalf("listing data lost on detail failure: %+v", second)
	}
	if second.PostedAt == nil || !second.PostedAt.Equal(now) {
		t.Fatalf("expected posted today, got %v", second.PostedAt)
	}
}

func TestWorkdayScannerMissingPostings(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":0}`))
	}))
	defer server.Close()

	sc := NewWorkdayScanner(server.Client())
	_, err := sc.Scan(context.Background(), scanner.Request{
		SiteName: "acme",
		BaseURL:  server.URL,
		Roles:    []string{"Data Scientist"},
		Options:  map[string]string{"tenant": "acme", "site": "careers"},
	})

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Reason != domain.ReasonParseError {
		t.Fatalf("expected parse_error, got %s", fetchErr.Reason)
	}
}

func TestWorkdayScannerHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sc := NewWorkdayScanner(server.Client())
	_, err := sc.Scan(context.Background(), scanner.Request{
		SiteName: "acme",
		BaseURL:  server.URL,
		Roles:    []string{"Data Scientist"},
		Options:  map[string]string{"tenant": "acme", "site": "careers"},
	})

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Reason != domain.ReasonHTTPError {
		t.Fatalf("expected http_error, got %v", err)
	}
	if fetchErr.Source != "acme" {
		t.Fatalf("unexpected source: %s", fetchErr.Source)
	}
}

func TestWorkdayScannerLogsPartialRoleFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body workdaySearch
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.SearchText == "Data Analyst" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"total":1,"jobPostings":[
		  {"title":"Data Scientist","externalPath":"/job/Remote/Data-Scientist_JR1","postedOn":"Posted Today"}
		]}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	sc := NewWorkdayScanner(server.Client()).WithLogger(logging.NewWithWriter(&buf, "warn", "text"))

	postings, err := sc.Scan(context.Background(), scanner.Request{
		SiteName: "acme",
		BaseURL:  server.URL,
		Roles:    []string{"Data Scientist", "Data Analyst"},
		Options:  map[string]string{"tenant": "acme", "site": "careers"},
	})
	if err != nil {
		t.Fatalf("partial role failure must not fail the site: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected postings from the healthy role, got %d", len(postings))
	}

	out := buf.String()
	if !strings.Contains(out, "role search failed") || !strings.Contains(out, `role="Data Analyst"`) {
		t.Fatalf("expected a warning naming the failed role, got %q", out)
	}
	if !strings.Contains(out, "site=acme") || !strings.Contains(out, "failed=1") {
		t.Fatalf("warning lacks site context: %q", out)
	}
}

func TestWorkdayScannerRequiresOptions(t *testing.T) {
	t.Parallel()

	_, err := NewWorkdayScanner(nil).Scan(context.Background(), scanner.Request{SiteName: "acme"})
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Reason != domain.ReasonParseError {
		t.Fatalf("expected parse_error, got %v", err)
	}
}

func TestWorkdayJobURL(t *testing.T) {
	t.Parallel()

	hosted := workdayTarget{host: "https://wd3.myworkdaysite.com", tenant: "takeaway", site: "grubhubcareers"}
	if got := hosted.jobURL("/job/x_R1"); got != "https://wd3.myworkdaysite.com/recruiting/takeaway/grubhubcareers/job/x_R1" {
		t.Fatalf("unexpected myworkdaysite url: %s", got)
	}

	classic := workdayTarget{host: "https://nvidia.wd5.myworkdayjobs.com", tenant: "nvidia", site: "NVIDIAExternalCareerSite"}
	if got := classic.jobURL("/job/x_R1"); got != "https://nvidia.wd5.myworkdayjobs.com/en-US/NVIDIAExternalCareerSite/job/x_R1" {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestExternalID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		listing workdayListing
		want    string
	}{
		{workdayListing{ExternalPath: "/job/Remote/Data-Analyst_JR200"}, "JR200"},
		{workdayListing{ExternalPath: "/job/Remote/Data-Analyst_JR200", BulletFields: []string{"REQ-9"}}, "REQ-9"},
		{workdayListing{ExternalPath: "/job/no-suffix"}, "/job/no-suffix"},
	}
	for _, tc := range cases {
		if got := externalID(tc.listing); got != tc.want {
			t.Fatalf("externalID(%+v) = %s, want %s", tc.listing, got, tc.want)
		}
	}
}

func TestParsePostedOn(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"Posted Today":        now,
		"Posted Yesterday":    now.AddDate(0, 0, -1),
		"Posted 3 Days Ago":   now.AddDate(0, 0, -3),
		"Posted 30+ Days Ago": now.AddDate(0, 0, -30),
	}
	for label, want := range cases {
		got, ok := parsePostedOn(label, now)
		if !ok || !got.Equal(want) {
			t.Fatalf("parsePostedOn(%q) = %v, %v", label, got, ok)
		}
	}

	if _, ok := parsePostedOn("Recently", now); ok {
		t.Fatalf("unexpected parse of unknown label")
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"2025-03-01", "03/01/2025", "2025-03-01T00:00:00Z", "2025-03-01T00:00:00.000Z"} {
		got, ok := parseDate(value)
		if !ok || !got.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("parseDate(%q) = %v, %v", value, got, ok)
		}
	}
}
