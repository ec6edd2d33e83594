package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"JobScanner/internal/domain"
	"JobScanner/internal/scanner"
)

func TestGreenhouseScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/boards/acme/jobs" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"jobs":[
		  {"id":11,"title":" Machine Learning Engineer ","absolute_url":"https://boards.greenhouse.io/acme/jobs/11","location":{"name":"New York, NY"},"updated_at":"2025-03-02T10:00:00-05:00"},
		  {"id":12,"title":"Data Analyst","absolute_url":"https://boards.greenhouse.io/acme/jobs/12","location":{"name":"Remote"},"first_published":"2024-12-01T10:00:00Z","updated_at":"2025-03-02T10:00:00Z"}
		]}`))
	}))
	defer server.Close()

	sc := NewGreenhouseScanner(server.Client())
	postings, err := sc.Scan(context.Background(), scanner.Request{
		SiteName: "acme",
		BaseURL:  server.URL,
		Since:    time.Date(2025, time.February, 24, 0, 0, 0, 0, time.UTC),
		Options:  map[string]string{"board": "acme"},
	})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(postings) != 1 {
		t.Fatalf("expected 1 posting inside the lookback, got %d", len(postings))
	}
	got := postings[0]
	if got.ExternalID != "11" || got.Title != "Machine Learning Engineer" || got.Location != "New York, NY" {
		t.Fatalf("unexpected posting: %+v", got)
	}
	if got.PostedAt == nil || !got.PostedAt.Equal(time.Date(2025, time.March, 2, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected posted date: %v", got.PostedAt)
	}
}

func TestGreenhouseScannerMissingJobs(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{}}`))
	}))
	defer server.Close()

	_, err := NewGreenhouseScanner(server.Client()).Scan(context.Background(), scanner.Request{
		SiteName: "acme",
		BaseURL:  server.URL,
		Options:  map[string]string{"board": "acme"},
	})

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Reason != domain.ReasonParseError {
		t.Fatalf("expected parse_error, got %v", err)
	}
}
