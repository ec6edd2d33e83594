package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"JobScanner/internal/domain"
	"JobScanner/internal/scanner"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io"

// GreenhouseScanner reads the public job board API of a Greenhouse tenant.
type GreenhouseScanner struct {
	client *http.Client
}

// NewGreenhouseScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewGreenhouseScanner(client *http.Client) *GreenhouseScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &GreenhouseScanner{client: client}
}

func (g *GreenhouseScanner) Name() string {
	return "greenhouse"
}

type greenhouseJob struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	AbsoluteURL    string `json:"absolute_url"`
	UpdatedAt      string `json:"updated_at"`
	FirstPublished string `json:"first_published"`
	Location       struct {
		Name string `json:"name"`
	} `json:"location"`
}

type greenhouseResponse struct {
	Jobs *[]greenhouseJob `json:"jobs"`
}

// Scan downloads the whole board once; role filtering happens downstream.
func (g *GreenhouseScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawPosting, error) {
	board := req.Options["board"]
	if board == "" {
		return nil, domain.NewParseError(req.SiteName, errors.New("site option board is required"))
	}

	base := strings.TrimSuffix(req.BaseURL, "/")
	if base == "" {
		base = greenhouseBaseURL
	}
	endpoint := fmt.Sprintf("%s/v1/boards/%s/jobs", base, board)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewHTTPError(req.SiteName, fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, domain.NewHTTPError(req.SiteName, fmt.Errorf("list jobs: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewHTTPError(req.SiteName, fmt.Errorf("greenhouse returned %s", resp.Status))
	}

	var decoded greenhouseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, domain.NewParseError(req.SiteName, fmt.Errorf("decode jobs: %w", err))
	}
	if decoded.Jobs == nil {
		return nil, domain.NewParseError(req.SiteName, errors.New("response has no jobs"))
	}

	postings := make([]domain.RawPosting, 0, len(*decoded.Jobs))
	for _, job := range *decoded.Jobs {
		posting := domain.RawPosting{
			ExternalID: strconv.FormatInt(job.ID, 10),
			Title:      strings.TrimSpace(job.Title),
			URL:        strings.TrimSpace(job.AbsoluteURL),
			Location:   strings.TrimSpace(job.Location.Name),
		}

		published := job.FirstPublished
		if published == "" {
			published = job.UpdatedAt
		}
		if t, ok := parseDate(published); ok {
			if !req.Since.IsZero() && t.Before(req.Since) {
				continue
			}
			posting.PostedAt = &t
		}
		postings = append(postings, posting)
	}
	return postings, nil
}
