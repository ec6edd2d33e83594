package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"JobScanner/internal/domain"
	"JobScanner/internal/scanner"
)

// HTMLScanner extracts postings from a static career page with CSS selectors
// taken from the site options:
//
//	item      selector of one posting (required)
//	title     selector inside item, defaults to "a"
//	link      selector inside item holding href, defaults to "a"
//	location  optional selector inside item
//	date      optional selector inside item; datetime attribute wins over text
//	allowEmpty "true" accepts a page without any item
type HTMLScanner struct {
	client *http.Client
}

// NewHTMLScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewHTMLScanner(client *http.Client) *HTMLScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLScanner{client: client}
}

func (h *HTMLScanner) Name() string {
	return "html"
}

// Scan fetches the listing page and maps every item node to a posting.
func (h *HTMLScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawPosting, error) {
	itemSel := req.Options["item"]
	if itemSel == "" {
		return nil, domain.NewParseError(req.SiteName, errors.New("site option item is required"))
	}

	base, err := url.Parse(req.BaseURL)
	if err != nil {
		return nil, domain.NewParseError(req.SiteName, fmt.Errorf("invalid site url: %w", err))
	}

	doc, err := h.fetchDocument(ctx, req.SiteName, req.BaseURL)
	if err != nil {
		return nil, err
	}

	items := doc.Find(itemSel)
	if items.Length() == 0 && req.Options["allowEmpty"] != "true" {
		return nil, domain.NewParseError(req.SiteName, fmt.Errorf("selector %q matched nothing", itemSel))
	}

	postings := make([]domain.RawPosting, 0, items.Length())
	items.Each(func(_ int, item *goquery.Selection) {
		posting, ok := parseItem(item, base, req.Options)
		if !ok {
			return
		}
		if posting.PostedAt != nil && !req.Since.IsZero() && posting.PostedAt.Before(req.Since) {
			return
		}
		postings = append(postings, posting)
	})
	return postings, nil
}

func (h *HTMLScanner) fetchDocument(ctx context.Context, source, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, domain.NewHTTPError(source, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, domain.NewHTTPError(source, fmt.Errorf("request document: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewHTTPError(source, fmt.Errorf("page returned %s", resp.Status))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, domain.NewParseError(source, fmt.Errorf("parse document: %w", err))
	}
	return doc, nil
}

func parseItem(item *goquery.Selection, base *url.URL, opts map[string]string) (domain.RawPosting, bool) {
	titleSel := optionOr(opts, "title", "a")
	linkSel := optionOr(opts, "link", "a")

	title := collapse(item.Find(titleSel).First().Text())
	href, _ := item.Find(linkSel).First().Attr("href")
	if title == "" || strings.TrimSpace(href) == "" {
		return domain.RawPosting{}, false
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return domain.RawPosting{}, false
	}
	link := base.ResolveReference(ref)

	posting := domain.RawPosting{
		ExternalID: link.Path,
		Title:      title,
		URL:        link.String(),
	}
	if sel := opts["location"]; sel != "" {
		posting.Location = collapse(item.Find(sel).First().Text())
	}
	if sel := opts["date"]; sel != "" {
		node := item.Find(sel).First()
		value, ok := node.Attr("datetime")
		if !ok {
			value = node.Text()
		}
		if t, ok := parseDate(value); ok {
			posting.PostedAt = &t
		}
	}
	return posting, true
}

func optionOr(opts map[string]string, key, fallback string) string {
	if v := strings.TrimSpace(opts[key]); v != "" {
		return v
	}
	return fallback
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
