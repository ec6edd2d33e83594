package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// RawPosting is what a source adapter hands back before role validation.
// Only Title and URL are guaranteed; the rest is best effort.
type RawPosting struct {
	ExternalID     string
	Title          string `validate:"required"`
	URL            string `validate:"required,url"`
	Location       string
	EmploymentType string
	PostedAt       *time.Time
	// SearchRole is the requested role the adapter searched with, if any.
	SearchRole string
}

// IdentityMode selects which fields make up the dedup key of a source.
type IdentityMode string

const (
	IdentityByURL           IdentityMode = "url"
	IdentityByTitleLocation IdentityMode = "title_location"
)

// JobPosting is the canonical, persisted record.
type JobPosting struct {
	IdentityKey    string    `json:"id" bson:"identity_key"`
	SourceCompany  string    `json:"company" bson:"source_company"`
	Title          string    `json:"title" bson:"title"`
	MatchedRole    string    `json:"matched_role" bson:"matched_role"`
	Location       string    `json:"location,omitempty" bson:"location"`
	EmploymentType string    `json:"employment_type,omitempty" bson:"employment_type"`
	URL            string    `json:"url" bson:"url"`
	PostedAt       time.Time `json:"posted_at" bson:"posted_at"`
	FirstSeenAt    time.Time `json:"first_seen_at" bson:"first_seen_at"`
	LastSeenAt     time.Time `json:"last_seen_at" bson:"last_seen_at"`
}

// SameDisplay reports whether the user-visible fields match.
func (j JobPosting) SameDisplay(other JobPosting) bool {
	return j.Title == other.Title &&
		j.Location == other.Location &&
		j.EmploymentType == other.EmploymentType
}

// IdentityKey derives the stable dedup key for a posting.
func IdentityKey(company, rawURL, title, location string, mode IdentityMode) string {
	company = strings.ToLower(strings.TrimSpace(company))

	var parts []string
	switch mode {
	case IdentityByTitleLocation:
		parts = []string{company, foldSpace(title), foldSpace(location)}
	default:
		u := rawURL
		if clean, err := SanitizeURL(rawURL); err == nil {
			u = clean
		}
		parts = []string{company, u}
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// SanitizeURL trims, validates and canonicalizes an absolute http(s) link.
func SanitizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.User = nil
	return u.String(), nil
}

func foldSpace(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
