package roles

import (
	"strings"
	"unicode"
)

// DefaultKeywords is the curated vocabulary a title must touch before the
// token-overlap path accepts it. Seniority modifiers (senior, lead, staff) are not keywords.
var DefaultKeywords = []string{
	// data science and analytics
	"data scientist", "data science", "machine learning", "ml", "ai", "artificial intelligence",
	"data analyst", "analytics", "statistical", "statistician", "data mining", "business intelligence", "bi",
	// engineering and development
	"software engineer", "developer", "engineer", "engineering", "programmer",
	"frontend", "backend", "full stack", "fullstack",
	// machine learning research
	"machine learning engineer", "ml engineer", "ai engineer", "ai researcher", "mlops",
	"neural network", "deep learning", "computer vision", "nlp", "natural language",
	"generative ai", "reinforcement learning",
	// platform and infrastructure
	"data engineer", "devops", "sre", "site reliability", "cloud", "architect",
	"database", "sql", "python", "security", "infrastructure",
	// generic role nouns
	"analyst", "scientist", "researcher", "consultant", "specialist", "administrator", "designer",
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "with": {}, "by": {}, "of": {},
}

// Validator decides whether a scraped title belongs to one of the requested roles.
type Validator struct {
	keywords []string
}

// NewValidator normalizes the keyword list once; an empty list falls back to DefaultKeywords.
func NewValidator(keywords []string) *Validator {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	normalized := make([]string, 0, len(keywords))
	seen := map[string]struct{}{}
	for _, kw := range keywords {
		n := Normalize(kw)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		normalized = append(normalized, n)
	}
	return &Validator{keywords: normalized}
}

// Validate returns the requested role the title matches, or false when it is rejected.
// The returned role is always one of requested, as given.
func (v *Validator) Validate(title string, requested []string) (string, bool) {
	normTitle := Normalize(title)
	if normTitle == "" || len(requested) == 0 {
		return "", false
	}
	padded := " " + normTitle + " "

	// Direct containment, longest role wins.
	best, bestLen := "", 0
	for _, role := range requested {
		normRole := Normalize(role)
		if normRole == "" {
			continue
		}
		if strings.Contains(padded, " "+normRole+" ") && len(normRole) > bestLen {
			best, bestLen = strings.TrimSpace(role), len(normRole)
		}
	}
	if best != "" {
		return best, true
	}

	if !v.hasKeyword(padded) {
		return "", false
	}

	// Keyword overlap: most shared tokens, then the longer role.
	titleTokens := tokenSet(normTitle)
	bestShared := 0
	for _, role := range requested {
		normRole := Normalize(role)
		shared := 0
		for tok := range tokenSet(normRole) {
			if _, ok := titleTokens[tok]; ok {
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		if shared > bestShared || (shared == bestShared && len(normRole) > bestLen) {
			best, bestShared, bestLen = strings.TrimSpace(role), shared, len(normRole)
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// Keywords exposes the normalized keyword list.
func (v *Validator) Keywords() []string {
	out := make([]string, len(v.keywords))
	copy(out, v.keywords)
	return out
}

func (v *Validator) hasKeyword(padded string) bool {
	for _, kw := range v.keywords {
		if strings.Contains(padded, " "+kw+" ") {
			return true
		}
	}
	return false
}

// Normalize lowercases, turns punctuation into spaces, drops bare numbers and
// collapses whitespace. Alphanumeric codes such as "o9" survive.
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)

	fields := strings.Fields(mapped)
	kept := fields[:0]
	for _, f := range fields {
		if isDigits(f) {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func tokenSet(normalized string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, tok := range strings.Fields(normalized) {
		if _, stop := stopWords[tok]; stop {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
