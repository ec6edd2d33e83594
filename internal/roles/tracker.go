package roles

import "sync"

// CommonRoles is the list offered to operators when picking search roles.
var CommonRoles = []string{
	"Data Scientist",
	"Data Analyst",
	"Machine Learning Engineer",
	"AI Engineer",
	"Data Engineer",
	"Research Scientist",
	"Computer Vision Engineer",
	"NLP Engineer",
	"BI Developer",
	"BI Analyst",
	"ML Ops Engineer",
	"AI Researcher",
	"Statistician",
	"Data Architect",
	"Cloud Engineer",
	"DevOps Engineer",
	"Software Engineer",
	"Backend Engineer",
	"Full Stack Developer",
	"Python Developer",
	"Deep Learning Engineer",
	"AI Product Manager",
	"Data Science Manager",
	"ML Team Lead",
}

// Tracker counts rejected titles per company so operators can tune keywords.
type Tracker struct {
	mu     sync.Mutex
	counts map[string]map[string]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{counts: map[string]map[string]int{}}
}

// Track records one rejection.
func (t *Tracker) Track(company, title string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.counts == nil {
		t.counts = map[string]map[string]int{}
	}
	byTitle, ok := t.counts[company]
	if !ok {
		byTitle = map[string]int{}
		t.counts[company] = byTitle
	}
	byTitle[title]++
}

// Snapshot copies the counters. An empty company means all companies;
// titles seen fewer than minCount times are omitted.
func (t *Tracker) Snapshot(company string, minCount int) map[string]map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := map[string]map[string]int{}
	for c, byTitle := range t.counts {
		if company != "" && c != company {
			continue
		}
		filtered := map[string]int{}
		for title, n := range byTitle {
			if n >= minCount {
				filtered[title] = n
			}
		}
		if len(filtered) > 0 {
			out[c] = filtered
		}
	}
	return out
}

// Reset drops all counters.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts = map[string]map[string]int{}
}
