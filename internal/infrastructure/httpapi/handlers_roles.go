package httpapi

import (
	"net/http"
	"sort"
	"strings"

	"JobScanner/internal/roles"
)

// RejectedTitle is one rejected title with its count.
type RejectedTitle struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// handleListRoles lists the distinct matched roles present in the store.
func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	matched, err := s.store.Roles(r.Context())
	if err != nil {
		s.logger.Error("list roles", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "query failed")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string][]string{"roles": orEmpty(matched)})
}

func (s *Server) handleCommonRoles(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string][]string{"roles": roles.CommonRoles})
}

// handleRejectedRoles reports rejected titles per company, most frequent first.
func (s *Server) handleRejectedRoles(w http.ResponseWriter, r *http.Request) {
	if s.tracker == nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{"companies": map[string][]RejectedTitle{}})
		return
	}

	company := strings.TrimSpace(r.URL.Query().Get("company"))
	minCount := parseQueryInt(r, "min_count", 1, 0)

	out := map[string][]RejectedTitle{}
	for c, byTitle := range s.tracker.Snapshot(company, minCount) {
		titles := make([]RejectedTitle, 0, len(byTitle))
		for title, n := range byTitle {
			titles = append(titles, RejectedTitle{Title: title, Count: n})
		}
		sort.Slice(titles, func(i, j int) bool {
			if titles[i].Count != titles[j].Count {
				return titles[i].Count > titles[j].Count
			}
			return titles[i].Title < titles[j].Title
		})
		out[c] = titles
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"companies": out})
}

func (s *Server) handleResetRejected(w http.ResponseWriter, _ *http.Request) {
	if s.tracker != nil {
		s.tracker.Reset()
	}
	w.WriteHeader(http.StatusNoContent)
}
