package httpapi

import (
	"context"
	"net/http"
)

const manualTrigger = "manual"

// handleStartCycle forces a cycle in the background. A running cycle is not queued.
func (s *Server) handleStartCycle(w http.ResponseWriter, r *http.Request) {
	if s.cycles == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "cycles are not available")
		return
	}
	started := s.cycles.Start(context.WithoutCancel(r.Context()), manualTrigger)
	s.jsonResponse(w, http.StatusAccepted, map[string]bool{"started": started})
}

func (s *Server) handleLastCycle(w http.ResponseWriter, _ *http.Request) {
	if s.cycles == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "cycles are not available")
		return
	}
	report, ok := s.cycles.LastReport()
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "no cycle has finished yet")
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}
