package api

import "net/http"

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.LLMStats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	snap := s.deps.LLMStats.Snapshot()
	snap.Model = s.deps.Model
	writeJSON(w, http.StatusOK, snap)
}
