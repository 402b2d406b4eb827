package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/docguard/internal/docstats"
	"github.com/dgallion1/docguard/internal/summary"
)

// validateRequest asks for a synchronous quality check of an existing
// summary. Page count and file size describe the original document; the
// character count is taken from source.
type validateRequest struct {
	Source    string          `json:"source"`
	Summary   summary.Summary `json:"summary"`
	PageCount int             `json:"page_count"`
	SizeMB    float64         `json:"size_mb"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.PageCount < 0 || req.SizeMB < 0 {
		jsonError(w, "page_count and size_mb must not be negative", http.StatusBadRequest)
		return
	}

	stats := docstats.FromCounts(req.Source, req.PageCount, 0)
	stats.SizeMB = req.SizeMB
	writeJSON(w, http.StatusOK, s.deps.Validator.Validate(req.Source, req.Summary, stats, 0))
}
