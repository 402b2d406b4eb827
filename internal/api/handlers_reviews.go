package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	reviews, err := s.deps.Reviews.ListReviews(r.Context(), userID, limit)
	if err != nil {
		jsonError(w, "failed to list reviews: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}
	review, err := s.deps.Reviews.GetReview(r.Context(), userID, chi.URLParam(r, "docID"))
	if err != nil {
		jsonError(w, "failed to read review: "+err.Error(), http.StatusBadGateway)
		return
	}
	if review == nil {
		jsonError(w, "review not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}
	existed, err := s.deps.Reviews.DeleteReview(r.Context(), userID, chi.URLParam(r, "docID"))
	if err != nil {
		jsonError(w, "failed to delete review: "+err.Error(), http.StatusBadGateway)
		return
	}
	if !existed {
		jsonError(w, "review not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
