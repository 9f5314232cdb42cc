// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
)

// RecommendDependencies defines the interface for per-user reads.
type RecommendDependencies interface {
	RecommendForUser(ctx context.Context, userID string, n int) ([]Entry, bool, error)
}

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	deps   RecommendDependencies
	limits Limits
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(deps RecommendDependencies, limits Limits) *RecommendHandler {
	return &RecommendHandler{deps: deps, limits: limits}
}

type recommendResponse struct {
	User      string  `json:"user"`
	KnownUser bool    `json:"known_user"`
	Limit     int     `json:"limit"`
	Entries   []Entry `json:"entries"`
}

// HandleGetRecommend handles GET /api/recommend?user=U&limit=N requests.
// Unknown and empty users are served the global ranking.
func (h *RecommendHandler) HandleGetRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recommend"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := parseLimit(r, h.limits)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	entries, known, err := h.deps.RecommendForUser(r.Context(), user, n)
	if err != nil {
		writeQueryError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendResponse{
		User:      user,
		KnownUser: known,
		Limit:     n,
		Entries:   entries,
	})
}
