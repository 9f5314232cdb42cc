// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// TopDependencies defines the interface for ranking reads.
type TopDependencies interface {
	TopN(ctx context.Context, n int) ([]Entry, error)
}

// TopHandler handles top-N requests.
type TopHandler struct {
	deps   TopDependencies
	limits Limits
}

// NewTopHandler creates a new top-N handler.
func NewTopHandler(deps TopDependencies, limits Limits) *TopHandler {
	return &TopHandler{
		deps:   deps,
		limits: limits,
	}
}

type topResponse struct {
	Limit   int     `json:"limit"`
	Entries []Entry `json:"entries"`
}

// HandleGetTop handles GET /api/top?limit=N requests.
func (h *TopHandler) HandleGetTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_top"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := parseLimit(r, h.limits)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeQueryError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, topResponse{Limit: n, Entries: entries})
}
