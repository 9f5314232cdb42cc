// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
)

// BookDependencies defines the interface for single-book lookups.
type BookDependencies interface {
	Rank(ctx context.Context, itemID string) (Entry, error)
}

// BookHandler handles book lookup requests.
type BookHandler struct {
	deps BookDependencies
}

// NewBookHandler creates a new book handler.
func NewBookHandler(deps BookDependencies) *BookHandler {
	return &BookHandler{deps: deps}
}

// HandleGetBook handles GET /api/books/{item_id} requests.
func (h *BookHandler) HandleGetBook(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_book"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /api/books/
	itemID := strings.TrimPrefix(r.URL.Path, "/api/books/")
	if itemID == "" || strings.Contains(itemID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.Rank(r.Context(), itemID)
	if err != nil {
		writeQueryError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
