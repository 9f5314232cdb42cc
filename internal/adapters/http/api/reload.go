// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/bookpop/internal/adapters/repository"
	"github.com/okian/bookpop/pkg/logger"
)

// Reloader rebuilds the ranking from its source.
type Reloader interface {
	Reload(ctx context.Context) (*repository.Snapshot, error)
}

// ReloadHandler handles ranking rebuild requests.
type ReloadHandler struct {
	deps   Reloader
	logger logger.Logger
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps Reloader, l logger.Logger) *ReloadHandler {
	return &ReloadHandler{deps: deps, logger: l}
}

type reloadResponse struct {
	SnapshotID string    `json:"snapshot_id"`
	BuiltAt    time.Time `json:"built_at"`
	Items      int       `json:"items"`
}

// HandleReload handles POST /api/reload requests. A failed rebuild leaves
// the previous ranking in place.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	snap, err := h.deps.Reload(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "ranking reload failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{
		SnapshotID: snap.ID,
		BuiltAt:    snap.BuiltAt,
		Items:      snap.Scorer.Len(),
	})
}
