// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"html/template"
	"net/http"
)

// dashboardHandler handles dashboard requests
type dashboardHandler struct {
	page []byte
	err  error
}

// dashboardData fills the limit control of the page.
type dashboardData struct {
	Default int
	Min     int
	Max     int
	Step    int
}

// newDashboardHandler renders the embedded page once for the given limits.
func newDashboardHandler(limits Limits) *dashboardHandler {
	h := &dashboardHandler{}
	tmpl, err := template.ParseFS(dashboardFS, "dashboard.html")
	if err != nil {
		h.err = err
		return h
	}
	var buf bytes.Buffer
	h.err = tmpl.Execute(&buf, dashboardData{
		Default: limits.Default,
		Min:     limits.Min,
		Max:     limits.Max,
		Step:    5,
	})
	h.page = buf.Bytes()
	return h
}

// HandleDashboard handles GET / requests.
// Returns an HTML page that lists the ranking via /api/recommend.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		http.NotFound(w, r)
		return
	}
	if h.err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap("api.dashboard", h.err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.page)
}
