package api

import (
	"encoding/json"
	"net/http"

	"github.com/opensource-finance/kite/internal/publisher"
)

// Handler holds dependencies for status handlers.
type Handler struct {
	pub     *publisher.Publisher
	version string
}

// NewHandler creates a new status handler.
func NewHandler(pub *publisher.Publisher, version string) *Handler {
	return &Handler{
		pub:     pub,
		version: version,
	}
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health handles GET /health requests.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Progress handles GET /progress requests.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	if h.pub == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no replay attached",
		})
		return
	}
	writeJSON(w, http.StatusOK, h.pub.Progress())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
