package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/couchcryptid/hazard-map/internal/session"
)

// MapSession is the part of session.Session the HTTP layer drives.
type MapSession interface {
	Handle(ctx context.Context, ev session.Event) error
	EnterReporting() error
	CancelReporting()
	SelectHazardType(value string)
	SetNotes(text string)
	Submit(ctx context.Context) (*session.Submission, error)
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Layers() session.Layers
	State() session.State
	Updates() *session.Bus
}

// APIHandler serves read-only JSON views of the session.
type APIHandler struct {
	sess   MapSession
	logger *slog.Logger
}

func NewAPIHandler(sess MapSession, logger *slog.Logger) *APIHandler {
	return &APIHandler{sess: sess, logger: logger}
}

// Layers returns the projected heatmap and symbol layers.
func (h *APIHandler) Layers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Layers())
}

// State returns the session summary.
func (h *APIHandler) State(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.State())
}

// Refresh reloads hazards from the store.
func (h *APIHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if err := h.sess.Refresh(ctx); err != nil {
		h.logger.Warn("manual refresh failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"hazards": h.sess.State().Hazards})
}

// GzipMiddleware compresses responses larger than 1KiB.
func GzipMiddleware(next http.Handler) http.Handler {
	wrapper, _ := gzhttp.NewWrapper(
		gzhttp.MinSize(1024),
		gzhttp.CompressionLevel(6),
	)
	return wrapper(next)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
