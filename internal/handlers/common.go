package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fa-metadata/fa40/internal/extract"
	"github.com/fa-metadata/fa40/internal/header"
	"github.com/fa-metadata/fa40/internal/schema"
)

// Handler serves header generation over HTTP: the single-file `fa40 header`
// flow behind an upload endpoint.
type Handler struct {
	extractor *extract.Extractor
	builder   *header.Builder
	schema    *schema.Schema
}

// New builds the handler. sch may be nil when no schema directory is
// available; validation then skips the unknown-field diagnostics.
func New(extractor *extract.Extractor, sch *schema.Schema) *Handler {
	return &Handler{
		extractor: extractor,
		builder:   header.NewBuilder(),
		schema:    sch,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}
