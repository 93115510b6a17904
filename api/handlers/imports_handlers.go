package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"argus-sod/config"
	"argus-sod/core/ingest"
	"argus-sod/core/store"
	"argus-sod/core/utils"
)

type ImportsHandler struct {
	cfg    *config.AppConfig
	loader *ingest.Loader
	audits store.AuditStore
	logger *utils.Logger
}

func NewImportsHandler(cfg *config.AppConfig, loader *ingest.Loader, audits store.AuditStore, logger *utils.Logger) *ImportsHandler {
	return &ImportsHandler{cfg: cfg, loader: loader, audits: audits, logger: logger}
}

type importRequest struct {
	Dir string `json:"dir"`
}

// Run triggers a full bulk load and returns the per-file report. The body
// may override the source directory, otherwise the configured one is used.
func (h *ImportsHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if r.Body != nil {
		// An empty body is fine; only a malformed one is rejected.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
	}
	dir := req.Dir
	if dir == "" {
		dir = h.cfg.Importer.DataDir
	}
	report := h.loader.LoadAll(r.Context(), dir)
	h.audits.Log(r.Context(), actorName(r), "imports.run",
		fmt.Sprintf("dir=%s rows=%d", dir, report.TotalRows))
	writeJSON(w, http.StatusOK, report)
}
