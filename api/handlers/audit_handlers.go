package handlers

import (
	"net/http"
	"strconv"

	"argus-sod/core/store"
	"argus-sod/core/utils"
)

const defaultAuditLimit = 100

type AuditHandler struct {
	audits store.AuditStore
	logger *utils.Logger
}

func NewAuditHandler(audits store.AuditStore, logger *utils.Logger) *AuditHandler {
	return &AuditHandler{audits: audits, logger: logger}
}

// Recent returns the newest audit entries, capped by ?limit=.
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	items, err := h.audits.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Errorf("audit recent: %v", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}
