package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"argus-sod/core/store"
	"argus-sod/core/utils"
)

type IncidentsHandler struct {
	incidents store.IncidentsStore
	audits    store.AuditStore
	logger    *utils.Logger
}

func NewIncidentsHandler(incidents store.IncidentsStore, audits store.AuditStore, logger *utils.Logger) *IncidentsHandler {
	return &IncidentsHandler{incidents: incidents, audits: audits, logger: logger}
}

func (h *IncidentsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.incidents.ListAll(r.Context())
	if err != nil {
		h.logger.Errorf("incidents list: %v", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

func (h *IncidentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var incident store.Incident
	if err := json.NewDecoder(r.Body).Decode(&incident); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if incident.ReportedBy == "" {
		incident.ReportedBy = actorName(r)
	}
	id, err := h.incidents.Insert(r.Context(), &incident)
	if err != nil {
		if errors.Is(err, store.ErrInvalidEnum) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Errorf("incidents create: %v", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	incident.ID = id
	h.audits.Log(r.Context(), actorName(r), "incidents.create", "id="+strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusCreated, map[string]interface{}{"incident": incident})
}

func (h *IncidentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(urlParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	if err := h.incidents.Delete(r.Context(), id); err != nil {
		h.logger.Errorf("incidents delete id=%d: %v", id, err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	h.audits.Log(r.Context(), actorName(r), "incidents.delete", "id="+strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
