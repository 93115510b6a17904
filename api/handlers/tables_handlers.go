package handlers

import (
	"net/http"

	"argus-sod/core/store"
)

// TablesHandler serves the read-only ingestion tables and the dashboard
// summary counts.
type TablesHandler struct {
	incidents store.IncidentsStore
	tickets   store.TicketsStore
	datasets  store.DatasetsStore
}

func NewTablesHandler(incidents store.IncidentsStore, tickets store.TicketsStore, datasets store.DatasetsStore) *TablesHandler {
	return &TablesHandler{incidents: incidents, tickets: tickets, datasets: datasets}
}

func (h *TablesHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	items, err := h.tickets.ListAll(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

func (h *TablesHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	items, err := h.datasets.ListAll(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

// Summary reports live row counts per table. Counts come from the tables
// themselves, not from datasets_metadata's self-reported record_count.
func (h *TablesHandler) Summary(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.incidents.Count(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	tickets, err := h.tickets.Count(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	datasets, err := h.datasets.Count(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cyber_incidents":   incidents,
		"it_tickets":        tickets,
		"datasets_metadata": datasets,
	})
}
