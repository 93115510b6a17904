package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"argus-sod/core/store"
	"argus-sod/core/utils"
)

// Per-file load outcomes.
const (
	StatusLoaded  = "loaded"
	StatusMissing = "missing"
	StatusFailed  = "failed"
)

type FileStatus struct {
	File   string `json:"file"`
	Table  string `json:"table"`
	Status string `json:"status"`
	Rows   int    `json:"rows"`
	Error  string `json:"error,omitempty"`
}

type Report struct {
	TotalRows int          `json:"total_rows"`
	Files     []FileStatus `json:"files"`
}

// sources maps source file names to destination tables. Iterated in this
// fixed order so reports are stable.
var sources = []struct {
	file  string
	table string
}{
	{"cyber_incidents.csv", "cyber_incidents"},
	{"datasets_metadata.csv", "datasets_metadata"},
	{"it_tickets.csv", "it_tickets"},
}

// Loader applies the per-type mappers and replaces destination tables.
// Audit attribution is the caller's job: the API handler records the acting
// user, scheduled and startup runs only hit the log stream.
type Loader struct {
	incidents store.IncidentsStore
	tickets   store.TicketsStore
	datasets  store.DatasetsStore
	logger    *utils.Logger
}

func NewLoader(incidents store.IncidentsStore, tickets store.TicketsStore, datasets store.DatasetsStore, logger *utils.Logger) *Loader {
	return &Loader{incidents: incidents, tickets: tickets, datasets: datasets, logger: logger}
}

// LoadAll walks the configured source files under dir. A missing file is
// recorded and skipped; a parse or store failure is recorded and never
// aborts sibling files. Destination tables get replace semantics: the final
// row count equals the most recent file's row count, never a cumulative sum.
func (l *Loader) LoadAll(ctx context.Context, dir string) Report {
	var report Report
	for _, src := range sources {
		path := filepath.Join(dir, src.file)
		if _, err := os.Stat(path); err != nil {
			l.logger.Printf("IMPORT skip missing file=%s", src.file)
			report.Files = append(report.Files, FileStatus{File: src.file, Table: src.table, Status: StatusMissing})
			continue
		}
		rows, err := l.loadFile(ctx, path, src.table)
		if err != nil {
			l.logger.Errorf("IMPORT failed file=%s: %v", src.file, err)
			report.Files = append(report.Files, FileStatus{File: src.file, Table: src.table, Status: StatusFailed, Error: err.Error()})
			continue
		}
		l.logger.Printf("IMPORT loaded file=%s table=%s rows=%d", src.file, src.table, rows)
		report.Files = append(report.Files, FileStatus{File: src.file, Table: src.table, Status: StatusLoaded, Rows: rows})
		report.TotalRows += rows
	}
	return report
}

func (l *Loader) loadFile(ctx context.Context, path, table string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	rows, err := ParseCSV(f)
	if err != nil {
		return 0, err
	}
	switch table {
	case "cyber_incidents":
		mapped := MapIncidents(rows)
		if err := l.incidents.ReplaceAll(ctx, mapped); err != nil {
			return 0, err
		}
		return len(mapped), nil
	case "it_tickets":
		mapped := MapTickets(rows)
		if err := l.tickets.ReplaceAll(ctx, mapped); err != nil {
			return 0, err
		}
		return len(mapped), nil
	case "datasets_metadata":
		mapped := MapDatasets(rows)
		if err := l.datasets.ReplaceAll(ctx, mapped); err != nil {
			return 0, err
		}
		return len(mapped), nil
	default:
		return 0, fmt.Errorf("no mapper for table %q", table)
	}
}
