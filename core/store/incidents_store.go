package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Incident struct {
	ID           int64  `json:"id"`
	DateReported string `json:"date_reported"`
	IncidentType string `json:"incident_type"`
	Severity     string `json:"severity"`
	Status       string `json:"status"`
	Description  string `json:"description"`
	ReportedBy   string `json:"reported_by"`
}

var validIncidentSeverity = map[string]struct{}{
	"low":      {},
	"medium":   {},
	"high":     {},
	"critical": {},
}

var validIncidentStatus = map[string]struct{}{
	"open":          {},
	"investigating": {},
	"resolved":      {},
	"closed":        {},
}

// ValidateIncidentEnums checks severity and status case-insensitively
// against the documented sets. Only the direct insert path calls it; bulk
// loads pass CSV values through uninterpreted.
func ValidateIncidentEnums(severity, status string) error {
	if _, ok := validIncidentSeverity[strings.ToLower(strings.TrimSpace(severity))]; !ok {
		return fmt.Errorf("severity %q: %w", severity, ErrInvalidEnum)
	}
	if _, ok := validIncidentStatus[strings.ToLower(strings.TrimSpace(status))]; !ok {
		return fmt.Errorf("status %q: %w", status, ErrInvalidEnum)
	}
	return nil
}

type IncidentsStore interface {
	Insert(ctx context.Context, incident *Incident) (int64, error)
	ListAll(ctx context.Context) ([]Incident, error)
	Delete(ctx context.Context, id int64) error
	ReplaceAll(ctx context.Context, incidents []Incident) error
	Count(ctx context.Context) (int64, error)
}

type incidentsStore struct {
	db *sql.DB
}

func NewIncidentsStore(db *sql.DB) IncidentsStore {
	return &incidentsStore{db: db}
}

const incidentsDDL = `CREATE TABLE %s (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date_reported TEXT NOT NULL DEFAULT '',
	incident_type TEXT NOT NULL DEFAULT '',
	severity TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	reported_by TEXT NOT NULL DEFAULT ''
)`

func (s *incidentsStore) Insert(ctx context.Context, incident *Incident) (int64, error) {
	if err := ValidateIncidentEnums(incident.Severity, incident.Status); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cyber_incidents(date_reported, incident_type, severity, status, description, reported_by)
		VALUES(?,?,?,?,?,?)`,
		incident.DateReported, incident.IncidentType, incident.Severity, incident.Status, incident.Description, incident.ReportedBy)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	incident.ID = id
	return id, nil
}

// ListAll returns rows in storage order; callers needing chronological order
// sort on date_reported themselves.
func (s *incidentsStore) ListAll(ctx context.Context) ([]Incident, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date_reported, incident_type, severity, status, description, reported_by
		FROM cyber_incidents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Incident
	for rows.Next() {
		var inc Incident
		if err := rows.Scan(&inc.ID, &inc.DateReported, &inc.IncidentType, &inc.Severity, &inc.Status, &inc.Description, &inc.ReportedBy); err != nil {
			return nil, err
		}
		res = append(res, inc)
	}
	return res, rows.Err()
}

func (s *incidentsStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cyber_incidents WHERE id=?`, id)
	return err
}

func (s *incidentsStore) ReplaceAll(ctx context.Context, incidents []Incident) error {
	return replaceTable(ctx, s.db, "cyber_incidents", incidentsDDL, func(tx *sql.Tx, staging string) error {
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
			INSERT INTO %s(date_reported, incident_type, severity, status, description, reported_by)
			VALUES(?,?,?,?,?,?)`, staging))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, inc := range incidents {
			if _, err := stmt.ExecContext(ctx, inc.DateReported, inc.IncidentType, inc.Severity, inc.Status, inc.Description, inc.ReportedBy); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *incidentsStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cyber_incidents`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
