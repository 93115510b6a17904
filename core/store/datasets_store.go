package store

import (
	"context"
	"database/sql"
	"fmt"
)

type DatasetMetadata struct {
	DatasetName string `json:"dataset_name"`
	Source      string `json:"source"`
	// RecordCount is always mapped to 0 on ingestion; it is never read from
	// the source file or computed from actual row counts.
	RecordCount int64  `json:"record_count"`
	LastUpdated string `json:"last_updated"`
	Description string `json:"description"`
}

type DatasetsStore interface {
	ReplaceAll(ctx context.Context, datasets []DatasetMetadata) error
	ListAll(ctx context.Context) ([]DatasetMetadata, error)
	Count(ctx context.Context) (int64, error)
}

type datasetsStore struct {
	db *sql.DB
}

func NewDatasetsStore(db *sql.DB) DatasetsStore {
	return &datasetsStore{db: db}
}

const datasetsDDL = `CREATE TABLE %s (
	dataset_name TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	record_count INTEGER NOT NULL DEFAULT 0,
	last_updated TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT ''
)`

func (s *datasetsStore) ReplaceAll(ctx context.Context, datasets []DatasetMetadata) error {
	return replaceTable(ctx, s.db, "datasets_metadata", datasetsDDL, func(tx *sql.Tx, staging string) error {
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
			INSERT INTO %s(dataset_name, source, record_count, last_updated, description)
			VALUES(?,?,?,?,?)`, staging))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, d := range datasets {
			if _, err := stmt.ExecContext(ctx, d.DatasetName, d.Source, d.RecordCount, d.LastUpdated, d.Description); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *datasetsStore) ListAll(ctx context.Context) ([]DatasetMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dataset_name, source, record_count, last_updated, description
		FROM datasets_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []DatasetMetadata
	for rows.Next() {
		var d DatasetMetadata
		if err := rows.Scan(&d.DatasetName, &d.Source, &d.RecordCount, &d.LastUpdated, &d.Description); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func (s *datasetsStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM datasets_metadata`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
