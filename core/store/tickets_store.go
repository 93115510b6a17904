package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Ticket rows exist only through CSV ingestion; there is no direct-insert
// API for them.
type Ticket struct {
	TicketID    string `json:"ticket_id"`
	DateCreated string `json:"date_created"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to"`
}

type TicketsStore interface {
	ReplaceAll(ctx context.Context, tickets []Ticket) error
	ListAll(ctx context.Context) ([]Ticket, error)
	Count(ctx context.Context) (int64, error)
}

type ticketsStore struct {
	db *sql.DB
}

func NewTicketsStore(db *sql.DB) TicketsStore {
	return &ticketsStore{db: db}
}

const ticketsDDL = `CREATE TABLE %s (
	ticket_id TEXT PRIMARY KEY,
	date_created TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	assigned_to TEXT NOT NULL DEFAULT ''
)`

func (s *ticketsStore) ReplaceAll(ctx context.Context, tickets []Ticket) error {
	return replaceTable(ctx, s.db, "it_tickets", ticketsDDL, func(tx *sql.Tx, staging string) error {
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
			INSERT INTO %s(ticket_id, date_created, priority, status, description, assigned_to)
			VALUES(?,?,?,?,?,?)`, staging))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, t := range tickets {
			if _, err := stmt.ExecContext(ctx, t.TicketID, t.DateCreated, t.Priority, t.Status, t.Description, t.AssignedTo); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *ticketsStore) ListAll(ctx context.Context) ([]Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticket_id, date_created, priority, status, description, assigned_to
		FROM it_tickets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.TicketID, &t.DateCreated, &t.Priority, &t.Status, &t.Description, &t.AssignedTo); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *ticketsStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM it_tickets`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
