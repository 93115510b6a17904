package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type SessionRecord struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Roles      []string  `json:"roles"`
	CSRFToken  string    `json:"-"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type SessionStore interface {
	SaveSession(ctx context.Context, rec *SessionRecord) error
	GetSession(ctx context.Context, id string) (*SessionRecord, error)
	UpdateActivity(ctx context.Context, id string, seenAt time.Time, ttl time.Duration) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionsStore struct {
	db *sql.DB
}

func NewSessionsStore(db *sql.DB) SessionStore {
	return &sessionsStore{db: db}
}

func (s *sessionsStore) SaveSession(ctx context.Context, rec *SessionRecord) error {
	roles, err := json.Marshal(rec.Roles)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions(id, user_id, username, roles, csrf_token, ip, user_agent, created_at, last_seen_at, expires_at)
		VALUES(?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.UserID, rec.Username, string(roles), rec.CSRFToken, rec.IP, rec.UserAgent, rec.CreatedAt, rec.LastSeenAt, rec.ExpiresAt)
	return err
}

// GetSession returns nil for unknown or expired sessions.
func (s *sessionsStore) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, username, roles, csrf_token, ip, user_agent, created_at, last_seen_at, expires_at
		FROM sessions WHERE id=?`, id)
	var rec SessionRecord
	var rolesRaw string
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Username, &rolesRaw, &rec.CSRFToken, &rec.IP, &rec.UserAgent, &rec.CreatedAt, &rec.LastSeenAt, &rec.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if time.Now().UTC().After(rec.ExpiresAt) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, id)
		return nil, nil
	}
	_ = json.Unmarshal([]byte(rolesRaw), &rec.Roles)
	return &rec, nil
}

func (s *sessionsStore) UpdateActivity(ctx context.Context, id string, seenAt time.Time, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET last_seen_at=?, expires_at=? WHERE id=?`,
		seenAt, seenAt.Add(ttl), id)
	return err
}

func (s *sessionsStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, id)
	return err
}

func (s *sessionsStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
