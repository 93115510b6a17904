package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

const (
	RoleAnalyst = "analyst"
	RoleAdmin   = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func ValidRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAnalyst, RoleAdmin:
		return true
	}
	return false
}

type UsersStore interface {
	Create(ctx context.Context, user *User) (int64, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Get(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type usersStore struct {
	db *sql.DB
}

func NewUsersStore(db *sql.DB) UsersStore {
	return &usersStore{db: db}
}

// Create persists the user. Username uniqueness is enforced by the UNIQUE
// column; a violation comes back as ErrDuplicateUsername without any prior
// existence check.
func (s *usersStore) Create(ctx context.Context, user *User) (int64, error) {
	now := time.Now().UTC()
	role := strings.ToLower(strings.TrimSpace(user.Role))
	if role == "" {
		role = RoleAnalyst
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users(username, password_hash, role, created_at)
		VALUES(?,?,?,?)`,
		user.Username, user.PasswordHash, role, now)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateUsername
		}
		return 0, err
	}
	id, _ := res.LastInsertId()
	user.ID = id
	user.Role = role
	user.CreatedAt = now
	return id, nil
}

func (s *usersStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users WHERE username=?`, username)
	return scanUser(row)
}

func (s *usersStore) Get(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users WHERE id=?`, id)
	return scanUser(row)
}

func (s *usersStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (s *usersStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	return err
}

func (s *usersStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
