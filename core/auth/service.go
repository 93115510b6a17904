package auth

import (
	"context"
	"errors"
	"strings"

	"argus-sod/config"
	"argus-sod/core/store"
	"argus-sod/core/utils"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidRole     = errors.New("invalid role")
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service owns registration and verification against the users table.
// It distinguishes ErrUserNotFound from ErrInvalidPassword internally; the
// HTTP layer collapses both into one generic message so usernames cannot be
// enumerated through the login endpoint.
type Service struct {
	users  store.UsersStore
	cfg    *config.AppConfig
	logger *utils.Logger
}

func NewService(users store.UsersStore, cfg *config.AppConfig, logger *utils.Logger) *Service {
	return &Service{users: users, cfg: cfg, logger: logger}
}

func (s *Service) scheme() string {
	if s.cfg != nil && strings.TrimSpace(s.cfg.PasswordScheme) != "" {
		return s.cfg.PasswordScheme
	}
	return SchemeSHA256Hex
}

func (s *Service) pepper() string {
	if s.cfg != nil {
		return s.cfg.Pepper
	}
	return ""
}

// Register persists a new user. Uniqueness is left to the store's UNIQUE
// constraint; a violation surfaces as store.ErrDuplicateUsername.
func (s *Service) Register(ctx context.Context, username, password, role string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := utils.ValidateUsername(username); err != nil {
		return err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return err
	}
	if role == "" {
		role = store.RoleAnalyst
	}
	if !store.ValidRole(role) {
		return ErrInvalidRole
	}
	hash, err := HashPassword(password, s.pepper(), s.scheme())
	if err != nil {
		return err
	}
	user := &store.User{Username: username, PasswordHash: hash, Role: strings.ToLower(role)}
	if _, err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.logger.Printf("AUTH registered user=%s role=%s", username, user.Role)
	return nil
}

// Verify checks the password for username and returns the stored role.
// Neither the plaintext nor the stored credential is ever logged.
func (s *Service) Verify(ctx context.Context, username, password string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if !VerifyPassword(password, s.pepper(), user.PasswordHash) {
		return "", ErrInvalidPassword
	}
	return user.Role, nil
}
