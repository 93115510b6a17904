package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"argus-sod/config"
	"argus-sod/core/auth"
	"argus-sod/core/store"
	"argus-sod/core/utils"
)

// EnsureDefaultAdmin seeds an admin account when the users table is empty so
// a fresh deployment is reachable. The password comes from config; when none
// is set, a random one is generated and printed once.
func EnsureDefaultAdmin(ctx context.Context, users store.UsersStore, cfg *config.AppConfig, logger *utils.Logger) error {
	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	username := "admin"
	if cfg != nil && strings.TrimSpace(cfg.Bootstrap.AdminUsername) != "" {
		username = strings.ToLower(strings.TrimSpace(cfg.Bootstrap.AdminUsername))
	}
	password := ""
	generated := false
	if cfg != nil {
		password = cfg.Bootstrap.AdminPassword
	}
	if password == "" {
		password, err = utils.RandString(12)
		if err != nil {
			return err
		}
		generated = true
	}
	scheme := auth.SchemeSHA256Hex
	pepper := ""
	if cfg != nil {
		if cfg.PasswordScheme != "" {
			scheme = cfg.PasswordScheme
		}
		pepper = cfg.Pepper
	}
	hash, err := auth.HashPassword(password, pepper, scheme)
	if err != nil {
		return err
	}
	_, err = users.Create(ctx, &store.User{Username: username, PasswordHash: hash, Role: store.RoleAdmin})
	if errors.Is(err, store.ErrDuplicateUsername) {
		// Lost a race with a concurrent seed; the account exists either way.
		return nil
	}
	if err != nil {
		return err
	}
	if generated {
		// Printed once to stdout on purpose; the credential must not end up
		// in aggregated log streams.
		fmt.Printf("Initial admin account %q created with password: %s (change immediately)\n", username, password)
	}
	logger.Printf("BOOTSTRAP created admin user=%s", username)
	return nil
}
