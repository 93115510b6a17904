package store

import (
	"context"
	"database/sql"
	"embed"

	"argus-sod/core/utils"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrationDialect tracks the driver picked by NewDB so ApplyMigrations
// matches it. Tests that open their own handle get the sqlite default.
var migrationDialect = "sqlite3"

func ApplyMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(migrationDialect); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return err
	}
	logger.Printf("DB migrations applied")
	return nil
}
