package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"argus-sod/config"
	"argus-sod/core/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// NewDB opens the configured database handle. The embedded sqlite file is the
// default; postgres (via pgx) is available for shared deployments.
func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	driver := "sqlite"
	if cfg != nil && strings.TrimSpace(cfg.DBDriver) != "" {
		driver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	}
	switch driver {
	case "sqlite":
		path := "data/argus.db"
		if cfg != nil && strings.TrimSpace(cfg.DBPath) != "" {
			path = cfg.DBPath
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		// modernc sqlite serializes writers; a single connection avoids
		// SQLITE_BUSY churn under concurrent requests.
		db.SetMaxOpenConns(1)
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, err
		}
		migrationDialect = "sqlite3"
		logger.Printf("DB open sqlite path=%s", path)
		return db, nil
	case "postgres", "pgx":
		if cfg == nil || strings.TrimSpace(cfg.DBURL) == "" {
			return nil, fmt.Errorf("db_url required for postgres driver")
		}
		db, err := sql.Open("pgx", cfg.DBURL)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, err
		}
		migrationDialect = "postgres"
		logger.Printf("DB open postgres")
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}
