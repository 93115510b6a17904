package tests

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"argus-sod/config"
	"argus-sod/core/auth"
	"argus-sod/core/ingest"
	"argus-sod/core/store"
	"argus-sod/core/utils"
)

type env struct {
	cfg       *config.AppConfig
	db        *sql.DB
	users     store.UsersStore
	sessions  store.SessionStore
	audits    store.AuditStore
	incidents store.IncidentsStore
	tickets   store.TicketsStore
	datasets  store.DatasetsStore
	authSvc   *auth.Service
	sm        *auth.SessionManager
	loader    *ingest.Loader
	logger    *utils.Logger
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.AppConfig{
		DBDriver:   "sqlite",
		DBPath:     filepath.Join(dir, "test.db"),
		SessionTTL: time.Hour,
		CSRFKey:    "test-csrf-key",
	}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	e := &env{
		cfg:       cfg,
		db:        db,
		users:     store.NewUsersStore(db),
		sessions:  store.NewSessionsStore(db),
		audits:    store.NewAuditStore(db),
		incidents: store.NewIncidentsStore(db),
		tickets:   store.NewTicketsStore(db),
		datasets:  store.NewDatasetsStore(db),
		logger:    logger,
	}
	e.authSvc = auth.NewService(e.users, cfg, logger)
	e.sm = auth.NewSessionManager(e.sessions, cfg, logger)
	e.loader = ingest.NewLoader(e.incidents, e.tickets, e.datasets, logger)
	return e
}

func timePast() time.Time {
	return time.Now().UTC().Add(-time.Hour)
}
