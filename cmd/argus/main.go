package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"argus-sod/api"
	"argus-sod/config"
	"argus-sod/core/auth"
	"argus-sod/core/bootstrap"
	"argus-sod/core/ingest"
	"argus-sod/core/rbac"
	"argus-sod/core/store"
	"argus-sod/core/utils"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to config file")
	flag.Parse()

	logger := utils.NewLogger()
	if err := run(*configPath, logger); err != nil {
		logger.Errorf("fatal: %v", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *utils.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := store.ApplyMigrations(ctx, db, logger); err != nil {
		return err
	}

	users := store.NewUsersStore(db)
	sessions := store.NewSessionsStore(db)
	audits := store.NewAuditStore(db)
	incidents := store.NewIncidentsStore(db)
	tickets := store.NewTicketsStore(db)
	datasets := store.NewDatasetsStore(db)

	if err := bootstrap.EnsureDefaultAdmin(ctx, users, cfg, logger); err != nil {
		return err
	}

	loader := ingest.NewLoader(incidents, tickets, datasets, logger)
	if cfg.Importer.LoadOnStart {
		report := loader.LoadAll(ctx, cfg.Importer.DataDir)
		logger.Printf("startup import: %d rows across %d files", report.TotalRows, len(report.Files))
	}
	scheduler := ingest.NewScheduler(cfg.Importer, loader, logger)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	policy, err := rbac.NewPolicy()
	if err != nil {
		return err
	}

	go sweepSessions(ctx, sessions, logger)

	server := api.NewServer(cfg, api.ServerDeps{
		Users:          users,
		Sessions:       sessions,
		Audits:         audits,
		IncidentsStore: incidents,
		TicketsStore:   tickets,
		DatasetsStore:  datasets,
		Loader:         loader,
		AuthService:    auth.NewService(users, cfg, logger),
		SessionManager: auth.NewSessionManager(sessions, cfg, logger),
		Policy:         policy,
	}, logger)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Printf("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

const sessionSweepInterval = 15 * time.Minute

// sweepSessions clears expired session rows so the table does not grow
// without bound; GetSession already treats expired rows as absent.
func sweepSessions(ctx context.Context, sessions store.SessionStore, logger *utils.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				logger.Errorf("session sweep: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("session sweep removed=%d", n)
			}
		}
	}
}
