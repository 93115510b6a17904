package ingest

import (
	"context"

	"argus-sod/config"
	"argus-sod/core/utils"

	"github.com/robfig/cron/v3"
)

// Scheduler re-runs the bulk load on a cron schedule so dropped-in CSV
// exports show up without a restart. Disabled when no schedule is set.
type Scheduler struct {
	cfg    config.ImporterConfig
	loader *Loader
	logger *utils.Logger
	cron   *cron.Cron
}

func NewScheduler(cfg config.ImporterConfig, loader *Loader, logger *utils.Logger) *Scheduler {
	return &Scheduler{cfg: cfg, loader: loader, logger: logger}
}

func (s *Scheduler) Start() error {
	if s.cfg.Schedule == "" {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(s.cfg.Schedule, func() {
		report := s.loader.LoadAll(context.Background(), s.cfg.DataDir)
		s.logger.Printf("IMPORT scheduled run total_rows=%d files=%d", report.TotalRows, len(report.Files))
	})
	if err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.logger.Printf("IMPORT scheduler started schedule=%q", s.cfg.Schedule)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
