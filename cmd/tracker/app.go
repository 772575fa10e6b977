package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"price-tracker/config"
	"price-tracker/internal/alerts"
	"price-tracker/internal/database"
	"price-tracker/internal/monitor"
	"price-tracker/internal/scraper"
)

type setupFunc func() (*config.Config, *zap.Logger, error)

// app holds the components shared by serve and sweep.
type app struct {
	db       *database.DB
	registry *prometheus.Registry
	metrics  *monitor.Metrics
	scrapers *scraper.Registry
	alerts   *alerts.Service
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open alert store: %w", err)
	}

	scrapers, err := scraper.NewRegistry(scraper.NewHTTPClient(cfg.HTTPTimeout))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build scraper registry: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &app{
		db:       db,
		registry: reg,
		metrics:  monitor.NewMetrics(reg),
		scrapers: scrapers,
		alerts:   alerts.NewService(db, log),
	}, nil
}

func (a *app) newMonitor(cfg *config.Config, log *zap.Logger, notifier monitor.Notifier) *monitor.Monitor {
	return monitor.New(a.db, a.scrapers, notifier, log, cfg.CheckInterval,
		monitor.WithItemDelay(cfg.ItemDelay),
		monitor.WithRunOnStart(cfg.RunOnStart),
		monitor.WithMetrics(a.metrics),
	)
}

func (a *app) Close() error {
	return a.db.Close()
}
