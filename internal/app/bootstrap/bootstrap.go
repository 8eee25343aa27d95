package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	sharing "loom/contexts/content-sharing/sharing-workflow-service"
	sharingpostgres "loom/contexts/content-sharing/sharing-workflow-service/adapters/postgres"
	sharingworkers "loom/contexts/content-sharing/sharing-workflow-service/application/workers"
	isolation "loom/contexts/identity-access/isolation-service"
	isolationpostgres "loom/contexts/identity-access/isolation-service/adapters/postgres"
	featureinheritance "loom/contexts/tenant-admin/feature-inheritance-service"
	featurepostgres "loom/contexts/tenant-admin/feature-inheritance-service/adapters/postgres"
	quota "loom/contexts/tenant-admin/quota-service"
	quotapostgres "loom/contexts/tenant-admin/quota-service/adapters/postgres"
	"loom/internal/platform/config"
	"loom/internal/platform/db"
	"loom/internal/platform/httpserver"
	"loom/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  sharingworkers.OutboxRelay
	relayEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	quotaRepo := quotapostgres.NewRepository(pg.DB, logger)
	quotaModule := quota.NewModule(quota.Dependencies{
		Store:  quotaRepo,
		Clock:  quotapostgres.SystemClock{},
		Logger: logger,
	})

	featureRepo := featurepostgres.NewRepository(pg.DB, logger)
	featureModule := featureinheritance.NewModule(featureinheritance.Dependencies{
		Directory: featureRepo,
		Toggles:   featureRepo,
		Quota:     featureQuotaGate{quotas: quotaModule.Service},
		Clock:     featurepostgres.SystemClock{},
		Logger:    logger,
	})

	sharingRepo := sharingpostgres.NewRepository(pg.DB, logger)
	sharingModule := sharing.NewModule(sharing.Dependencies{
		Requests:      sharingRepo,
		Items:         sharingRepo,
		Organizations: sharingRepo,
		Outbox:        sharingRepo,
		Quota:         sharingQuotaReserver{quotas: quotaModule.Service},
		Clock:         sharingpostgres.SystemClock{},
		IDGenerator:   sharingpostgres.UUIDGenerator{},
		Logger:        logger,
	})

	isolationRepo := isolationpostgres.NewRepository(pg.DB, logger)
	isolationModule := isolation.NewModule(isolation.Dependencies{
		Users:         isolationRepo,
		Organizations: isolationRepo,
		Grants:        isolationRepo,
		Policies:      isolationRepo,
		Clock:         isolationpostgres.SystemClock{},
		IDGenerator:   isolationpostgres.UUIDGenerator{},
		Logger:        logger,
	})

	server := httpserver.New(
		featureModule,
		quotaModule,
		sharingModule,
		isolationModule,
		httpserver.Security{
			JWTSecret:   cfg.JWTSecret,
			CORSOrigins: cfg.CORSOrigins,
		},
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	sharingRepo := sharingpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: sharingworkers.OutboxRelay{
			Outbox:    sharingRepo,
			Publisher: busSharingPublisher{bus: bus, service: cfg.ServiceName},
			Clock:     sharingpostgres.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableSharingOutboxRelay,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"relay_enabled", w.relayEnabled,
	)

	for {
		if w.relayEnabled {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
