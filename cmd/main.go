package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/angeloszaimis/edge-proxy/config"
	"github.com/angeloszaimis/edge-proxy/internal/backend"
	"github.com/angeloszaimis/edge-proxy/internal/cache"
	"github.com/angeloszaimis/edge-proxy/internal/health"
	"github.com/angeloszaimis/edge-proxy/internal/httpserver"
	"github.com/angeloszaimis/edge-proxy/internal/loadbalancer"
	"github.com/angeloszaimis/edge-proxy/internal/metrics"
	"github.com/angeloszaimis/edge-proxy/internal/middleware"
	"github.com/angeloszaimis/edge-proxy/internal/proxy"
	"github.com/angeloszaimis/edge-proxy/internal/rewrite"
	"github.com/angeloszaimis/edge-proxy/pkg/logger"
)

const cacheMaxEntries = 10000

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	backends, err := initializeBackends(cfg, log)
	if err != nil {
		log.Error("Failed to initialize backends", slog.Any("err", err))
		os.Exit(1)
	}

	tracker := health.NewTracker(cfg.HealthCheck.Enabled, cfg.HealthCheckInterval(), log)
	selector := loadbalancer.NewSelector(loadbalancer.ParseStrategy(cfg.Strategy))
	rewriter := rewrite.NewRewriter(cfg.RewriteRules, log)
	access := middleware.NewAccessControl(cfg.AccessRules, log)

	collector := metrics.NewCollector(1000, log)
	collector.Start(ctx)

	var store cache.Store
	if cfg.Cache.Enabled {
		ristretto, err := cache.NewRistrettoStore(cacheMaxEntries)
		if err != nil {
			log.Error("Failed to initialize cache", slog.Any("err", err))
			os.Exit(1)
		}
		store = ristretto
	}

	if cfg.HealthCheck.Enabled && cfg.HealthCheck.Active {
		for _, b := range backends {
			go tracker.Watch(ctx, b, cfg.HealthCheckInterval())
		}
	}

	proxyHandler := proxy.New(cfg, log, backends, tracker, selector, rewriter, access, store, collector)

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(proxyHandler))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Edge proxy starting",
		slog.String("address", cfg.Server.Address),
		slog.String("strategy", loadbalancer.ParseStrategy(cfg.Strategy).String()),
		slog.Int("backends", len(backends)))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting edge proxy", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func initializeBackends(cfg *config.Config, log *slog.Logger) ([]*backend.Backend, error) {
	var backends []*backend.Backend

	for _, bc := range cfg.Backends {
		b, err := backend.FromConfig(bc)
		if err != nil {
			log.Error("Skipping invalid backend",
				slog.String("url", bc.URL),
				slog.String("error", err.Error()))
			continue
		}
		backends = append(backends, b)
	}

	if len(backends) == 0 {
		return nil, errors.New("no valid backends configured")
	}

	return backends, nil
}
