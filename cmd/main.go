package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tejusbharadwaj/wnsm-sync/internal/api"
	"github.com/tejusbharadwaj/wnsm-sync/internal/config"
	"github.com/tejusbharadwaj/wnsm-sync/internal/database"
	server "github.com/tejusbharadwaj/wnsm-sync/internal/grpc"
	"github.com/tejusbharadwaj/wnsm-sync/internal/importer"
	"github.com/tejusbharadwaj/wnsm-sync/internal/metrics"
	"github.com/tejusbharadwaj/wnsm-sync/internal/poller"
	"github.com/tejusbharadwaj/wnsm-sync/internal/scheduler"
	"github.com/tejusbharadwaj/wnsm-sync/internal/session"
)

// Command wnsm-sync mirrors smart meter readings into a statistics store.
//
// The service:
//   - polls the current reading of every metering point on a cron schedule
//   - backfills quarter-hour or hourly history at most once a day per point
//   - stores statistics in PostgreSQL (or in memory without a database)
//   - exposes gRPC health and Prometheus metrics
//
// Usage:
//
//	wnsm-sync [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	appConfig, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(appConfig.Logging, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appConfig, logger, prometheus.DefaultRegisterer); err != nil {
		logger.Fatalf("Service error: %v", err)
	}
	logger.Info("shutdown complete")
}

func newLogger(cfg config.LoggingConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// stores picks PostgreSQL when a database host is configured, otherwise memory.
func stores(ctx context.Context, cfg config.DatabaseConfig, logger *logrus.Logger) (database.StatisticsSink, database.CursorStore, func() error, error) {
	if cfg.Host == "" {
		logger.Warn("no database configured, statistics are kept in memory only")
		store := database.NewMemoryStore()
		return store, store, func() error { return nil }, nil
	}

	repo, err := database.NewPostgresRepo(cfg.ConnString())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repo.Configure(cfg.MaxConnections, cfg.ConnMaxLifetime)
	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return nil, nil, nil, err
	}
	logger.WithFields(logrus.Fields{
		"host": cfg.Host,
		"name": cfg.Name,
	}).Info("connected to statistics database")
	return repo, repo, repo.Close, nil
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, reg prometheus.Registerer) error {
	loc, err := cfg.Sync.Location()
	if err != nil {
		return err
	}

	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	sink, cursors, closeStore, err := stores(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	guarded, err := database.NewMonotonicSink(sink, cfg.Sync.MonotonicCacheSize, logger)
	if err != nil {
		return err
	}

	client := api.NewClient(
		cfg.SmartMeter.BaseURL,
		cfg.SmartMeter.Username,
		cfg.SmartMeter.Password,
		api.WithHTTPClient(api.NewHTTPClient(cfg.SmartMeter.Timeout)),
		api.WithRateLimit(cfg.SmartMeter.RateLimit, cfg.SmartMeter.RateLimitBurst),
	)
	sess := session.New(client, logger, session.WithTTL(cfg.Sync.SessionTTL))

	imp := importer.New(sess, guarded, cursors, logger,
		importer.WithRefreshThreshold(cfg.Sync.RefreshThreshold),
		importer.WithLookback(cfg.Sync.DefaultLookback),
		importer.WithMetrics(m),
	)

	poll := poller.New(sess, imp, guarded, logger, poller.Config{
		Points:         cfg.Sync.MeteringPoints(),
		DiscoverPoints: cfg.Sync.DiscoverPoints,
		Concurrency:    cfg.Sync.Concurrency,
		Location:       loc,
		Unit:           cfg.Sync.Unit,
	}, poller.WithMetrics(m))

	g, gctx := errgroup.WithContext(ctx)

	health := server.NewHealthChecker()
	sched := scheduler.NewScheduler(gctx, poll, logger,
		scheduler.WithSchedule(cfg.Sync.Schedule),
		scheduler.WithLocation(loc),
		scheduler.WithCycleTimeout(cfg.Sync.CycleTimeout),
		scheduler.WithCycleHook(health.ReportCycle),
	)

	srv := server.SetupServer(health, m, logger, server.DefaultServerConfig())
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := sched.Start(); err != nil {
		lis.Close()
		return fmt.Errorf("scheduler error: %w", err)
	}

	g.Go(func() error {
		logger.WithField("port", cfg.Server.GRPCPort).Info("Starting gRPC server")
		if err := srv.Serve(lis); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("port", cfg.Server.MetricsPort).Info("Starting metrics server")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("initiating shutdown")

		sched.Stop()
		srv.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
