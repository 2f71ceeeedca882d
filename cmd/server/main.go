package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"okkstats/internal/core"
	"okkstats/internal/ingest"
	ingestmetrics "okkstats/internal/ingest/metrics"
	"okkstats/internal/platform/config"
	"okkstats/internal/platform/httpserver"
	"okkstats/internal/platform/logger"
	platformredis "okkstats/internal/platform/redis"
	"okkstats/internal/records"
	"okkstats/internal/settings"
	settingsmetrics "okkstats/internal/settings/metrics"
	"okkstats/internal/settings/store"
	httptransport "okkstats/internal/transport/http"
	"okkstats/pkg/platform/audit"
)

// main wires the dependencies and keeps the lifecycle small. Business logic
// lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}

	var remote store.Remote
	if redisClient != nil {
		remote = store.NewRedisRemote(redisClient.Client, settings.DocumentKey)
		defer redisClient.Close()
	} else {
		log.Warn("no redis configured, settings stay process-local")
		remote = store.NewMemoryRemote()
	}

	var publisher audit.Publisher = audit.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		publisher = kafka
	}

	reconciler, err := settings.New(remote, store.NewFileCache(cfg.CachePath),
		settings.WithLogger(log),
		settings.WithMetrics(settingsmetrics.New()),
		settings.WithIdentity(cfg.Identity),
		settings.WithLockWindow(cfg.LockWindow),
		settings.WithAudit(publisher),
	)
	if err != nil {
		log.Error("settings reconciler", "error", err)
		os.Exit(1)
	}
	if err := reconciler.Start(ctx); err != nil {
		log.Error("settings reconciler start", "error", err)
		os.Exit(1)
	}
	defer reconciler.Close()

	converter := ingest.NewConverter(
		ingest.WithLogger(log),
		ingest.WithMetrics(ingestmetrics.New()),
	)
	ctrl := core.New(converter, reconciler, core.WithLogger(log))

	var source records.Source
	if cfg.PostgresURL != "" {
		pgSource, err := records.NewPostgresSource(cfg.PostgresURL, records.WithPostgresLogger(log))
		if err != nil {
			log.Error("postgres source", "error", err)
			os.Exit(1)
		}
		defer pgSource.Close()
		source = pgSource
	} else {
		log.Info("no postgres configured, rows arrive over HTTP only")
		source = records.NewMemorySource()
	}
	source.Subscribe(ctrl.SetRows)
	if err := source.Start(ctx); err != nil {
		log.Error("record source start", "error", err)
		os.Exit(1)
	}

	handler := httptransport.NewHandler(ctrl, log, cfg.Identity)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shut down cleanly")
}
