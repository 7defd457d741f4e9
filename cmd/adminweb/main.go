// Command adminweb serves the browser front-end of the admin console.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/api"
	"github.com/99minutos/admin-console/internal/api/handler"
	"github.com/99minutos/admin-console/internal/core/service"
	mongodb "github.com/99minutos/admin-console/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/admin-console/internal/infrastructure/db/redis"
	"github.com/99minutos/admin-console/internal/infrastructure/directory"
	"github.com/99minutos/admin-console/internal/infrastructure/queue"
	"github.com/99minutos/admin-console/internal/infrastructure/store"
	"github.com/99minutos/admin-console/internal/infrastructure/telemetry"
	"github.com/99minutos/admin-console/internal/pkg/config"
	"github.com/99minutos/admin-console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		App:    "adminweb",
	})
	if err := cfg.ValidateWeb(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("adminweb stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	dir := directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.Timeout, logger.For("directory"))
	checks := []handler.ReadinessCheck{{Name: "directory", Check: dir.Ping}}
	reporter := telemetry.Multi{
		telemetry.NewLogReporter(logger.For("telemetry")),
		telemetry.MetricsReporter{},
	}

	cookieOpts := store.CookieOptions{TTL: cfg.Web.SessionTTL, Secure: cfg.IsProduction()}
	var sessions store.Provider
	switch cfg.Web.SessionBackend {
	case config.SessionBackendRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer client.Close()
		sessions = store.NewServerSideProvider(store.RedisBackend(client, cfg.Web.SessionTTL), cookieOpts)
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: redisdb.Ping(client)})
	case config.SessionBackendMemory:
		log.Warn().Msg("sessions kept in process memory; they are lost on restart")
		sessions = store.NewServerSideProvider(store.MemoryBackend(store.NewMemoryCache(cfg.Web.SessionTTL)), cookieOpts)
	default:
		sessions = store.NewCookieProvider([]byte(cfg.Web.SessionKey), cookieOpts)
	}

	if cfg.Mongo.URI != "" {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		repo := mongodb.NewFailureRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failure audit indexes not created")
		}

		// The dispatcher outlives ctx so queued reports are drained on shutdown.
		dispatcher := queue.NewDispatcher(cfg.ReportWorkers, repo, logger.For("audit"))
		dctx, cancel := context.WithCancel(context.Background())
		dispatcher.Start(dctx)
		defer func() {
			cancel()
			dispatcher.Wait()
		}()

		reporter = append(reporter, telemetry.NewAuditReporter(dispatcher))
		checks = append(checks, handler.ReadinessCheck{Name: "mongodb", Check: mongodb.Ping(client)})
	}

	e := api.NewRouter(api.Deps{
		Log:        logger.For("http"),
		Directory:  dir,
		Auth:       dir,
		Sessions:   sessions,
		Reporter:   reporter,
		Guard:      service.NewGuard(cfg.Web.LoginRoute, cfg.Web.DefaultRoute),
		Readiness:  checks,
		SessionKey: cfg.Web.SessionKey,
		Secure:     cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Web.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("sessions", cfg.Web.SessionBackend).Msg("adminweb listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
