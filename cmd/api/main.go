package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/notehub/internal/auth"
	"github.com/geocoder89/notehub/internal/cache"
	"github.com/geocoder89/notehub/internal/config"
	"github.com/geocoder89/notehub/internal/db"
	"github.com/geocoder89/notehub/internal/domain/user"
	httpx "github.com/geocoder89/notehub/internal/http"
	"github.com/geocoder89/notehub/internal/http/handlers"
	"github.com/geocoder89/notehub/internal/observability"
	"github.com/geocoder89/notehub/internal/redisclient"
	"github.com/geocoder89/notehub/internal/repo/postgres"
	"github.com/geocoder89/notehub/internal/security"
	authsvc "github.com/geocoder89/notehub/internal/service/auth"
	notesvc "github.com/geocoder89/notehub/internal/service/notes"
	"github.com/geocoder89/notehub/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("notehub exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	startCtx, cancel := config.WithTimeout(15 * time.Second)
	defer cancel()

	shutdownTracer, err := observability.InitTracer(startCtx, observability.TracerConfig{
		ServiceName: "notehub",
		Environment: cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	pool, err := db.NewPool(startCtx, cfg.DBURL, db.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(startCtx, pool); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	checks := []handlers.Check{{Name: "postgres", Ping: pool.Ping}}

	var sessions session.Store
	if cfg.RedisAddr != "" {
		rdb, err := redisclient.Connect(startCtx, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		sessions = session.NewRedisStore(rdb)
		checks = append(checks, handlers.Check{Name: "redis", Ping: sessions.Ping})
		log.Info("sessions stored in redis", "addr", cfg.RedisAddr)
	} else {
		// sessions do not survive a restart
		sessions = session.NewMemoryStore()
		log.Warn("REDIS_ADDR not set, sessions kept in memory")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	authService := authsvc.NewService(authsvc.Deps{
		Users:      postgres.NewUsersRepo(pool, prom),
		Sessions:   sessions,
		Hasher:     security.NewPasswordHasher(bcrypt.DefaultCost),
		SessionTTL: cfg.SessionTTL(),
		UserCache:  cache.New[int64, user.User](time.Minute),
		Prom:       prom,
		Log:        log,
	})
	notesService := notesvc.NewService(postgres.NewNotesRepo(pool, prom), prom, log)

	router, err := httpx.NewRouter(log, cfg, httpx.Deps{
		Auth:     authService,
		Sessions: authService,
		Tokens:   auth.NewManager(cfg.SessionSecret),
		Notes:    notesService,
		Prom:     prom,
		Gatherer: reg,
		Checks:   checks,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	log.Info("server shutting down")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
