package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vedran77/moodboard/internal/cache"
	"github.com/vedran77/moodboard/internal/config"
	"github.com/vedran77/moodboard/internal/database"
	"github.com/vedran77/moodboard/internal/logger"
	"github.com/vedran77/moodboard/internal/metrics"
	"github.com/vedran77/moodboard/internal/repository"
	"github.com/vedran77/moodboard/internal/repository/memory"
	postgresrepo "github.com/vedran77/moodboard/internal/repository/postgres"
	"github.com/vedran77/moodboard/internal/service"
	httpx "github.com/vedran77/moodboard/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("moodboard", cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	m := metrics.New()

	// Storage
	var (
		accounts repository.AccountRepository
		moods    repository.MoodRepository
		pinger   repository.Pinger
	)
	switch cfg.Storage {
	case "memory":
		log.Warn("using in-memory storage; data is lost on restart")
		accountStore := memory.NewAccountStore()
		accounts, moods, pinger = accountStore, memory.NewMoodStore(), accountStore
	default:
		if cfg.AutoMigrate {
			migrator, err := database.NewMigrator(cfg.DSN(), log)
			if err != nil {
				return err
			}
			if err := migrator.Up(ctx); err != nil {
				return err
			}
		}
		pool, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			return err
		}
		defer pool.Close()
		log.Info("connected to database")
		accounts, moods, pinger = postgresrepo.NewAccountRepo(pool), postgresrepo.NewMoodRepo(pool), pool
	}

	// Services
	authService := service.NewAuthService(accounts, service.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.JWTTTL,
		BcryptCost: cfg.BcryptCost,
	}, log, m)

	var moodOpts []service.MoodOption
	if cfg.RedisURL != "" {
		todayCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis cache unavailable, continuing without it", "error", err)
		} else {
			defer todayCache.Close()
			moodOpts = append(moodOpts, service.WithTodayCache(todayCache))
			log.Info("today cache enabled")
		}
	}
	moodService := service.NewMoodService(moods, loc, log, m, moodOpts...)

	router := httpx.NewRouter(httpx.Deps{
		Log:         log,
		Auth:        authService,
		Moods:       moodService,
		Store:       pinger,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr, "storage", cfg.Storage, "timezone", loc.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Info("server stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
