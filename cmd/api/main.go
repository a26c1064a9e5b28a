// Package main is the entry point for the Barberbook API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"barberbook/internal/auth"
	"barberbook/internal/config"
	"barberbook/internal/handler"
	"barberbook/internal/httpx"
	"barberbook/internal/middleware"
	"barberbook/internal/ratelimit"
	"barberbook/internal/repo"
	"barberbook/internal/service"
	"barberbook/internal/token"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog JSON handler writes machine-readable output suitable for log
	// aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections. New() does not open
	// connections immediately; the first query does. The connect timeout
	// bounds how long a request waits for a connection, so an exhausted pool
	// surfaces as a classifiable failure instead of a hang.
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		slog.Error("invalid database url", "error", err)
		os.Exit(1)
	}
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Components -------------------------------------------------------
	respond := httpx.NewResponder(cfg.Dev(), logger)
	tokens := token.New(cfg.JWTSecret, cfg.TokenTTL)

	users := repo.NewUserRepo(pool)
	owners := repo.NewOwnerRepo(pool)
	shops := repo.NewBarbershopRepo(pool)

	authMW := auth.New(tokens, users, owners, respond)

	server := handler.NewServer(
		service.NewAuthService(users, tokens),
		service.NewBarbershopService(shops),
		users,
		handler.UploadConfig{Dir: cfg.UploadDir, MaxBytes: cfg.MaxUploadBytes},
		respond,
	)

	// Rate limiting: Redis when configured (budget shared across instances),
	// otherwise per-process in memory.
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		limiter, err = ratelimit.NewRedis(cfg.RedisAddr, "", 0, nil)
		if err != nil {
			slog.Error("failed to create redis rate limiter", "error", err)
			os.Exit(1)
		}
		slog.Info("rate limiting via redis", "addr", cfg.RedisAddr)
	} else {
		limiter = ratelimit.NewMemory(ratelimit.MemoryConfig{})
	}

	// --- Router -----------------------------------------------------------
	// Middleware order matters: RequestID → RealIP → SlogLogger → Recoverer
	// → CORS → body cap → rate limit, then the per-route auth gates inside
	// server.Routes.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes, respond))
	r.Use(middleware.NewRateLimitHandler(limiter, cfg.RateLimitRequests, cfg.RateLimitWindow, respond))

	r.Mount("/", server.Routes(authMW))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
