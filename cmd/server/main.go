package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	authhandler "smartsave/internal/auth/handler"
	authservice "smartsave/internal/auth/service"
	authstore "smartsave/internal/auth/store"
	"smartsave/internal/auth/token"
	budgethandler "smartsave/internal/budget/handler"
	budgetservice "smartsave/internal/budget/service"
	budgetstore "smartsave/internal/budget/store"
	entryhandler "smartsave/internal/entry/handler"
	entryservice "smartsave/internal/entry/service"
	entrystore "smartsave/internal/entry/store"
	goalhandler "smartsave/internal/goal/handler"
	goalservice "smartsave/internal/goal/service"
	goalstore "smartsave/internal/goal/store"
	httptransport "smartsave/internal/http"
	"smartsave/internal/platform/config"
	"smartsave/internal/platform/events"
	"smartsave/internal/platform/httpserver"
	"smartsave/internal/platform/logger"
	"smartsave/internal/platform/metrics"
	"smartsave/internal/platform/middleware"
	"smartsave/internal/platform/postgres"
	"smartsave/internal/platform/redis"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	cache, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.KafkaBrokers != "" {
		kafka, err := events.NewKafka(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		publisher = kafka
	}

	m := metrics.New()
	tokens := token.NewService(cfg.JWTSigningKey, cfg.TokenTTL)

	auth := authservice.New(authstore.NewPostgres(pool), tokens, log, m, publisher)
	goals := goalservice.New(goalstore.NewPostgres(pool), log, m, publisher)
	entries := entryservice.New(entrystore.NewPostgres(pool), goals, cache, log, m, publisher)
	budgets := budgetservice.New(budgetstore.NewPostgres(pool), log, m, publisher)

	router := httptransport.New(httptransport.Deps{
		Pool: pool,
		Middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.Recovery(log),
			middleware.Logger(log),
			middleware.Latency(m),
		},
		RequireAuth: middleware.RequireAuth(tokens, log),
		Handlers: []httptransport.Registrar{
			authhandler.New(auth, log),
			goalhandler.New(goals, log),
			entryhandler.New(entries, log),
			budgethandler.New(budgets, log),
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting smartsave", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
