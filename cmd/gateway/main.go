package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/brokerhub/admin-gateway/internal/api"
	"github.com/brokerhub/admin-gateway/internal/api/metrics"
	"github.com/brokerhub/admin-gateway/internal/audit"
	"github.com/brokerhub/admin-gateway/internal/core/domain"
	"github.com/brokerhub/admin-gateway/internal/guard"
	"github.com/brokerhub/admin-gateway/internal/infrastructure/config"
	mongodb "github.com/brokerhub/admin-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/brokerhub/admin-gateway/internal/infrastructure/db/redis"
	"github.com/brokerhub/admin-gateway/internal/routing"
	"github.com/brokerhub/admin-gateway/internal/session"
	"github.com/brokerhub/admin-gateway/internal/transport"
	"github.com/brokerhub/admin-gateway/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	routes, err := routing.NewService(routing.DefaultTable())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid route table")
	}

	storage := redisdb.NewSessionStorage(rdb)
	client := transport.NewClient(transport.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, storage, log)
	authAPI := transport.NewAuthAPI(client)
	store := session.NewStore(authAPI, storage, log)

	dispatcher := audit.NewDispatcher(cfg.Audit.Workers, mongodb.NewAuditRepository(db), log)
	dispatcher.Start(ctx)

	// Any upstream 401 forces the session into a logged-out state. The
	// auth endpoints are exempt: a rejected login must keep the prior
	// session intact.
	client.SetUnauthorizedHook(func(hookCtx context.Context, path string) {
		if strings.HasPrefix(path, "/auth/login") || strings.HasPrefix(path, "/auth/register") {
			return
		}
		metrics.ForcedLogoutsTotal.Inc()
		snap := store.Snapshot()
		store.Logout(hookCtx)
		client.RemoveAuthToken()
		dispatcher.Record(audit.NewEvent(path, audit.ActionForcedLogout, "/login", "upstream_401", snap))
	})

	// Mirror session state into metrics and the log on every transition.
	store.Subscribe(func(s domain.Session) {
		if s.IsAuthenticated {
			metrics.SessionAuthenticated.Set(1)
		} else {
			metrics.SessionAuthenticated.Set(0)
		}
		log.Debug().
			Bool("authenticated", s.IsAuthenticated).
			Bool("loading", s.IsLoading).
			Bool("hydrated", s.Hydrated).
			Msg("session transition")
	})

	// Hydrate before the first navigation decision is trusted.
	store.InitializeAuth(ctx)

	e := api.NewRouter(api.Deps{
		Store:      store,
		Guard:      guard.New(routes),
		Client:     client,
		AuthAPI:    authAPI,
		Dispatcher: dispatcher,
		Mongo:      db,
		Redis:      rdb,
		Log:        log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.BaseURL).Msg("gateway started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
