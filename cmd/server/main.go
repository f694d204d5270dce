package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"osrm-route-service/internal/adapters/cache"
	"osrm-route-service/internal/adapters/distance"
	"osrm-route-service/internal/adapters/repositories"
	"osrm-route-service/internal/api"
	"osrm-route-service/internal/config"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/engine"
	"osrm-route-service/internal/platform/db"
	"osrm-route-service/internal/platform/obs"
	"osrm-route-service/internal/ports"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (engine, cache) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := obs.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file found, using environment variables")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := engine.New(cfg.Engine.DataPath, cfg.Engine.Algo(), engine.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	// Deferred first so it runs last: the engine outlives the HTTP server.
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Error("close engine", zap.Error(err))
		}
		logger.Info("engine closed")
	}()

	distanceCache, closeCache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closeCache()

	provider, err := distance.NewOSRMDistanceProvider(eng, distanceCache, distance.OSRMProviderConfig{
		Concurrency: cfg.Provider.Concurrency,
		Timeout:     cfg.Provider.Timeout(),
	}, logger)
	if err != nil {
		return err
	}

	var defaultStart *domain.Point
	if s := config.Get("OSRM_PLAN_START", ""); s != "" {
		p, err := domain.ParsePoint(s)
		if err != nil {
			return fmt.Errorf("OSRM_PLAN_START: %w", err)
		}
		defaultStart = &p
	}

	router := api.NewRouter(api.RouterDeps{
		Engine:       eng,
		Provider:     provider,
		DefaultStart: defaultStart,
		Logger:       logger,
	})

	// Write timeout leaves room for cold-cache multi-vehicle planning.
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.WriteTimeout)*time.Second)
	defer cancel()

	// Shutdown waits for in-flight handlers, so no engine query is running
	// once it returns.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openCache builds the configured distance cache. The returned cache is nil
// for driver "none".
func openCache(ctx context.Context, cfg config.CacheConfig) (ports.DistanceCache, func(), error) {
	noop := func() {}

	switch cfg.Driver {
	case config.CacheSqlite:
		conn, err := db.OpenSqlite(cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		if err := repositories.InitSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, noop, err
		}
		return cache.NewSqliteDistanceCache(conn, cfg.TTL()), func() { _ = conn.Close() }, nil

	case config.CachePostgres:
		conn, err := db.Open(cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		return cache.NewSQLDistanceCache(conn, cfg.TTL()), func() { _ = conn.Close() }, nil

	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisDistanceCache(client, cfg.TTL()), func() { _ = client.Close() }, nil

	default:
		return nil, noop, nil
	}
}
