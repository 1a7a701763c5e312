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

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socialgraph/socialgraph/internal/app"
	"github.com/socialgraph/socialgraph/internal/auth"
	"github.com/socialgraph/socialgraph/internal/follows"
	"github.com/socialgraph/socialgraph/internal/observability"
	"github.com/socialgraph/socialgraph/internal/platform/cache"
	"github.com/socialgraph/socialgraph/internal/platform/db"
	"github.com/socialgraph/socialgraph/internal/posts"
	"github.com/socialgraph/socialgraph/internal/users"
)

const usage = "usage: socialgraph [serve|migrate]"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	var runErr error
	switch command {
	case "serve":
		runErr = serve(ctx, cfg, logger)
	case "migrate":
		runErr = migrate(ctx, cfg, logger)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if runErr != nil {
		logger.Error(command+" failed", slog.Any("error", runErr))
		os.Exit(1)
	}
}

func migrate(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.PGMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	responseCache, closeCache := openCache(ctx, cfg, logger)
	defer closeCache()

	router, err := buildRouter(cfg, logger, pool, responseCache)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	return nil
}

// openCache connects to Redis when configured. Without Redis every read goes
// to PostgreSQL.
func openCache(ctx context.Context, cfg *app.Config, logger *slog.Logger) (*cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("redis disabled, caching off")
		return nil, func() {}
	}
	client, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching off", slog.Any("error", err))
		return nil, func() {}
	}
	return cache.NewCache(client, cfg.CacheTTL, logger), func() {
		if err := client.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}
}

func buildRouter(cfg *app.Config, logger *slog.Logger, pool *pgxpool.Pool, responseCache *cache.Cache) (http.Handler, error) {
	issuer, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	metrics := observability.NewMetrics()

	usersService := users.NewService(users.NewRepository(pool))
	authService := auth.NewService(usersService, auth.NewBcryptHasher(cfg.BcryptCost), issuer, logger)
	followsService := follows.NewService(follows.NewRepository(pool), responseCache, logger)
	postsService := posts.NewService(posts.NewRepository(pool), responseCache, logger)

	return app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    auth.NewHandler(logger, authService),
		AuthMiddleware: auth.NewMiddleware(authService, logger, metrics),
		UsersHandler:   users.NewHandler(logger, usersService),
		FollowsHandler: follows.NewHandler(logger, followsService),
		PostsHandler:   posts.NewHandler(logger, postsService),
		Metrics:        metrics,
	}), nil
}
