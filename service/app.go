package service

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

	"chirp/app/auth"
	"chirp/app/config"
	"chirp/app/events"
	"chirp/app/identity"
	"chirp/app/ratelimit"
	"chirp/app/repositories"
	"chirp/app/routes"
	"chirp/app/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

const (
	shutdownTimeout    = 10 * time.Second
	directoryTimeout   = 10 * time.Second
	rateLimitKeyPrefix = "chirp:ratelimit:"
)

// App is a fully wired server and the resources it must release.
type App struct {
	Handler http.Handler
	Store   *repositories.Store

	closers []func()
}

// Close releases every resource opened by NewApp, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewApp opens the stores and clients named by cfg and builds the router.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	store, err := repositories.OpenStore(cfg.Store.BadgerPath)
	if err != nil {
		return nil, err
	}
	app.Store = store
	app.closers = append(app.closers, func() { store.Close() })

	var posts repositories.PostRepository = store.Posts()
	if cfg.Store.Driver == "postgres" {
		pool, err := pgxpool.New(ctx, cfg.Store.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		app.closers = append(app.closers, pool.Close)

		pg := repositories.NewPostgresPostRepository(pool)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		posts = pg
		slog.Info("connected to postgres")
	}

	var directory identity.Directory
	switch cfg.Directory.Mode {
	case "http":
		directory = identity.NewHTTPDirectory(cfg.Directory.URL, cfg.Directory.Secret, &http.Client{Timeout: directoryTimeout})
	default:
		directory = identity.NewLocalDirectory(store.Users())
	}

	var limiter ratelimit.Limiter
	switch cfg.RateLimit.Backend {
	case "redis":
		opts, err := redis.ParseURL(cfg.RateLimit.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		app.closers = append(app.closers, func() { client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		limiter = ratelimit.NewRedisLimiter(client, cfg.RateLimit.PerMinute, ratelimit.DefaultWindow, rateLimitKeyPrefix)
		slog.Info("connected to redis")
	default:
		limiter = ratelimit.NewSlidingWindow(cfg.RateLimit.PerMinute, ratelimit.DefaultWindow)
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.Events.NatsURL != "" {
		nc, err := nats.Connect(cfg.Events.NatsURL)
		if err != nil {
			return nil, fmt.Errorf("connect to nats: %w", err)
		}
		app.closers = append(app.closers, nc.Close)
		publisher = events.NewNatsPublisher(nc)
		slog.Info("connected to nats")
	}

	sessions, err := auth.NewSessions(cfg.Session.Secret)
	if err != nil {
		return nil, err
	}

	app.Handler = routes.SetupRoutes(routes.Dependencies{
		Posts:    services.NewPostService(posts, directory, limiter, publisher),
		Profiles: services.NewProfileService(directory),
		Verifier: sessions,
	})
	ok = true
	return app, nil
}

// RunServer parses serve flags, loads the configuration and serves until
// SIGINT or SIGTERM.
func RunServer(args []string) int {
	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to a YAML config file")
	addr := flags.String("addr", "", "listen address (overrides config)")
	db := flags.String("db", "", "badger directory (overrides config)")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = *addr
	}
	if flags.Changed("db") {
		cfg.Store.BadgerPath = *db
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	initLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		return 1
	}
	return 0
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests.
func serve(ctx context.Context, cfg *config.Config) error {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("chirp listening", "addr", cfg.Server.Addr, "store", cfg.Store.Driver, "directory", cfg.Directory.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server exited")
	return nil
}

func initLogger(env string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if env == "local" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
