package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/vitatrack/client-core/config"
	"github.com/vitatrack/client-core/internal/adapters/filestore"
	"github.com/vitatrack/client-core/internal/adapters/redisstore"
	"github.com/vitatrack/client-core/internal/api"
	"github.com/vitatrack/client-core/internal/gateway"
	"github.com/vitatrack/client-core/internal/ports"
	"github.com/vitatrack/client-core/internal/service"
)

// App holds the wired client core: stores, gateway-backed HTTP client,
// session controller, access gate, submitter, and replay machinery.
type App struct {
	Config      config.AppConfig
	Logger      *slog.Logger
	Credentials ports.CredentialStore
	Queue       ports.QueueStore
	API         *api.Client
	Sessions    *service.SessionController
	Gate        *service.AccessGate
	Submitter   *service.Submitter
	Replayer    *service.Replayer
	Scheduler   *service.ReplayScheduler

	redisClient *redis.Client
}

// Options groups the UI-facing collaborators the core cannot supply itself.
type Options struct {
	Config    config.AppConfig
	Logger    *slog.Logger
	Navigator ports.Navigator
	Notifier  ports.Notifier
}

// New wires the client core from configuration.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{Config: cfg, Logger: logger}
	if err := app.initStores(ctx, cfg, logger); err != nil {
		return nil, err
	}

	// The gateway needs the forced-logout hook before the session
	// controller exists; bind it through the app so construction order
	// stays linear.
	transport, err := gateway.NewTransport(gateway.Options{
		Credentials: app.Credentials,
		OnAuthExpired: func() {
			if app.Sessions != nil {
				app.Sessions.ForceExpire()
			}
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build gateway: %w", err)
	}

	gatewayClient := &http.Client{Transport: transport, Timeout: cfg.HTTP.Timeout}
	apiClient, err := api.NewClient(api.Options{
		BaseURL:    cfg.HTTP.BaseURL,
		HTTPClient: gatewayClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build API client: %w", err)
	}
	app.API = apiClient

	sessions, err := service.NewSessionController(service.SessionControllerOptions{
		API:           apiClient,
		Credentials:   app.Credentials,
		Navigator:     opts.Navigator,
		Notifier:      opts.Notifier,
		RedirectDelay: cfg.Session.RedirectDelay,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build session controller: %w", err)
	}
	app.Sessions = sessions

	gate, err := service.NewAccessGate(service.AccessGateOptions{
		Sessions:     sessions,
		Entitlements: apiClient,
		Navigator:    opts.Navigator,
		Override:     service.NewOverridePolicy(cfg.Access.OverrideEmails),
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build access gate: %w", err)
	}
	app.Gate = gate

	// Replay sends frozen header snapshots, so it bypasses the gateway.
	replayClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	replayer, err := service.NewReplayer(service.ReplayerOptions{
		BaseURL:     cfg.HTTP.BaseURL,
		HTTPClient:  replayClient,
		Queue:       app.Queue,
		Concurrency: cfg.Replay.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build replayer: %w", err)
	}
	app.Replayer = replayer
	app.Scheduler = service.NewReplayScheduler(replayer, cfg.Replay.Interval, logger)

	submitter, err := service.NewSubmitter(service.SubmitterOptions{
		BaseURL:     cfg.HTTP.BaseURL,
		HTTPClient:  gatewayClient,
		Queue:       app.Queue,
		Credentials: app.Credentials,
		Trigger:     app.Scheduler,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build submitter: %w", err)
	}
	app.Submitter = submitter

	return app, nil
}

// Close releases held connections. Safe to call once the app is done.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.redisClient != nil {
		return a.redisClient.Close()
	}
	return nil
}

func (a *App) initStores(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) error {
	switch cfg.Storage.Mode {
	case config.StorageModeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		a.redisClient = client
		a.Credentials = redisstore.NewCredentialStore(client, cfg.Storage.KeyPrefix)
		a.Queue = redisstore.NewQueueStore(client, cfg.Storage.KeyPrefix)
		return nil

	case config.StorageModeFile:
		fallthrough
	default:
		dir := cfg.Storage.Dir
		if dir == "" {
			base, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("resolve user config dir: %w", err)
			}
			dir = filepath.Join(base, "vitatrack")
		}
		creds, err := filestore.NewCredentialStore(dir)
		if err != nil {
			return fmt.Errorf("open credential store: %w", err)
		}
		queueStore, err := filestore.NewQueueStore(dir, logger)
		if err != nil {
			return fmt.Errorf("open queue store: %w", err)
		}
		a.Credentials = creds
		a.Queue = queueStore
		return nil
	}
}
