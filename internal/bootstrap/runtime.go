// Package bootstrap wires configuration, storage and the services into a
// runnable process. The API server and the operator CLI share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"timebank/internal/cache"
	"timebank/internal/config"
	"timebank/internal/database"
	"timebank/internal/featureflags"
	"timebank/internal/integrations"
	"timebank/internal/middleware"
	"timebank/internal/models"
	"timebank/internal/notifications"
	"timebank/internal/observability"
	"timebank/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations according to SCHEMA_MODE.
	ApplySchema bool
	// Workers starts the event bridge and the outbox drain loop.
	Workers bool
	// SkipRedis runs without Redis even if it is reachable.
	SkipRedis bool
}

// Runtime holds every long-lived dependency of the process.
type Runtime struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Flags  *featureflags.Manager
	Broker *notifications.Broker
	Hub    *notifications.Hub
	Outbox *integrations.Outbox
	Media  integrations.Host
	Cache  *cache.Cache

	Users     *service.UserService
	Tasks     *service.TaskService
	Chats     *service.ChatService
	Community *service.CommunityService
	Ledger    *service.LedgerService

	stopTracing func(context.Context) error
	cancel      context.CancelFunc
}

// InitRuntime connects to the database and Redis, builds the collaborators
// and the services. Redis is optional: without it caching, revocation and the
// cross-instance bridge are disabled.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	middleware.ConfigureLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	stopTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "timebank-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.SamplerRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	if err := ensureAdmins(ctx, cfg, db); err != nil {
		return nil, fmt.Errorf("failed to bootstrap admins: %w", err)
	}

	var rdb *redis.Client
	if !opts.SkipRedis {
		rdb, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "redis unavailable, continuing without it", "error", err)
			rdb = nil
		}
	}
	middleware.InitMiddleware(cfg, rdb)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	if cfg.FlagsFile != "" {
		if err := flags.LoadFile(cfg.FlagsFile); err != nil {
			return nil, fmt.Errorf("load feature flags: %w", err)
		}
	}

	media, err := newMediaHost(cfg)
	if err != nil {
		return nil, err
	}

	// A nil *redis.Client must not reach cache.New as a non-nil interface.
	var store redis.Cmdable
	if rdb != nil {
		store = rdb
	}

	rt := &Runtime{
		Config:      cfg,
		DB:          db,
		Redis:       rdb,
		Flags:       flags,
		Broker:      notifications.NewBroker(),
		Media:       media,
		Cache:       cache.New(store),
		stopTracing: stopTracing,
	}
	rt.Hub = notifications.NewHub(rt.Broker)

	rt.Outbox, err = integrations.OpenOutbox(cfg.OutboxPath, integrations.LogMailer{From: cfg.MailFrom}, flags)
	if err != nil {
		return nil, err
	}

	rt.wireServices()

	if opts.Workers {
		workerCtx, cancel := context.WithCancel(context.Background())
		rt.cancel = cancel
		if rdb != nil {
			if err := notifications.NewNotifier(rdb).Attach(workerCtx, rt.Broker); err != nil {
				middleware.Logger.WarnContext(ctx, "event bridge disabled", "error", err)
			}
		}
		interval := time.Duration(cfg.OutboxIntervalSec) * time.Second
		if interval <= 0 {
			interval = 5 * time.Second
		}
		rt.Outbox.Start(workerCtx, interval)
	}
	return rt, nil
}

func (rt *Runtime) wireServices() {
	repos := service.NewRepositories(rt.DB)
	rt.Users = service.NewUserService(repos, rt.Cache, rt.Broker, rt.Config)
	rt.Tasks = service.NewTaskService(rt.DB, repos, service.TaskServiceDeps{
		Cache:  rt.Cache,
		Events: rt.Broker,
		Mail:   rt.Outbox,
		Validator: integrations.FlaggedValidator{
			Next:  integrations.MockValidator{},
			Flags: rt.Flags,
		},
		Media: rt.Media,
	})
	rt.Chats = service.NewChatService(rt.DB, repos, rt.Broker)
	rt.Community = service.NewCommunityService(repos, rt.Cache, rt.Broker)
	rt.Ledger = service.NewLedgerService(repos)
}

func newMediaHost(cfg *config.Config) (integrations.Host, error) {
	switch cfg.MediaBackend {
	case "imgbb":
		return integrations.NewImgBB(cfg.ImgBBAPIKey, cfg.ImgBBEndpoint), nil
	case "", "local":
		if err := os.MkdirAll(cfg.MediaDir, 0o750); err != nil {
			return nil, fmt.Errorf("create media dir: %w", err)
		}
		return integrations.NewLocalHost(cfg.MediaDir, strings.TrimRight(cfg.PublicURL, "/")+"/media"), nil
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}
}

// Close stops the workers and releases connections. It is safe to call on a
// partially initialized runtime.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.cancel != nil {
		rt.cancel()
	}
	if rt.Hub != nil {
		errs = append(errs, rt.Hub.Shutdown(ctx))
	}
	if rt.Outbox != nil {
		errs = append(errs, rt.Outbox.Close())
	}
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if rt.Redis != nil {
		errs = append(errs, rt.Redis.Close())
	}
	if rt.stopTracing != nil {
		errs = append(errs, rt.stopTracing(ctx))
	}
	return errors.Join(errs...)
}

// ensureAdmins grants the admin role to the accounts listed in ADMIN_EMAILS.
// Unknown addresses are skipped; the account may sign up later.
func ensureAdmins(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || strings.TrimSpace(cfg.AdminEmails) == "" {
		return nil
	}
	var emails []string
	for _, e := range strings.Split(cfg.AdminEmails, ",") {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			emails = append(emails, e)
		}
	}
	if len(emails) == 0 {
		return nil
	}
	res := db.WithContext(ctx).Model(&models.User{}).
		Where("email IN ? AND is_admin = ?", emails, false).
		Update("is_admin", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		middleware.Logger.InfoContext(ctx, "admin role granted", "count", res.RowsAffected)
	}
	return nil
}
