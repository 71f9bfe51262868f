package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vagadeeshwar/household-services-sub000/internal/audit"
	"github.com/vagadeeshwar/household-services-sub000/internal/auth"
	"github.com/vagadeeshwar/household-services-sub000/internal/cache"
	"github.com/vagadeeshwar/household-services-sub000/internal/catalog"
	"github.com/vagadeeshwar/household-services-sub000/internal/email"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	"github.com/vagadeeshwar/household-services-sub000/internal/exports"
	apphttp "github.com/vagadeeshwar/household-services-sub000/internal/http"
	"github.com/vagadeeshwar/household-services-sub000/internal/http/router"
	"github.com/vagadeeshwar/household-services-sub000/internal/notification"
	"github.com/vagadeeshwar/household-services-sub000/internal/professionals"
	"github.com/vagadeeshwar/household-services-sub000/internal/requests"
	requestssvc "github.com/vagadeeshwar/household-services-sub000/internal/requests/service"
	"github.com/vagadeeshwar/household-services-sub000/internal/scheduler"
	"github.com/vagadeeshwar/household-services-sub000/internal/stats"
	"github.com/vagadeeshwar/household-services-sub000/migrations"
	"github.com/vagadeeshwar/household-services-sub000/platform/config"
	"github.com/vagadeeshwar/household-services-sub000/platform/db"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"
	"github.com/vagadeeshwar/household-services-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(cfg.DatabaseURL, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	var scheduleCache requestssvc.ScheduleCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.New(cfg, log)
		if err != nil {
			log.Error("failed to initialize schedule cache", "error", err)
			panic("failed to initialize schedule cache: " + err.Error())
		}
		defer redisCache.Close()
		redisCache.SubscribeInvalidation(eventBus)
		scheduleCache = redisCache
		log.Info("schedule cache initialized")
	} else {
		log.Warn("REDIS_URL not configured; schedule caching disabled")
	}

	var sender email.Sender
	if cfg.EmailEnabled {
		sender = email.NewSMTPSender(cfg)
	} else {
		sender = email.NewNoopSender(log)
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	auditModule := audit.NewModule(pool)
	catalogModule := catalog.NewModule(pool, auditModule.Repository(), val, log)
	authModule := auth.NewModule(pool, catalogModule.Repository(), auditModule.Repository(), cfg, eventBus, val, log)
	professionalsModule := professionals.NewModule(pool, auditModule.Repository(), eventBus, log)
	requestsModule := requests.NewModule(pool, auditModule.Repository(), catalogModule.Repository(),
		cfg.Booking, scheduleCache, eventBus, val, log)
	statsModule := stats.NewModule(pool, log)

	// Notification module subscribes to domain events (not HTTP-facing)
	notifier := notification.New(authModule.Repository(), requestsModule.Repository(),
		catalogModule.Repository(), sender, log)
	notifier.Subscribe(eventBus)

	modules := []apphttp.Module{
		authModule,
		catalogModule,
		professionalsModule,
		requestsModule,
		statsModule,
		auditModule,
	}

	// Export triggers enqueue onto the scheduler queue; generation happens
	// in the worker process.
	if cfg.RedisURL != "" {
		exportClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer exportClient.Close()
		modules = append(modules, exports.NewModule(exportClient))
	} else {
		log.Warn("REDIS_URL not configured; export endpoints disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
