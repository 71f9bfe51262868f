package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditrepo "github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	catalogrepo "github.com/vagadeeshwar/household-services-sub000/internal/catalog/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/email"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	"github.com/vagadeeshwar/household-services-sub000/internal/exports"
	"github.com/vagadeeshwar/household-services-sub000/internal/notification"
	prorepo "github.com/vagadeeshwar/household-services-sub000/internal/professionals/repository"
	authrepo "github.com/vagadeeshwar/household-services-sub000/internal/auth/repository"
	requestsrepo "github.com/vagadeeshwar/household-services-sub000/internal/requests/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/scheduler"
	"github.com/vagadeeshwar/household-services-sub000/platform/config"
	"github.com/vagadeeshwar/household-services-sub000/platform/db"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	var sender email.Sender
	if cfg.EmailEnabled {
		sender = email.NewSMTPSender(cfg)
	} else {
		sender = email.NewNoopSender(log)
	}

	auditRepo := auditrepo.New(pool)
	catalogRepo := catalogrepo.New(pool)
	usersRepo := authrepo.New(pool)
	professionalsRepo := prorepo.New(pool)
	requestsRepo := requestsrepo.New(pool, auditRepo)

	// Export-ready events turn into emails with the CSV attached.
	notifier := notification.New(usersRepo, requestsRepo, catalogRepo, sender, log)
	notifier.Subscribe(eventBus)

	generator := exports.New(requestsRepo, catalogRepo, auditRepo, cfg.ExportDir, eventBus, log)

	cron, err := scheduler.NewCron(cfg, log)
	if err != nil {
		log.Error("failed to initialize cron scheduler", "error", err)
		panic("failed to initialize cron scheduler: " + err.Error())
	}
	go cron.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, professionalsRepo, requestsRepo, generator, sender, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
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
