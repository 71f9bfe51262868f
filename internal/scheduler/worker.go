package scheduler

import (
	"context"
	"fmt"

	"github.com/vagadeeshwar/household-services-sub000/internal/email"
	"github.com/vagadeeshwar/household-services-sub000/internal/exports"
	prorepo "github.com/vagadeeshwar/household-services-sub000/internal/professionals/repository"
	requestsrepo "github.com/vagadeeshwar/household-services-sub000/internal/requests/repository"
	"github.com/vagadeeshwar/household-services-sub000/platform/config"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

// reminderFanout caps concurrent reminder emails per run.
const reminderFanout = 8

// Worker processes background tasks: the daily pending-request reminder
// fan-out and on-demand service report exports.
type Worker struct {
	server        *asynq.Server
	mux           *asynq.ServeMux
	professionals *prorepo.Repository
	requests      *requestsrepo.Repository
	generator     *exports.Generator
	sender        email.Sender
	log           *logger.Logger
}

// NewWorker creates the asynq worker and registers its task handlers.
func NewWorker(
	cfg config.SchedulerConfig,
	professionals *prorepo.Repository,
	requests *requestsrepo.Repository,
	generator *exports.Generator,
	sender email.Sender,
	log *logger.Logger,
) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:        server,
		mux:           mux,
		professionals: professionals,
		requests:      requests,
		generator:     generator,
		sender:        sender,
		log:           log,
	}

	mux.HandleFunc(TaskDailyReminder, w.handleDailyReminder)
	mux.HandleFunc(TaskServiceReportExport, w.handleServiceReportExport)

	return w, nil
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleDailyReminder emails every verified professional who has requests
// waiting in their service category.
func (w *Worker) handleDailyReminder(ctx context.Context, task *asynq.Task) error {
	professionals, err := w.professionals.ListAll(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reminderFanout)

	reminded := 0
	for _, pro := range professionals {
		if !pro.Verified || !pro.Active {
			continue
		}
		pro := pro
		reminded++
		g.Go(func() error {
			pending, err := w.requests.ListByProfessional(gctx, pro.ID, requestsrepo.ViewAvailable)
			if err != nil {
				return fmt.Errorf("reminder for %s: %w", pro.ID, err)
			}
			if len(pending) == 0 {
				return nil
			}
			return w.sender.SendDailyReminderEmail(gctx, pro.Email, pro.FullName, len(pending))
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	w.log.Info("daily reminder fan-out finished", "professionals", reminded)
	return nil
}

func (w *Worker) handleServiceReportExport(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseServiceReportExportPayload(task)
	if err != nil {
		return err
	}

	professionalID, err := uuid.Parse(payload.ProfessionalID)
	if err != nil {
		return err
	}

	_, _, err = w.generator.Generate(ctx, professionalID)
	return err
}
