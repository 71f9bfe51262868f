package scheduler

import (
	"context"

	"github.com/vagadeeshwar/household-services-sub000/platform/config"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/hibiken/asynq"
)

// dailyReminderCron fires the reminder fan-out at 18:00 every day.
const dailyReminderCron = "0 18 * * *"

// Cron enqueues periodic tasks onto the worker queue.
type Cron struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// NewCron creates the periodic task scheduler.
func NewCron(cfg config.SchedulerConfig, log *logger.Logger) (*Cron, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	scheduler := asynq.NewScheduler(opt, nil)
	if _, err := scheduler.Register(dailyReminderCron, NewDailyReminderTask(), asynq.Queue(queue)); err != nil {
		return nil, err
	}

	return &Cron{scheduler: scheduler, log: log}, nil
}

// Run starts the scheduler until the context is cancelled.
func (c *Cron) Run(ctx context.Context) {
	if c == nil || c.scheduler == nil {
		return
	}

	go func() {
		<-ctx.Done()
		c.scheduler.Shutdown()
	}()

	if err := c.scheduler.Run(); err != nil {
		c.log.Error("cron scheduler stopped", "error", err)
	}
}
