package sweep

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/aatumaykin/sweepbot/internal/chat"
	"github.com/aatumaykin/sweepbot/internal/config"
	"github.com/aatumaykin/sweepbot/internal/logger"
)

// Scheduler runs configured periodic sweeps. Each job is a standard
// 5-field cron spec bound to one chat. A tick that lands while the
// chat's previous run is still active is skipped, not queued.
type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger
}

// NewScheduler builds a scheduler from the configured jobs. Specs were
// already validated at config load; a parse failure here is still
// returned rather than ignored.
func NewScheduler(svc *Service, jobs []config.ScheduleJob, log *logger.Logger) (*Scheduler, error) {
	c := cron.New()

	for _, job := range jobs {
		job := job
		_, err := c.AddFunc(job.Cron, func() {
			runScheduled(svc, job.ChatID, log)
		})
		if err != nil {
			return nil, fmt.Errorf("invalid cron spec %q for chat %d: %w", job.Cron, job.ChatID, err)
		}
		log.Info("scheduled periodic sweep",
			logger.Field{Key: "chat_id", Value: job.ChatID},
			logger.Field{Key: "cron", Value: job.Cron})
	}

	return &Scheduler{cron: c, logger: log}, nil
}

// Start begins firing jobs in their own goroutines.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for in-flight jobs to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func runScheduled(svc *Service, chatID int64, log *logger.Logger) {
	report, err := svc.Run(context.Background(), chatID)
	if err != nil {
		if errors.Is(err, chat.ErrRunInProgress) {
			log.Info("scheduled sweep skipped, run already active",
				logger.Field{Key: "chat_id", Value: chatID})
			return
		}
		log.Error("scheduled sweep failed to start", err,
			logger.Field{Key: "chat_id", Value: chatID})
		return
	}

	log.Info("scheduled sweep finished",
		logger.Field{Key: "chat_id", Value: chatID},
		logger.Field{Key: "state", Value: report.State.String()},
		logger.Field{Key: "kept", Value: report.Counters.Kept},
		logger.Field{Key: "deleted", Value: report.Counters.Deleted},
		logger.Field{Key: "errored", Value: report.Counters.Errored})
}
