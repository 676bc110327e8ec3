package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/abhishek622/interviewflow/internal/metrics"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderStore is the slice of the interview store the reminder job reads
// and marks.
type ReminderStore interface {
	DueForReminder(ctx context.Context, from, to time.Time) ([]model.Interview, error)
	MarkReminded(ctx context.Context, interviewID uuid.UUID, at time.Time) error
}

type Notifier interface {
	NotifyInterviewEvent(ctx context.Context, event model.InterviewEvent) error
}

type ReminderConfig struct {
	Enabled  bool
	Schedule string        // cron spec, e.g. "*/5 * * * *"
	LeadTime time.Duration // how far ahead of the start a reminder goes out
	Timeout  time.Duration // per run
}

// ReminderJob publishes one reminder event per scheduled interview starting
// within the lead time.
type ReminderJob struct {
	store    ReminderStore
	notifier Notifier
	cfg      ReminderConfig
	logger   *zap.Logger
	metrics  *metrics.Domain
	clock    func() time.Time
	cron     *cron.Cron
}

func NewReminderJob(store ReminderStore, notifier Notifier, cfg ReminderConfig, logger *zap.Logger, m *metrics.Domain) *ReminderJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	return &ReminderJob{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		clock:    time.Now,
		cron:     cron.New(),
	}
}

// Start registers the schedule and starts the cron runner. It is a no-op
// when reminders are disabled.
func (j *ReminderJob) Start() error {
	if !j.cfg.Enabled {
		j.logger.Info("interview reminders disabled")
		return nil
	}

	_, err := j.cron.AddFunc(j.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.cfg.Timeout)
		defer cancel()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Error("reminder run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}

	j.cron.Start()
	j.logger.Info("interview reminders started",
		zap.String("schedule", j.cfg.Schedule),
		zap.Duration("lead_time", j.cfg.LeadTime))
	return nil
}

// Stop halts the runner and waits for an in-flight run to finish or ctx to
// expire.
func (j *ReminderJob) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		j.logger.Warn("reminder job did not stop before deadline")
	}
}

// RunOnce sends reminders for every due interview and returns how many were
// published. An interview whose publish fails is left unmarked so the next
// run retries it.
func (j *ReminderJob) RunOnce(ctx context.Context) (int, error) {
	now := j.clock().UTC()
	due, err := j.store.DueForReminder(ctx, now, now.Add(j.cfg.LeadTime))
	if err != nil {
		return 0, fmt.Errorf("list due interviews: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	sent := 0
	for k := range due {
		i := &due[k]
		event := model.NewInterviewEvent(model.EventReminder, i, nil, now)
		if err := j.notifier.NotifyInterviewEvent(ctx, event); err != nil {
			j.metrics.NotifyFailed(string(model.EventReminder))
			j.logger.Warn("publish reminder",
				zap.String("interview_id", i.InterviewID.String()), zap.Error(err))
			continue
		}
		if err := j.store.MarkReminded(ctx, i.InterviewID, now); err != nil {
			return sent, fmt.Errorf("mark interview %s reminded: %w", i.InterviewID, err)
		}
		j.metrics.ReminderSent()
		sent++
	}

	j.logger.Info("interview reminders sent", zap.Int("due", len(due)), zap.Int("sent", sent))
	return sent, nil
}
