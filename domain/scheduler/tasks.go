package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/zerovacancy/zerovacancy/pkg/logger"
)

// StaleJobRecoverer resets jobs stuck in processing.
type StaleJobRecoverer interface {
	RecoverStaleJobs(ctx context.Context, olderThan time.Duration) (int, error)
}

// SentJobPruner deletes delivered jobs past retention.
type SentJobPruner interface {
	PruneSent(ctx context.Context, retention time.Duration) (int, error)
}

// EmailRecoveryTask returns email jobs abandoned by a crashed worker to the queue.
type EmailRecoveryTask struct {
	jobs      StaleJobRecoverer
	log       *slog.Logger
	staleness time.Duration
}

// NewEmailRecoveryTask creates the recovery task. Non-positive staleMinutes
// falls back to 10.
func NewEmailRecoveryTask(jobs StaleJobRecoverer, log *slog.Logger, staleMinutes int) *EmailRecoveryTask {
	if staleMinutes <= 0 {
		staleMinutes = 10
	}
	return &EmailRecoveryTask{
		jobs:      jobs,
		log:       log.With(logger.Scope("scheduler.email_recovery")),
		staleness: time.Duration(staleMinutes) * time.Minute,
	}
}

// Run executes the recovery.
func (t *EmailRecoveryTask) Run(ctx context.Context) error {
	n, err := t.jobs.RecoverStaleJobs(ctx, t.staleness)
	if err != nil {
		return err
	}
	if n > 0 {
		t.log.Warn("recovered stale email jobs", slog.Int("count", n))
	}
	return nil
}

// EmailPruneTask deletes sent email jobs older than the retention window.
type EmailPruneTask struct {
	jobs      SentJobPruner
	log       *slog.Logger
	retention time.Duration
}

// NewEmailPruneTask creates the prune task. Non-positive retentionDays falls
// back to 30.
func NewEmailPruneTask(jobs SentJobPruner, log *slog.Logger, retentionDays int) *EmailPruneTask {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &EmailPruneTask{
		jobs:      jobs,
		log:       log.With(logger.Scope("scheduler.email_prune")),
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Run executes the prune.
func (t *EmailPruneTask) Run(ctx context.Context) error {
	n, err := t.jobs.PruneSent(ctx, t.retention)
	if err != nil {
		return err
	}
	if n > 0 {
		t.log.Info("pruned sent email jobs", slog.Int("count", n))
	} else {
		t.log.Debug("no sent email jobs to prune")
	}
	return nil
}
