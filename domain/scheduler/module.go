package scheduler

import (
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/zerovacancy/zerovacancy/domain/email"
	"github.com/zerovacancy/zerovacancy/internal/config"
)

const (
	TaskEmailRecovery = "email_stale_recovery"
	TaskEmailPrune    = "email_prune_sent"
)

// Module provides scheduled task functionality
var Module = fx.Module("scheduler",
	fx.Provide(NewScheduler),
	fx.Invoke(
		RegisterTasks,
		RegisterSchedulerLifecycle,
	),
)

// TaskParams contains dependencies for creating scheduled tasks
type TaskParams struct {
	fx.In

	Scheduler *Scheduler
	Jobs      *email.JobsService
	Config    *config.Config
	Log       *slog.Logger
}

// RegisterTasks registers the email maintenance tasks. Nothing is scheduled
// without a database.
func RegisterTasks(p TaskParams) error {
	cfg := p.Config.Scheduler
	if !cfg.Enabled {
		p.Log.Info("scheduler disabled, skipping task registration")
		return nil
	}
	if !p.Config.Database.IsConfigured() {
		p.Log.Info("database not configured, skipping email maintenance tasks")
		return nil
	}
	return registerEmailTasks(p.Scheduler, p.Jobs, cfg, p.Log)
}

type emailJobs interface {
	StaleJobRecoverer
	SentJobPruner
}

func registerEmailTasks(s *Scheduler, jobs emailJobs, cfg config.SchedulerConfig, log *slog.Logger) error {
	recovery := NewEmailRecoveryTask(jobs, log, cfg.EmailStaleMinutes)
	if err := s.AddIntervalTask(TaskEmailRecovery, cfg.EmailRecoveryInterval, recovery.Run); err != nil {
		return fmt.Errorf("register %s: %w", TaskEmailRecovery, err)
	}

	prune := NewEmailPruneTask(jobs, log, cfg.EmailRetentionDays)
	var err error
	if cfg.EmailPruneSchedule != "" {
		err = s.AddCronTask(TaskEmailPrune, cfg.EmailPruneSchedule, prune.Run)
	} else {
		err = s.AddIntervalTask(TaskEmailPrune, cfg.EmailPruneInterval, prune.Run)
	}
	if err != nil {
		return fmt.Errorf("register %s: %w", TaskEmailPrune, err)
	}

	log.Info("registered scheduled tasks", slog.Any("tasks", s.ListTasks()))
	return nil
}

// RegisterSchedulerLifecycle registers the scheduler with fx lifecycle
func RegisterSchedulerLifecycle(lc fx.Lifecycle, s *Scheduler, cfg *config.Config) {
	if !cfg.Scheduler.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}
