// Package scheduler runs periodic maintenance tasks on robfig/cron.
package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zerovacancy/zerovacancy/pkg/logger"
)

// taskTimeout bounds a single task run.
const taskTimeout = 10 * time.Minute

// TaskFunc is the function signature for scheduled tasks
type TaskFunc func(ctx context.Context) error

// Scheduler manages named tasks on cron expressions or fixed intervals.
type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	tasks   map[string]cron.EntryID
	mu      sync.RWMutex
	running bool
}

// NewScheduler creates a scheduler using the standard five-field cron syntax
// plus descriptors such as "@every 10m" and "@daily".
func NewScheduler(log *slog.Logger) *Scheduler {
	log = log.With(logger.Scope("scheduler"))
	return &Scheduler{
		cron:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{log}))),
		log:   log,
		tasks: make(map[string]cron.EntryID),
	}
}

// Start begins the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.cron.Start()
	s.running = true
	s.log.Info("scheduler started", slog.Int("tasks", len(s.tasks)))
	return nil
}

// Stop waits for running tasks or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	select {
	case <-s.cron.Stop().Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}

	s.running = false
	return nil
}

// AddCronTask schedules task on a cron expression, replacing any task of the
// same name.
func (s *Scheduler) AddCronTask(name, schedule string, task TaskFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(name)
	id, err := s.cron.AddFunc(schedule, func() { s.runTask(name, task) })
	if err != nil {
		return err
	}
	s.tasks[name] = id
	s.log.Info("added cron task", slog.String("name", name), slog.String("schedule", schedule))
	return nil
}

// AddIntervalTask schedules task every interval.
func (s *Scheduler) AddIntervalTask(name string, interval time.Duration, task TaskFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(name)
	id, err := s.cron.AddFunc("@every "+interval.String(), func() { s.runTask(name, task) })
	if err != nil {
		return err
	}
	s.tasks[name] = id
	s.log.Info("added interval task", slog.String("name", name), slog.Duration("interval", interval))
	return nil
}

// RemoveTask removes a scheduled task
func (s *Scheduler) RemoveTask(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeLocked(name) {
		s.log.Info("removed task", slog.String("name", name))
	}
}

func (s *Scheduler) removeLocked(name string) bool {
	id, ok := s.tasks[name]
	if ok {
		s.cron.Remove(id)
		delete(s.tasks, name)
	}
	return ok
}

// RunNow runs a registered task synchronously, outside its schedule.
func (s *Scheduler) RunNow(name string) bool {
	s.mu.RLock()
	id, ok := s.tasks[name]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	s.cron.Entry(id).WrappedJob.Run()
	return true
}

func (s *Scheduler) runTask(name string, task TaskFunc) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	if err := task(ctx); err != nil {
		taskRuns.WithLabelValues(name, "error").Inc()
		s.log.Error("scheduled task failed",
			slog.String("name", name),
			logger.Error(err),
			slog.Duration("duration", time.Since(start)))
		return
	}

	taskRuns.WithLabelValues(name, "ok").Inc()
	s.log.Debug("scheduled task completed",
		slog.String("name", name),
		slog.Duration("duration", time.Since(start)))
}

// ListTasks returns the names of all scheduled tasks, sorted.
func (s *Scheduler) ListTasks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TaskInfo describes a scheduled task.
type TaskInfo struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
	PrevRun time.Time `json:"prev_run,omitempty"`
}

// GetTaskInfo returns run times for every task, sorted by name.
func (s *Scheduler) GetTaskInfo() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := make([]TaskInfo, 0, len(s.tasks))
	for name, id := range s.tasks {
		e := s.cron.Entry(id)
		info = append(info, TaskInfo{Name: name, NextRun: e.Next, PrevRun: e.Prev})
	}
	sort.Slice(info, func(i, j int) bool { return info[i].Name < info[j].Name })
	return info
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, logger.Error(err))...)
}
