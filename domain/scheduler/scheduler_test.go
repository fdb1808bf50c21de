package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerovacancy/zerovacancy/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeJobs struct {
	recovered   atomic.Int32
	pruned      atomic.Int32
	gotStale    time.Duration
	gotRetained time.Duration
	err         error
}

func (f *fakeJobs) RecoverStaleJobs(_ context.Context, olderThan time.Duration) (int, error) {
	f.recovered.Add(1)
	f.gotStale = olderThan
	return 2, f.err
}

func (f *fakeJobs) PruneSent(_ context.Context, retention time.Duration) (int, error) {
	f.pruned.Add(1)
	f.gotRetained = retention
	return 0, f.err
}

func TestScheduler_AddAndRemove(t *testing.T) {
	s := NewScheduler(testLogger())
	assert.False(t, s.IsRunning())
	assert.Empty(t, s.ListTasks())

	noop := func(context.Context) error { return nil }
	require.NoError(t, s.AddIntervalTask("b", time.Minute, noop))
	require.NoError(t, s.AddCronTask("a", "0 3 * * *", noop))
	require.NoError(t, s.AddIntervalTask("b", time.Hour, noop))

	assert.Equal(t, []string{"a", "b"}, s.ListTasks())

	s.RemoveTask("a")
	s.RemoveTask("missing")
	assert.Equal(t, []string{"b"}, s.ListTasks())
}

func TestScheduler_InvalidCron(t *testing.T) {
	s := NewScheduler(testLogger())
	err := s.AddCronTask("bad", "not a schedule", func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Empty(t, s.ListTasks())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(testLogger())
	require.NoError(t, s.AddIntervalTask("tick", time.Hour, func(context.Context) error { return nil }))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	info := s.GetTaskInfo()
	require.Len(t, info, 1)
	assert.Equal(t, "tick", info[0].Name)
	assert.WithinDuration(t, time.Now().Add(time.Hour), info[0].NextRun, time.Minute)

	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(testLogger())

	var runs atomic.Int32
	require.NoError(t, s.AddIntervalTask("count", time.Hour, func(context.Context) error {
		runs.Add(1)
		return errors.New("logged, not returned")
	}))

	assert.True(t, s.RunNow("count"))
	assert.False(t, s.RunNow("missing"))
	assert.Equal(t, int32(1), runs.Load())
}

func TestRegisterEmailTasks(t *testing.T) {
	cfg := config.SchedulerConfig{
		Enabled:               true,
		EmailRecoveryInterval: 10 * time.Minute,
		EmailStaleMinutes:     15,
		EmailPruneInterval:    24 * time.Hour,
		EmailRetentionDays:    7,
	}
	s := NewScheduler(testLogger())
	jobs := &fakeJobs{}

	require.NoError(t, registerEmailTasks(s, jobs, cfg, testLogger()))
	assert.Equal(t, []string{TaskEmailPrune, TaskEmailRecovery}, s.ListTasks())

	require.True(t, s.RunNow(TaskEmailRecovery))
	require.True(t, s.RunNow(TaskEmailPrune))
	assert.Equal(t, int32(1), jobs.recovered.Load())
	assert.Equal(t, int32(1), jobs.pruned.Load())
	assert.Equal(t, 15*time.Minute, jobs.gotStale)
	assert.Equal(t, 7*24*time.Hour, jobs.gotRetained)
}

func TestRegisterEmailTasks_CronOverride(t *testing.T) {
	cfg := config.SchedulerConfig{
		EmailRecoveryInterval: time.Minute,
		EmailPruneSchedule:    "bogus",
	}
	err := registerEmailTasks(NewScheduler(testLogger()), &fakeJobs{}, cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), TaskEmailPrune)
}

func TestRegisterTasks_SkipsWithoutDatabase(t *testing.T) {
	s := NewScheduler(testLogger())
	cfg := &config.Config{Scheduler: config.SchedulerConfig{Enabled: true}}

	require.NoError(t, RegisterTasks(TaskParams{Scheduler: s, Config: cfg, Log: testLogger()}))
	assert.Empty(t, s.ListTasks())
}

func TestTaskDefaults(t *testing.T) {
	assert.Equal(t, 10*time.Minute, NewEmailRecoveryTask(&fakeJobs{}, testLogger(), 0).staleness)
	assert.Equal(t, 30*24*time.Hour, NewEmailPruneTask(&fakeJobs{}, testLogger(), -1).retention)

	jobs := &fakeJobs{err: errors.New("boom")}
	assert.Error(t, NewEmailRecoveryTask(jobs, testLogger(), 5).Run(context.Background()))
	assert.Error(t, NewEmailPruneTask(jobs, testLogger(), 5).Run(context.Background()))
}
