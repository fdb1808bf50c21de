package email

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/zerovacancy/zerovacancy/pkg/logger"
)

// maxRetryDelay caps the exponential backoff.
const maxRetryDelay = time.Hour

// maxErrorLength bounds last_error.
const maxErrorLength = 1000

// Queue is what the worker needs from the job store.
type Queue interface {
	Dequeue(ctx context.Context, batchSize int) ([]*Job, error)
	MarkSent(ctx context.Context, id, messageID string) error
	MarkFailed(ctx context.Context, id string, jobErr error) error
	RecoverStaleJobs(ctx context.Context, olderThan time.Duration) (int, error)
}

// JobsService is the email_jobs table.
type JobsService struct {
	db  bun.IDB
	log *slog.Logger
	cfg *Config
}

// NewJobsService creates a new email jobs service
func NewJobsService(db bun.IDB, log *slog.Logger, cfg *Config) *JobsService {
	return &JobsService{
		db:  db,
		log: log.With(logger.Scope("email.jobs")),
		cfg: cfg,
	}
}

// EnqueueOptions describes a new job.
type EnqueueOptions struct {
	TemplateName string
	ToEmail      string
	ToName       *string
	Subject      string
	TemplateData map[string]any
	SourceType   *string
	SourceID     *string
	MaxAttempts  int
}

// Enqueue inserts a pending job that is due immediately. next_retry_at is set
// from the database clock so Dequeue compares like with like.
func (s *JobsService) Enqueue(ctx context.Context, opts EnqueueOptions) (*Job, error) {
	if opts.ToEmail == "" || opts.TemplateName == "" {
		return nil, errors.New("enqueue email job: recipient and template are required")
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = s.cfg.MaxAttempts
	}

	data := opts.TemplateData
	if data == nil {
		data = map[string]any{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal template data: %w", err)
	}

	job := &Job{}
	err = s.db.NewRaw(`INSERT INTO email_jobs (
		template_name, to_email, to_name, subject, template_data,
		status, attempts, max_attempts, source_type, source_id, next_retry_at
	) VALUES (?, ?, ?, ?, ?, 'pending', 0, ?, ?, ?, now())
	RETURNING *`,
		opts.TemplateName,
		opts.ToEmail,
		opts.ToName,
		opts.Subject,
		string(dataJSON),
		maxAttempts,
		opts.SourceType,
		opts.SourceID,
	).Scan(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("enqueue email job: %w", err)
	}

	s.log.Debug("enqueued email job",
		slog.String("job_id", job.ID),
		slog.String("template", job.TemplateName))

	return job, nil
}

// Dequeue claims up to batchSize due jobs. FOR UPDATE SKIP LOCKED lets
// several workers poll the same table.
func (s *JobsService) Dequeue(ctx context.Context, batchSize int) ([]*Job, error) {
	if batchSize <= 0 {
		batchSize = s.cfg.BatchSize
	}

	var jobs []*Job
	err := s.db.NewRaw(`WITH cte AS (
		SELECT id FROM email_jobs
		WHERE status = 'pending'
			AND (next_retry_at IS NULL OR next_retry_at <= now())
		ORDER BY created_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT ?
	)
	UPDATE email_jobs j
	SET status = 'processing', attempts = attempts + 1
	FROM cte WHERE j.id = cte.id
	RETURNING j.*`, batchSize).Scan(ctx, &jobs)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dequeue email jobs: %w", err)
	}

	return jobs, nil
}

// MarkSent records a successful delivery.
func (s *JobsService) MarkSent(ctx context.Context, id, messageID string) error {
	_, err := s.db.NewUpdate().
		Model((*Job)(nil)).
		Set("status = ?", JobStatusSent).
		Set("mailgun_message_id = ?", messageID).
		Set("processed_at = now()").
		Set("last_error = NULL").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

// MarkFailed requeues the job with backoff, or dead-letters it once
// max_attempts is reached.
func (s *JobsService) MarkFailed(ctx context.Context, id string, jobErr error) error {
	job := &Job{}
	err := s.db.NewSelect().
		Model(job).
		Column("id", "attempts", "max_attempts").
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		s.log.Warn("email job vanished before it could be marked failed", slog.String("job_id", id))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load job for mark failed: %w", err)
	}

	msg := truncateError(jobErr.Error())

	if job.Attempts < job.MaxAttempts {
		delay := RetryDelay(s.cfg.RetryBase, job.Attempts)
		_, err = s.db.NewRaw(`UPDATE email_jobs
			SET status = 'pending',
				last_error = ?,
				next_retry_at = now() + make_interval(secs => ?)
			WHERE id = ?`,
			msg, int64(delay/time.Second), id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("requeue failed job: %w", err)
		}

		s.log.Warn("email job failed, will retry",
			slog.String("job_id", id),
			slog.Int("attempt", job.Attempts),
			slog.Int("max_attempts", job.MaxAttempts),
			slog.Duration("retry_in", delay),
			slog.String("error", msg))
		return nil
	}

	_, err = s.db.NewUpdate().
		Model((*Job)(nil)).
		Set("status = ?", JobStatusDeadLetter).
		Set("last_error = ?", msg).
		Set("processed_at = now()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark dead letter: %w", err)
	}

	s.log.Error("email job moved to dead letter",
		slog.String("job_id", id),
		slog.Int("attempts", job.Attempts),
		slog.String("error", msg))
	return nil
}

// RecoverStaleJobs returns jobs stuck in processing, typically after a
// crash mid-batch, to the pending state.
func (s *JobsService) RecoverStaleJobs(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		olderThan = 10 * time.Minute
	}

	res, err := s.db.NewRaw(`UPDATE email_jobs
		SET status = 'pending', next_retry_at = now()
		WHERE status = 'processing'
			AND created_at < now() - make_interval(secs => ?)`,
		int64(olderThan/time.Second)).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("recover stale jobs: %w", err)
	}

	n, _ := res.RowsAffected()
	if n > 0 {
		s.log.Warn("recovered stale email jobs",
			slog.Int64("count", n),
			slog.Duration("older_than", olderThan))
	}
	return int(n), nil
}

// PruneSent deletes sent jobs processed before the retention window.
// Dead letters are kept for inspection.
func (s *JobsService) PruneSent(ctx context.Context, retention time.Duration) (int, error) {
	res, err := s.db.NewDelete().
		Model((*Job)(nil)).
		Where("status = ?", JobStatusSent).
		Where("processed_at < ?", time.Now().Add(-retention)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune sent jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Stats counts jobs per status.
func (s *JobsService) Stats(ctx context.Context) (*QueueStats, error) {
	stats := &QueueStats{}
	err := s.db.NewRaw(`SELECT
		COUNT(*) FILTER (WHERE status = 'pending'),
		COUNT(*) FILTER (WHERE status = 'processing'),
		COUNT(*) FILTER (WHERE status = 'sent'),
		COUNT(*) FILTER (WHERE status = 'dead_letter')
	FROM email_jobs`).Scan(ctx, &stats.Pending, &stats.Processing, &stats.Sent, &stats.DeadLetter)
	if err != nil {
		return nil, fmt.Errorf("email queue stats: %w", err)
	}
	return stats, nil
}

// RetryDelay is base * attempts², capped at an hour.
func RetryDelay(base time.Duration, attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := base * time.Duration(attempts*attempts)
	if d > maxRetryDelay || d < 0 {
		return maxRetryDelay
	}
	return d
}

func truncateError(msg string) string {
	if len(msg) > maxErrorLength {
		return msg[:maxErrorLength]
	}
	return msg
}
