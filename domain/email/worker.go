package email

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zerovacancy/zerovacancy/pkg/logger"
)

var jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "email_jobs_processed_total",
	Help: "Email jobs processed by the worker, by result (sent, failed)",
}, []string{"result"})

// staleAfter is how long a job may sit in processing before startup recovery
// returns it to the queue.
const staleAfter = 10 * time.Minute

// Worker polls the queue and delivers due jobs.
type Worker struct {
	queue     Queue
	sender    Sender
	templates *Templates
	cfg       *Config
	log       *slog.Logger

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewWorker creates a new email worker
func NewWorker(queue Queue, sender Sender, templates *Templates, cfg *Config, log *slog.Logger) *Worker {
	return &Worker{
		queue:     queue,
		sender:    sender,
		templates: templates,
		cfg:       cfg,
		log:       log.With(logger.Scope("email.worker")),
	}
}

// Start launches the polling loop. It is a no-op when email is disabled or
// the worker is already running.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	if !w.cfg.Enabled {
		w.log.Info("email worker not started, EMAIL_ENABLED=false")
		return nil
	}

	w.running = true
	w.stopCh = make(chan struct{})
	w.stoppedCh = make(chan struct{})

	w.log.Info("email worker starting",
		slog.Duration("poll_interval", w.cfg.PollInterval),
		slog.Int("batch_size", w.cfg.BatchSize))

	// The fx start context ends once startup completes; the loop runs on its own.
	go w.run(context.WithoutCancel(ctx))
	return nil
}

// Stop signals the loop and waits for the current batch or ctx, whichever ends first.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	stopped := w.stoppedCh
	w.mu.Unlock()

	select {
	case <-stopped:
		w.log.Info("email worker stopped")
	case <-ctx.Done():
		w.log.Warn("email worker stop timed out")
	}
	return nil
}

// IsRunning reports whether the polling loop is active.
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.stoppedCh)

	if n, err := w.queue.RecoverStaleJobs(ctx, staleAfter); err != nil {
		w.log.Warn("stale job recovery failed", logger.Error(err))
	} else if n > 0 {
		w.log.Info("recovered stale email jobs", slog.Int("count", n))
	}

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil {
				w.log.Warn("process batch failed", logger.Error(err))
			}
		}
	}
}

// ProcessBatch claims and delivers one batch, returning how many jobs were sent.
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	jobs, err := w.queue.Dequeue(ctx, w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			w.log.Warn("email job failed", slog.String("job_id", job.ID), logger.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

func (w *Worker) processJob(ctx context.Context, job *Job) error {
	start := time.Now()

	msg, err := w.render(job)
	if err != nil {
		return w.fail(ctx, job, err)
	}

	id, err := w.sender.Send(ctx, msg)
	if err != nil {
		return w.fail(ctx, job, err)
	}

	if err := w.queue.MarkSent(ctx, job.ID, id); err != nil {
		// Delivered but not recorded: the job will be sent again after recovery.
		w.log.Error("failed to mark job sent", slog.String("job_id", job.ID), logger.Error(err))
		return err
	}

	jobsProcessed.WithLabelValues("sent").Inc()
	w.log.Debug("email sent",
		slog.String("job_id", job.ID),
		slog.String("template", job.TemplateName),
		slog.String("message_id", id),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (w *Worker) fail(ctx context.Context, job *Job, cause error) error {
	jobsProcessed.WithLabelValues("failed").Inc()
	if err := w.queue.MarkFailed(ctx, job.ID, cause); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// render builds the message for job, falling back to a generic body when the
// named template is missing or fails.
func (w *Worker) render(job *Job) (Message, error) {
	ctx := make(TemplateContext, len(job.TemplateData)+3)
	for k, v := range job.TemplateData {
		ctx[k] = v
	}
	if _, ok := ctx["title"]; !ok {
		ctx["title"] = job.Subject
	}
	if _, ok := ctx["previewText"]; !ok {
		ctx["previewText"] = job.Subject
	}
	toName := ""
	if job.ToName != nil {
		toName = *job.ToName
		ctx["recipientName"] = toName
	}

	var (
		out *Rendered
		err error
	)
	if w.templates.Has(job.TemplateName) {
		out, err = w.templates.Render(job.TemplateName, ctx, DefaultLayout)
		if err != nil {
			w.log.Warn("template render failed, using fallback",
				slog.String("template", job.TemplateName), logger.Error(err))
		}
	} else {
		w.log.Debug("template not found, using fallback", slog.String("template", job.TemplateName))
	}
	if out == nil {
		out, err = w.templates.RenderFallback(ctx)
		if err != nil {
			return Message{}, err
		}
	}

	return Message{
		To:      job.ToEmail,
		ToName:  toName,
		Subject: job.Subject,
		HTML:    out.HTML,
		Text:    out.Text,
	}, nil
}
