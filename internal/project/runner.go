package project

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lacasadark/casadark-core/internal/logging"
	"github.com/lacasadark/casadark-core/internal/webhook"
)

const (
	notifyAttempts = 3
	notifyBackoff  = time.Second
	maxDrain       = 64
)

type Runner struct {
	service      *Service
	repo         Repository
	notifier     webhook.Notifier
	logger       *slog.Logger
	pollInterval time.Duration
	running      atomic.Bool
	paused       atomic.Bool
}

func NewRunner(service *Service, repo Repository, notifier webhook.Notifier, logger *slog.Logger) *Runner {
	return &Runner{
		service:      service,
		repo:         repo,
		notifier:     notifier,
		logger:       logger,
		pollInterval: 2 * time.Second,
	}
}

func (r *Runner) Start(ctx context.Context) {
	if r.running.Swap(true) {
		return
	}

	r.logger.Info("export runner started")

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("export runner stopping")
			r.running.Store(false)
			return
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

func (r *Runner) Pause() {
	r.paused.Store(true)
	r.logger.Info("export runner paused")
}

func (r *Runner) Resume() {
	r.paused.Store(false)
	r.logger.Info("export runner resumed")
}

func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

// drain works through up to maxDrain queued jobs in one tick. It stops early
// when the queue is empty, the runner is paused or ctx ends.
func (r *Runner) drain(ctx context.Context) {
	for i := 0; i < maxDrain && ctx.Err() == nil && !r.paused.Load(); i++ {
		if !r.processNextJob(ctx) {
			return
		}
	}
}

// processNextJob runs the oldest pending job, if any. It reports whether a
// job was picked up.
func (r *Runner) processNextJob(ctx context.Context) bool {
	jobs, err := r.repo.ListPendingJobs(ctx)
	if err != nil {
		r.logger.Error("failed to list pending jobs", "error", err)
		return false
	}

	if len(jobs) == 0 {
		return false
	}

	job := jobs[0]
	log := logging.WithJobID(r.logger, job.ID)
	log.Info("processing job", "type", job.Type, "format", job.Format)

	switch job.Type {
	case JobTypeExport:
		r.processExportJob(ctx, job, log)
	default:
		log.Warn("unknown job type", "type", job.Type)
		if err := r.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, "unknown job type"); err != nil {
			log.Error("failed to fail job", "error", err)
			return false
		}
	}
	return true
}

func (r *Runner) processExportJob(ctx context.Context, job *Job, log *slog.Logger) {
	event := webhook.Event{
		JobID:     job.ID,
		ProjectID: job.ProjectID,
		Format:    string(job.Format),
		Status:    JobStatusCompleted,
	}

	path, err := r.service.ExecuteExport(ctx, job)
	if err != nil {
		log.Error("export failed", "error", err)
		event.Status = JobStatusFailed
		event.Error = err.Error()
	}
	event.OutputPath = path
	event.FinishedAt = time.Now().UTC()

	r.notify(ctx, event)
}

// notify delivers event, retrying only errors the webhook marks retryable.
func (r *Runner) notify(ctx context.Context, event webhook.Event) {
	if r.notifier == nil {
		return
	}

	for attempt := 1; attempt <= notifyAttempts; attempt++ {
		err := r.notifier.Notify(ctx, event)
		if err == nil {
			return
		}

		var hookErr *webhook.WebhookError
		retryable := !errors.As(err, &hookErr) || hookErr.IsRetryable()
		r.logger.Warn("webhook notification failed",
			"job_id", event.JobID,
			"attempt", attempt,
			"retryable", retryable,
			"error", err,
		)
		if !retryable || attempt == notifyAttempts {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * notifyBackoff):
		}
	}
}

func (r *Runner) GetActiveJobCount(ctx context.Context) int {
	jobs, err := r.repo.ListJobs(ctx, 100)
	if err != nil {
		return 0
	}
	count := 0
	for _, j := range jobs {
		if j.Status == JobStatusRunning || j.Status == JobStatusPending {
			count++
		}
	}
	return count
}
