package project

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/lacasadark/casadark-core/internal/export"
	"github.com/lacasadark/casadark-core/internal/webhook"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []webhook.Event
	errs   []error
}

func (f *fakeNotifier) Notify(ctx context.Context, event webhook.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func (f *fakeNotifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func setupRunnerTest(t *testing.T, notifier webhook.Notifier) (*Runner, *Service, Repository) {
	t.Helper()
	svc, repo, _ := setupService(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRunner(svc, repo, notifier, logger), svc, repo
}

func TestRunner_ProcessExportJob(t *testing.T) {
	notifier := &fakeNotifier{}
	runner, svc, repo := setupRunnerTest(t, notifier)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, "Casa", 24)
	svc.ReplaceScenes(ctx, p.ID, testScenes())
	job, _ := svc.RequestExport(ctx, p.ID, export.FormatVTT)

	if !runner.processNextJob(ctx) {
		t.Fatal("processNextJob() found no job")
	}

	updated, _ := repo.GetJob(ctx, job.ID)
	if updated.Status != JobStatusCompleted {
		t.Errorf("job status = %s, want %s (error %q)", updated.Status, JobStatusCompleted, updated.Error)
	}
	if notifier.calls() != 1 {
		t.Fatalf("notifier called %d times, want 1", notifier.calls())
	}
	ev := notifier.events[0]
	if ev.Status != JobStatusCompleted || ev.OutputPath != updated.OutputPath || ev.Format != "vtt" {
		t.Errorf("unexpected event %+v", ev)
	}

	if runner.processNextJob(ctx) {
		t.Error("queue should be empty after the job ran")
	}
}

func TestRunner_ProcessExportJob_FailureNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	runner, svc, repo := setupRunnerTest(t, notifier)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, "Sem cenas", 24)
	job, _ := svc.RequestExport(ctx, p.ID, export.FormatSRT)

	runner.processNextJob(ctx)

	updated, _ := repo.GetJob(ctx, job.ID)
	if updated.Status != JobStatusFailed {
		t.Errorf("job status = %s, want %s", updated.Status, JobStatusFailed)
	}
	if updated.Error == "" {
		t.Error("failed job should record an error")
	}
	if notifier.calls() != 1 || notifier.events[0].Status != JobStatusFailed {
		t.Errorf("expected one failed event, got %+v", notifier.events)
	}
}

func TestRunner_UnknownJobType(t *testing.T) {
	runner, _, repo := setupRunnerTest(t, nil)
	ctx := context.Background()

	job := &Job{ID: NewID(), Type: "transcode", Status: JobStatusPending}
	if err := repo.CreateJob(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	runner.processNextJob(ctx)

	updated, _ := repo.GetJob(ctx, job.ID)
	if updated.Status != JobStatusFailed {
		t.Errorf("job status = %s, want failed", updated.Status)
	}
}

func TestRunner_NotifyStopsOnPermanentError(t *testing.T) {
	notifier := &fakeNotifier{errs: []error{&webhook.WebhookError{StatusCode: 404}}}
	runner, _, _ := setupRunnerTest(t, notifier)

	runner.notify(context.Background(), webhook.Event{JobID: "j"})
	if notifier.calls() != 1 {
		t.Errorf("notify attempts = %d, want 1", notifier.calls())
	}
}

func TestRunner_NotifyRetriesRetryableError(t *testing.T) {
	notifier := &fakeNotifier{errs: []error{&webhook.WebhookError{StatusCode: 503}}}
	runner, _, _ := setupRunnerTest(t, notifier)

	runner.notify(context.Background(), webhook.Event{JobID: "j"})
	if notifier.calls() != 2 {
		t.Errorf("notify attempts = %d, want 2", notifier.calls())
	}
}

func TestRunner_NotifyGivesUpWhenCancelled(t *testing.T) {
	notifier := &fakeNotifier{errs: []error{errors.New("connection refused"), errors.New("again")}}
	runner, _, _ := setupRunnerTest(t, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner.notify(ctx, webhook.Event{JobID: "j"})
	if notifier.calls() != 1 {
		t.Errorf("notify attempts = %d, want 1", notifier.calls())
	}
}

func TestRunner_PauseResume(t *testing.T) {
	runner, _, _ := setupRunnerTest(t, nil)
	if runner.IsPaused() {
		t.Fatal("runner should start unpaused")
	}
	runner.Pause()
	if !runner.IsPaused() {
		t.Fatal("Pause() did not pause")
	}
	runner.Resume()
	if runner.IsPaused() {
		t.Fatal("Resume() did not resume")
	}
}

func TestRunner_GetActiveJobCount(t *testing.T) {
	runner, svc, _ := setupRunnerTest(t, nil)
	ctx := context.Background()
	p, _ := svc.CreateProject(ctx, "Fila", 24)
	svc.RequestExport(ctx, p.ID, export.FormatSRT)
	svc.RequestExport(ctx, p.ID, export.FormatEDL)

	if got := runner.GetActiveJobCount(ctx); got != 2 {
		t.Errorf("GetActiveJobCount() = %d, want 2", got)
	}
}

func TestRunner_DrainEmptiesQueue(t *testing.T) {
	runner, svc, repo := setupRunnerTest(t, nil)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, "Casa", 24)
	svc.ReplaceScenes(ctx, p.ID, testScenes())
	for _, f := range []export.Format{export.FormatSRT, export.FormatVTT, export.FormatEDL} {
		if _, err := svc.RequestExport(ctx, p.ID, f); err != nil {
			t.Fatalf("RequestExport(%s) error = %v", f, err)
		}
	}

	runner.Pause()
	runner.drain(ctx)
	if pending, _ := repo.ListPendingJobs(ctx); len(pending) != 3 {
		t.Fatalf("paused drain ran jobs, %d left pending", len(pending))
	}

	runner.Resume()
	runner.drain(ctx)
	if pending, _ := repo.ListPendingJobs(ctx); len(pending) != 0 {
		t.Fatalf("%d jobs left pending after drain", len(pending))
	}
}
