// Package project stores narration projects and their scene lists, and runs
// export jobs that render them to caption and edit-list files.
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lacasadark/casadark-core/internal/export"
	"github.com/lacasadark/casadark-core/internal/logging"
	"github.com/lacasadark/casadark-core/internal/scene"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrJobNotFound     = errors.New("job not found")
	ErrInvalidTitle    = errors.New("project title is required")
	ErrInvalidFPS      = errors.New("fps must be positive")
)

const maxTitleLen = 200

type ProjectService interface {
	CreateProject(ctx context.Context, title string, fps int) (*Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	DeleteProject(ctx context.Context, id string) error
	ReplaceScenes(ctx context.Context, projectID string, scenes []scene.Scene) error
	GetScenes(ctx context.Context, projectID string) ([]scene.Scene, error)
	Render(ctx context.Context, projectID string, format export.Format) (string, error)
	RequestExport(ctx context.Context, projectID string, format export.Format) (*Job, error)
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	ExecuteExport(ctx context.Context, job *Job) (string, error)
}

type Service struct {
	repo       Repository
	exportsDir string
	defaults   export.Settings
	logger     *slog.Logger
}

// NewService builds a Service. defaults supplies the generator settings for
// every render; the project's own title and fps override the EDL fields.
func NewService(repo Repository, exportsDir string, defaults export.Settings, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, exportsDir: exportsDir, defaults: defaults, logger: logger}
}

func (s *Service) projectLog(projectID string) *slog.Logger {
	return logging.WithProjectID(s.logger, projectID)
}

func (s *Service) CreateProject(ctx context.Context, title string, fps int) (*Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if len([]rune(title)) > maxTitleLen {
		return nil, fmt.Errorf("%w: at most %d characters", ErrInvalidTitle, maxTitleLen)
	}
	if fps < 0 {
		return nil, ErrInvalidFPS
	}
	if fps == 0 {
		fps = s.defaults.FPS
	}

	now := time.Now()
	p := &Project{
		ID:        NewID(),
		Title:     title,
		FPS:       fps,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.projectLog(p.ID).Info("project created", "title", title)
	return p, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (*Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

func (s *Service) ListProjects(ctx context.Context) ([]*Project, error) {
	return s.repo.ListProjects(ctx)
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	s.projectLog(id).Info("project deleted")
	return nil
}

// ReplaceScenes validates the list for every output format and stores it as
// the project's new scene list. An empty list clears the project.
func (s *Service) ReplaceScenes(ctx context.Context, projectID string, scenes []scene.Scene) error {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return err
	}
	if len(scenes) > 0 {
		if err := scene.ValidateForCaptions(scenes); err != nil {
			return err
		}
		if err := scene.ValidateForEDL(scenes); err != nil {
			return err
		}
	}

	if err := s.repo.ReplaceScenes(ctx, projectID, scenes); err != nil {
		return fmt.Errorf("replace scenes: %w", err)
	}
	s.projectLog(projectID).Info("scenes replaced", "count", len(scenes))
	return nil
}

func (s *Service) GetScenes(ctx context.Context, projectID string) ([]scene.Scene, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.GetScenes(ctx, projectID)
}

// Settings returns the render settings used for a project.
func (s *Service) Settings(p *Project) export.Settings {
	settings := s.defaults
	settings.Title = p.Title
	if p.FPS > 0 {
		settings.FPS = p.FPS
	}
	return settings
}

// Render loads the project's scenes and renders them in format.
func (s *Service) Render(ctx context.Context, projectID string, format export.Format) (string, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	scenes, err := s.repo.GetScenes(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("load scenes: %w", err)
	}
	return export.Render(format, scenes, s.Settings(p))
}

// RequestExport queues a pending export job for the runner.
func (s *Service) RequestExport(ctx context.Context, projectID string, format export.Format) (*Job, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := export.ParseFormat(string(format)); err != nil {
		return nil, err
	}

	now := time.Now()
	job := &Job{
		ID:        NewID(),
		Type:      JobTypeExport,
		Status:    JobStatusPending,
		ProjectID: p.ID,
		Format:    format,
		Settings:  s.Settings(p),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.projectLog(p.ID).Info("export job created", "job_id", job.ID, "format", format)
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	j, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, ErrJobNotFound
	}
	return j, nil
}

func (s *Service) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	return s.repo.ListJobs(ctx, limit)
}

// ExecuteExport renders the job's project with the settings captured when the
// job was queued and writes the result under the exports directory. The job
// ends completed or failed; terminal status writes outlive ctx cancellation.
func (s *Service) ExecuteExport(ctx context.Context, job *Job) (string, error) {
	log := logging.WithJobID(s.projectLog(job.ProjectID), job.ID)
	final := context.WithoutCancel(ctx)

	fail := func(err error) (string, error) {
		if uerr := s.repo.UpdateJobStatus(final, job.ID, JobStatusFailed, err.Error()); uerr != nil {
			log.Error("failed to record export failure", "error", uerr)
			return "", errors.Join(err, fmt.Errorf("record failure: %w", uerr))
		}
		return "", err
	}
	progress := func(pct int) {
		if err := s.repo.UpdateJobProgress(ctx, job.ID, pct); err != nil {
			log.Warn("failed to record export progress", "progress", pct, "error", err)
		}
	}

	if err := s.repo.UpdateJobStatus(ctx, job.ID, JobStatusRunning, ""); err != nil {
		return fail(fmt.Errorf("mark running: %w", err))
	}
	log.Info("starting export", "format", job.Format)

	p, err := s.GetProject(ctx, job.ProjectID)
	if err != nil {
		return fail(err)
	}
	scenes, err := s.repo.GetScenes(ctx, p.ID)
	if err != nil {
		return fail(fmt.Errorf("load scenes: %w", err))
	}

	content, err := export.Render(job.Format, scenes, job.Settings)
	if err != nil {
		return fail(err)
	}
	progress(50)

	if err := ctx.Err(); err != nil {
		return fail(fmt.Errorf("cancelled: %w", err))
	}

	if err := os.MkdirAll(s.exportsDir, 0o755); err != nil {
		return fail(fmt.Errorf("create exports dir: %w", err))
	}
	path, err := export.WriteFile(s.exportsDir, p.Title, job.Format, content)
	if err != nil {
		return fail(fmt.Errorf("write export: %w", err))
	}
	if err := s.repo.SetJobOutput(final, job.ID, path); err != nil {
		os.Remove(path)
		return fail(fmt.Errorf("record output path: %w", err))
	}
	progress(100)
	if err := s.repo.UpdateJobStatus(final, job.ID, JobStatusCompleted, ""); err != nil {
		return fail(fmt.Errorf("mark completed: %w", err))
	}

	log.Info("export completed", "output_path", path, "bytes", len(content))
	return path, nil
}
