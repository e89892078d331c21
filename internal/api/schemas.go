package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/lacasadark/casadark-core/internal/export"
	"github.com/lacasadark/casadark-core/internal/project"
	"github.com/lacasadark/casadark-core/internal/scene"
	"github.com/lacasadark/casadark-core/internal/subtitle"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	State         string       `json:"state"`
	LastError     string       `json:"last_error,omitempty"`
	ProjectsCount int          `json:"projects_count"`
	JobsRunning   int          `json:"jobs_running"`
	JobsPending   int          `json:"jobs_pending"`
	ActiveJob     *JobResponse `json:"active_job,omitempty"`
}

type RunnerResponse struct {
	Paused bool `json:"paused"`
}

// RenderRequest is the body of the stateless render endpoints. Pointer
// fields distinguish "not sent" from an explicit zero.
type RenderRequest struct {
	Scenes           []scene.Scene `json:"scenes"`
	MaxCharsPerBlock int           `json:"max_chars_per_block,omitempty"`
	GapBetweenScenes *float64      `json:"gap_between_scenes,omitempty"`
	Title            string        `json:"title,omitempty"`
	FPS              int           `json:"fps,omitempty"`
	DropFrame        bool          `json:"drop_frame,omitempty"`
	Transitions      bool          `json:"transitions,omitempty"`
	TransitionFrames int           `json:"transition_frames,omitempty"`
}

// Settings overlays the request knobs on defaults.
func (r RenderRequest) Settings(defaults export.Settings) export.Settings {
	s := defaults
	if r.MaxCharsPerBlock > 0 {
		s.Narration.MaxCharsPerBlock = r.MaxCharsPerBlock
	}
	if r.GapBetweenScenes != nil {
		s.Narration.GapBetweenScenes = *r.GapBetweenScenes
	}
	if r.Title != "" {
		s.Title = r.Title
	}
	if r.FPS > 0 {
		s.FPS = r.FPS
	}
	s.DropFrame = r.DropFrame
	if r.TransitionFrames > 0 {
		s.TransitionFrames = r.TransitionFrames
	}
	return s
}

type ValidateSRTRequest struct {
	SRT              string `json:"srt"`
	MaxCharsPerBlock int    `json:"max_chars_per_block,omitempty"`
}

type ValidateSRTResponse struct {
	Valid            bool `json:"valid"`
	BlockCount       int  `json:"block_count"`
	MaxCharsPerBlock int  `json:"max_chars_per_block"`
}

type CreateProjectRequest struct {
	Title string `json:"title"`
	FPS   int    `json:"fps,omitempty"`
}

type ProjectResponse struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	FPS        int           `json:"fps"`
	SceneCount int           `json:"scene_count"`
	Scenes     []scene.Scene `json:"scenes,omitempty"`
	CreatedAt  string        `json:"created_at"`
	UpdatedAt  string        `json:"updated_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type ReplaceScenesRequest struct {
	Scenes []scene.Scene `json:"scenes"`
}

type ReplaceScenesResponse struct {
	SceneCount      int     `json:"scene_count"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type ExportRequest struct {
	Format string `json:"format"`
}

type ExportResponse struct {
	JobID  string `json:"job_id"`
	Format string `json:"format"`
}

type JobResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	ProjectID  string `json:"project_id,omitempty"`
	Format     string `json:"format,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	Progress   int    `json:"progress"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ProjectToResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:         p.ID,
		Title:      p.Title,
		FPS:        p.FPS,
		SceneCount: p.SceneCount,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
	}
}

func JobToResponse(j *project.Job) JobResponse {
	return JobResponse{
		ID:         j.ID,
		Type:       j.Type,
		Status:     j.Status,
		ProjectID:  j.ProjectID,
		Format:     string(j.Format),
		OutputPath: j.OutputPath,
		Progress:   j.Progress,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  j.UpdatedAt.Format(time.RFC3339),
	}
}

// writeServiceError maps domain errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	var sceneErr *scene.SceneError
	switch {
	case errors.Is(err, project.ErrProjectNotFound), errors.Is(err, project.ErrJobNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, project.ErrInvalidTitle), errors.Is(err, project.ErrInvalidFPS):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.As(err, &sceneErr), errors.Is(err, scene.ErrNoScenes):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "INVALID_SCENES")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

func defaultMaxChars(n int) int {
	if n > 0 {
		return n
	}
	return subtitle.DefaultMaxCharsPerBlock
}
