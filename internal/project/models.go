package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/lacasadark/casadark-core/internal/export"
)

type Project struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	FPS        int       `json:"fps"`
	SceneCount int       `json:"scene_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const (
	JobTypeExport = "export"

	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	ProjectID  string          `json:"project_id,omitempty"`
	Format     export.Format   `json:"format,omitempty"`
	Settings   export.Settings `json:"settings"`
	OutputPath string          `json:"output_path,omitempty"`
	Progress   int             `json:"progress"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (j *Job) Finished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewID() string {
	return uuid.NewString()
}
