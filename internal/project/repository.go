package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lacasadark/casadark-core/internal/db"
	"github.com/lacasadark/casadark-core/internal/export"
	"github.com/lacasadark/casadark-core/internal/scene"
)

type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	DeleteProject(ctx context.Context, id string) error

	ReplaceScenes(ctx context.Context, projectID string, scenes []scene.Scene) error
	GetScenes(ctx context.Context, projectID string) ([]scene.Scene, error)

	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	ListPendingJobs(ctx context.Context) ([]*Job, error)
	UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateJobProgress(ctx context.Context, id string, progress int) error
	SetJobOutput(ctx context.Context, id, outputPath string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(conn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: conn}
}

const projectColumns = `p.id, p.title, p.fps, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM scenes s WHERE s.project_id = p.id)`

func (r *SQLiteRepository) CreateProject(ctx context.Context, p *Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, title, fps, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.FPS, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	return err
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = ?`, id)

	var p Project
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.Title, &p.FPS, &createdAt, &updatedAt, &p.SceneCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects p ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		var p Project
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Title, &p.FPS, &createdAt, &updatedAt, &p.SceneCount); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

// ReplaceScenes swaps the whole ordered scene list of a project in one
// transaction.
func (r *SQLiteRepository) ReplaceScenes(ctx context.Context, projectID string, scenes []scene.Scene) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM scenes WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("delete scenes: %w", err)
	}

	for i, s := range scenes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO scenes (project_id, position, number, text, start_seconds, end_seconds, duration_seconds, image_path)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, projectID, i, s.Number, s.Text, s.StartSeconds, s.EndSeconds, s.DurationSeconds, nullString(s.ImagePath))
		if err != nil {
			return fmt.Errorf("insert scene %d: %w", s.Number, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "UPDATE projects SET updated_at = ? WHERE id = ?",
		formatTime(time.Now()), projectID); err != nil {
		return fmt.Errorf("touch project: %w", err)
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetScenes(ctx context.Context, projectID string) ([]scene.Scene, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT number, text, start_seconds, end_seconds, duration_seconds, image_path
		FROM scenes WHERE project_id = ? ORDER BY position
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenes []scene.Scene
	for rows.Next() {
		var s scene.Scene
		var imagePath sql.NullString
		if err := rows.Scan(&s.Number, &s.Text, &s.StartSeconds, &s.EndSeconds, &s.DurationSeconds, &imagePath); err != nil {
			return nil, err
		}
		s.ImagePath = imagePath.String
		scenes = append(scenes, s)
	}
	return scenes, rows.Err()
}

const jobColumns = `id, type, status, project_id, format, settings, output_path, progress, error, created_at, updated_at`

func (r *SQLiteRepository) CreateJob(ctx context.Context, j *Job) error {
	settings, err := json.Marshal(j.Settings)
	if err != nil {
		return fmt.Errorf("marshal job settings: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, type, status, project_id, format, settings, output_path, progress, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.Type, j.Status, nullString(j.ProjectID), nullString(string(j.Format)), string(settings),
		nullString(j.OutputPath), j.Progress, nullString(j.Error),
		formatTime(j.CreatedAt), formatTime(j.UpdatedAt))
	return err
}

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var j Job
	var projectID, format, settings, outputPath, errMsg sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&j.ID, &j.Type, &j.Status, &projectID, &format, &settings, &outputPath,
		&j.Progress, &errMsg, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	j.ProjectID = projectID.String
	j.Format = export.Format(format.String)
	j.OutputPath = outputPath.String
	j.Error = errMsg.String
	if settings.Valid && settings.String != "" {
		if err := json.Unmarshal([]byte(settings.String), &j.Settings); err != nil {
			return nil, fmt.Errorf("decode settings of job %s: %w", j.ID, err)
		}
	}
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return &j, nil
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobs(rows)
}

func (r *SQLiteRepository) ListPendingJobs(ctx context.Context) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM jobs WHERE status = 'pending' ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobs(rows)
}

func scanJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *SQLiteRepository) UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, nullString(errorMsg), formatTime(time.Now()), id)
	return err
}

func (r *SQLiteRepository) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?
	`, progress, formatTime(time.Now()), id)
	return err
}

func (r *SQLiteRepository) SetJobOutput(ctx context.Context, id, outputPath string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET output_path = ?, updated_at = ? WHERE id = ?
	`, outputPath, formatTime(time.Now()), id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// layout of sqlite's datetime('now'), accepted for rows written by hand
const sqliteTime = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	return db.FormatTime(t)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	t, _ := time.Parse(sqliteTime, s)
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
