package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/lacasadark/casadark-core/internal/project"
)

// downloadJobHandler serves the file written by a completed export job.
// Range requests are honoured.
func downloadJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := cfg.Projects.GetJob(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if job.Status != project.JobStatusCompleted || job.OutputPath == "" {
			WriteError(w, http.StatusConflict, fmt.Sprintf("job is %s", job.Status), "NOT_READY")
			return
		}

		file, err := os.Open(job.OutputPath)
		if err != nil {
			if os.IsNotExist(err) {
				WriteError(w, http.StatusGone, "export file no longer exists", "FILE_GONE")
				return
			}
			cfg.Logger.Error("failed to open export", "job_id", job.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to open export", "INTERNAL_ERROR")
			return
		}
		defer file.Close()

		stat, err := file.Stat()
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to stat export", "INTERNAL_ERROR")
			return
		}

		name := filepath.Base(job.OutputPath)
		w.Header().Set("Content-Type", job.Format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		http.ServeContent(w, r, name, stat.ModTime(), file)
	}
}
