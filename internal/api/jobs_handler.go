package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const (
	defaultJobsLimit = 50
	maxJobsLimit     = 500
)

func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultJobsLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxJobsLimit {
				WriteError(w, http.StatusBadRequest, "limit must be between 1 and 500", "BAD_REQUEST")
				return
			}
			limit = n
		}

		jobs, err := cfg.Projects.ListJobs(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list jobs", "INTERNAL_ERROR")
			return
		}

		resp := JobsResponse{Jobs: make([]JobResponse, len(jobs))}
		for i, j := range jobs {
			resp.Jobs[i] = JobToResponse(j)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "job id required", "BAD_REQUEST")
			return
		}

		job, err := cfg.Projects.GetJob(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, JobToResponse(job))
	}
}

// pauseRunnerHandler stops or restarts picking up queued exports. A running
// export finishes either way.
func pauseRunnerHandler(cfg ServerConfig, pause bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Runner == nil {
			WriteError(w, http.StatusServiceUnavailable, "export runner not available", "NO_RUNNER")
			return
		}
		if pause {
			cfg.Runner.Pause()
		} else {
			cfg.Runner.Resume()
		}
		WriteJSON(w, http.StatusOK, RunnerResponse{Paused: cfg.Runner.IsPaused()})
	}
}
