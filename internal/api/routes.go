package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lacasadark/casadark-core/internal/project"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))

	// stateless and project renders share one budget
	renderLimit := RateLimitMiddleware(cfg.RateLimitPerMin, cfg.Logger)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Post("/runner/pause", pauseRunnerHandler(cfg, true))
		r.Post("/runner/resume", pauseRunnerHandler(cfg, false))

		r.Route("/render", func(r chi.Router) {
			r.Use(renderLimit)
			r.Post("/srt", renderNarrationSRTHandler(cfg))
			r.Post("/srt/simple", renderSimpleSRTHandler(cfg))
			r.Post("/srt/validate", validateSRTHandler(cfg))
			r.Post("/vtt", renderVTTHandler(cfg))
			r.Post("/edl", renderEDLHandler(cfg))
		})

		r.Post("/projects", createProjectHandler(cfg))
		r.Get("/projects", listProjectsHandler(cfg))
		r.Get("/projects/{id}", getProjectHandler(cfg))
		r.Delete("/projects/{id}", deleteProjectHandler(cfg))
		r.Put("/projects/{id}/scenes", replaceScenesHandler(cfg))
		r.With(renderLimit).Get("/projects/{id}/render", renderProjectHandler(cfg))
		r.Post("/projects/{id}/exports", requestExportHandler(cfg))

		r.Get("/jobs", listJobsHandler(cfg))
		r.Get("/jobs/{id}", getJobHandler(cfg))
		r.Get("/jobs/{id}/download", downloadJobHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		projects, _ := cfg.Projects.ListProjects(ctx)
		jobs, _ := cfg.Projects.ListJobs(ctx, 10)

		state := "idle"
		var activeJob *JobResponse
		jobsRunning, jobsPending := 0, 0
		lastError := ""

		if cfg.Runner != nil && cfg.Runner.IsPaused() {
			state = "paused"
		}

		for _, j := range jobs {
			switch j.Status {
			case project.JobStatusRunning:
				state = "exporting"
				resp := JobToResponse(j)
				activeJob = &resp
				jobsRunning++
			case project.JobStatusPending:
				jobsPending++
			case project.JobStatusFailed:
				if lastError == "" {
					lastError = j.Error
				}
			}
		}

		if lastError != "" && state == "idle" {
			state = "error"
		}

		WriteJSON(w, http.StatusOK, StatusResponse{
			State:         state,
			LastError:     lastError,
			ProjectsCount: len(projects),
			JobsRunning:   jobsRunning,
			JobsPending:   jobsPending,
			ActiveJob:     activeJob,
		})
	}
}
