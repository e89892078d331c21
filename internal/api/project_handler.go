package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lacasadark/casadark-core/internal/cache"
	"github.com/lacasadark/casadark-core/internal/edl"
	"github.com/lacasadark/casadark-core/internal/export"
)

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		p, err := cfg.Projects.CreateProject(r.Context(), req.Title, req.FPS)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, ProjectToResponse(p))
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Projects.ListProjects(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectResponse, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToResponse(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		p, err := cfg.Projects.GetProject(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		scenes, err := cfg.Projects.GetScenes(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := ProjectToResponse(p)
		resp.Scenes = scenes
		WriteJSON(w, http.StatusOK, resp)
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := cfg.Projects.DeleteProject(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		if cfg.RenderCache != nil {
			cfg.RenderCache.InvalidateProject(id)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func replaceScenesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req ReplaceScenesRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRenderBody)).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := cfg.Projects.ReplaceScenes(r.Context(), id, req.Scenes); err != nil {
			writeServiceError(w, err)
			return
		}
		if cfg.RenderCache != nil {
			cfg.RenderCache.InvalidateProject(id)
		}

		WriteJSON(w, http.StatusOK, ReplaceScenesResponse{
			SceneCount:      len(req.Scenes),
			DurationSeconds: edl.CalculateDuration(req.Scenes),
		})
	}
}

func renderProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		name := r.URL.Query().Get("format")
		if name == "" {
			name = string(export.FormatSRT)
		}
		format, err := export.ParseFormat(name)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		render := func(ctx context.Context) (string, error) {
			return cfg.Projects.Render(ctx, id, format)
		}

		var doc string
		hit := false
		if cfg.RenderCache != nil {
			doc, hit, err = cfg.RenderCache.Get(r.Context(), cache.Key{ProjectID: id, Format: string(format)}, render)
		} else {
			doc, err = render(r.Context())
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if hit {
			w.Header().Set("X-Cache", "HIT")
		} else {
			w.Header().Set("X-Cache", "MISS")
		}
		WriteText(w, http.StatusOK, format.ContentType(), doc)
	}
}

func requestExportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		format, err := export.ParseFormat(req.Format)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		job, err := cfg.Projects.RequestExport(r.Context(), id, format)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusAccepted, ExportResponse{JobID: job.ID, Format: string(format)})
	}
}
