package api

import (
	"encoding/json"
	"net/http"

	"github.com/lacasadark/casadark-core/internal/export"
	"github.com/lacasadark/casadark-core/internal/subtitle"
)

// maxRenderBody bounds request bodies of the render endpoints.
const maxRenderBody = 8 << 20

func decodeRenderRequest(w http.ResponseWriter, r *http.Request) (RenderRequest, bool) {
	var req RenderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRenderBody))
	if err := dec.Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return req, false
	}
	if req.MaxCharsPerBlock < 0 {
		WriteError(w, http.StatusBadRequest, "max_chars_per_block must not be negative", "BAD_REQUEST")
		return req, false
	}
	if req.GapBetweenScenes != nil && *req.GapBetweenScenes < 0 {
		WriteError(w, http.StatusBadRequest, "gap_between_scenes must not be negative", "BAD_REQUEST")
		return req, false
	}
	if req.FPS < 0 || req.TransitionFrames < 0 {
		WriteError(w, http.StatusBadRequest, "fps and transition_frames must not be negative", "BAD_REQUEST")
		return req, false
	}
	return req, true
}

// renderHandler decodes a scene list and answers with the document rendered
// in the format picked by choose.
func renderHandler(cfg ServerConfig, choose func(RenderRequest) export.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRenderRequest(w, r)
		if !ok {
			return
		}

		format := choose(req)
		doc, err := export.Render(format, req.Scenes, req.Settings(cfg.Defaults))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteText(w, http.StatusOK, format.ContentType(), doc)
	}
}

func renderNarrationSRTHandler(cfg ServerConfig) http.HandlerFunc {
	return renderHandler(cfg, func(RenderRequest) export.Format { return export.FormatSRT })
}

func renderSimpleSRTHandler(cfg ServerConfig) http.HandlerFunc {
	return renderHandler(cfg, func(RenderRequest) export.Format { return export.FormatSRTSimple })
}

func renderVTTHandler(cfg ServerConfig) http.HandlerFunc {
	return renderHandler(cfg, func(RenderRequest) export.Format { return export.FormatVTT })
}

func renderEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return renderHandler(cfg, func(req RenderRequest) export.Format {
		if req.Transitions {
			return export.FormatEDLTransitions
		}
		return export.FormatEDL
	})
}

func validateSRTHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ValidateSRTRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRenderBody)).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.MaxCharsPerBlock < 0 {
			WriteError(w, http.StatusBadRequest, "max_chars_per_block must not be negative", "BAD_REQUEST")
			return
		}

		maxChars := req.MaxCharsPerBlock
		if maxChars == 0 {
			maxChars = cfg.Defaults.Narration.MaxCharsPerBlock
		}
		maxChars = defaultMaxChars(maxChars)

		WriteJSON(w, http.StatusOK, ValidateSRTResponse{
			Valid:            subtitle.ValidateSRTBlocks(req.SRT, maxChars),
			BlockCount:       subtitle.CountSRTBlocks(req.SRT),
			MaxCharsPerBlock: maxChars,
		})
	}
}
