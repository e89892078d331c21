// Package export renders scene lists into caption and edit-list documents and
// writes them to disk.
package export

import (
	"fmt"

	"github.com/lacasadark/casadark-core/internal/edl"
	"github.com/lacasadark/casadark-core/internal/scene"
	"github.com/lacasadark/casadark-core/internal/subtitle"
)

// Render validates scenes for the requested format and renders the document.
func Render(format Format, scenes []scene.Scene, s Settings) (string, error) {
	if format.isCaption() {
		if err := scene.ValidateForCaptions(scenes); err != nil {
			return "", err
		}
	} else if err := scene.ValidateForEDL(scenes); err != nil {
		return "", err
	}

	switch format {
	case FormatSRT:
		return subtitle.GenerateNarrationSRT(scenes, s.Narration), nil
	case FormatSRTSimple:
		return subtitle.GenerateSimpleSRT(scenes), nil
	case FormatVTT:
		return subtitle.GenerateNarrationVTT(scenes, s.Narration)
	case FormatEDL:
		return edl.Generate(scenes, edl.Options{
			Title:     s.Title,
			FPS:       s.FPS,
			DropFrame: s.DropFrame,
		}), nil
	case FormatEDLTransitions:
		return edl.GenerateWithTransitions(scenes, edl.TransitionOptions{
			Title:            s.Title,
			FPS:              s.FPS,
			TransitionFrames: s.TransitionFrames,
		}), nil
	default:
		return "", fmt.Errorf("unsupported format: %q", format)
	}
}

// BlockCount reports how many entries a rendered document holds: caption
// blocks for SRT, edit events (one per scene) for EDL.
func BlockCount(format Format, scenes []scene.Scene, s Settings) int {
	switch format {
	case FormatSRT, FormatVTT:
		return len(subtitle.NarrationBlocks(scenes, s.Narration))
	default:
		return len(scenes)
	}
}
