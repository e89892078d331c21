package export

import (
	"fmt"
	"strings"

	"github.com/lacasadark/casadark-core/internal/edl"
	"github.com/lacasadark/casadark-core/internal/subtitle"
)

// Format is an output document kind.
type Format string

const (
	FormatSRT            Format = "srt"
	FormatSRTSimple      Format = "srt-simple"
	FormatVTT            Format = "vtt"
	FormatEDL            Format = "edl"
	FormatEDLTransitions Format = "edl-transitions"
)

func ValidFormats() []Format {
	return []Format{FormatSRT, FormatSRTSimple, FormatVTT, FormatEDL, FormatEDLTransitions}
}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidFormats() {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %q", s)
}

// Extension is the file extension written for the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatSRT, FormatSRTSimple:
		return "srt"
	case FormatVTT:
		return "vtt"
	default:
		return "edl"
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatVTT:
		return "text/vtt; charset=utf-8"
	case FormatSRT, FormatSRTSimple:
		return "application/x-subrip; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (f Format) isCaption() bool {
	return f == FormatSRT || f == FormatSRTSimple || f == FormatVTT
}

// Settings carries the knobs of every generator so one value can drive any
// format.
type Settings struct {
	Narration        subtitle.NarrationOptions `json:"narration"`
	Title            string                    `json:"title"`
	FPS              int                       `json:"fps"`
	DropFrame        bool                      `json:"drop_frame"`
	TransitionFrames int                       `json:"transition_frames"`
}

func DefaultSettings() Settings {
	return Settings{
		Narration:        subtitle.DefaultNarrationOptions(),
		Title:            edl.DefaultTitle,
		FPS:              edl.DefaultFPS,
		TransitionFrames: edl.DefaultTransitionFrames,
	}
}

// Result describes a rendered document written to disk.
type Result struct {
	Format     Format `json:"format"`
	OutputPath string `json:"output_path"`
	Bytes      int    `json:"bytes"`
	BlockCount int    `json:"block_count"`
}
