// Package edl writes CMX3600 edit decision lists that place one still image
// per narration scene back to back on a single video track.
package edl

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/lacasadark/casadark-core/internal/scene"
	"github.com/lacasadark/casadark-core/internal/timecode"
)

const (
	DefaultTitle            = "PROJETO_VIDEO"
	DefaultFPS              = timecode.DefaultFPS
	DefaultTransitionFrames = 12

	reelNameLen   = 8
	commentMaxLen = 60
)

// Options configures Generate. DropFrame only changes the FCM header; frame
// numbers are always counted non-drop.
type Options struct {
	Title     string `json:"title"`
	FPS       int    `json:"fps"`
	DropFrame bool   `json:"drop_frame"`
}

// TransitionOptions configures GenerateWithTransitions.
type TransitionOptions struct {
	Title            string `json:"title"`
	FPS              int    `json:"fps"`
	TransitionFrames int    `json:"transition_frames"`
}

// Record is one edit event. Times are in seconds and quantised to frames
// only when formatted.
type Record struct {
	EditNumber int
	ReelName   string
	Transition string
	SourceIn   float64
	SourceOut  float64
	RecordIn   float64
	RecordOut  float64
	ClipName   string
	Comment    string
}

// Lines renders the event line followed by its comment lines.
func (r Record) Lines(fps int) []string {
	lines := []string{fmt.Sprintf("%03d  %-8s V     %s        %s %s %s %s",
		r.EditNumber, r.ReelName, r.Transition,
		timecode.FormatEDL(r.SourceIn, fps), timecode.FormatEDL(r.SourceOut, fps),
		timecode.FormatEDL(r.RecordIn, fps), timecode.FormatEDL(r.RecordOut, fps),
	)}
	if r.ClipName != "" {
		lines = append(lines, "* FROM CLIP NAME: "+r.ClipName)
	}
	if r.Comment != "" {
		lines = append(lines, "* COMMENT: "+r.Comment)
	}
	return lines
}

// Cut is the transition token for a straight cut.
const Cut = "C"

// Dissolve returns the transition token for a dissolve lasting frames.
func Dissolve(frames int) string {
	return fmt.Sprintf("D    %03d", frames)
}

// Records lays scenes out back to back from zero. Every source clip starts at
// zero and runs for the scene duration. transition picks the token for the
// i-th record.
func Records(scenes []scene.Scene, transition func(i int) string) []Record {
	records := make([]Record, 0, len(scenes))
	current := 0.0
	for i, sc := range scenes {
		duration := sc.DurationSeconds
		records = append(records, Record{
			EditNumber: i + 1,
			ReelName:   ReelName(sc),
			Transition: transition(i),
			SourceIn:   0,
			SourceOut:  duration,
			RecordIn:   current,
			RecordOut:  current + duration,
			ClipName:   ClipName(sc.ImagePath),
			Comment:    Comment(sc.Text),
		})
		current += duration
	}
	return records
}

// Generate renders a cuts-only edit list.
func Generate(scenes []scene.Scene, opts Options) string {
	fps := normalizeFPS(opts.FPS)
	records := Records(scenes, func(int) string { return Cut })
	return render(FormatTitle(opts.Title), opts.DropFrame, fps, records)
}

// GenerateWithTransitions renders an edit list where every edit after the
// first dissolves in over TransitionFrames frames.
func GenerateWithTransitions(scenes []scene.Scene, opts TransitionOptions) string {
	fps := normalizeFPS(opts.FPS)
	frames := opts.TransitionFrames
	if frames <= 0 {
		frames = DefaultTransitionFrames
	}
	records := Records(scenes, func(i int) string {
		if i == 0 {
			return Cut
		}
		return Dissolve(frames)
	})
	return render(FormatTitle(opts.Title), false, fps, records)
}

func render(title string, dropFrame bool, fps int, records []Record) string {
	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if dropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for _, r := range records {
		lines = append(lines, r.Lines(fps)...)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// CalculateDuration sums the scene durations in seconds.
func CalculateDuration(scenes []scene.Scene) float64 {
	total := 0.0
	for _, sc := range scenes {
		total += sc.DurationSeconds
	}
	return total
}

// FormatTitle upper-cases title and joins its words with underscores.
func FormatTitle(title string) string {
	words := strings.Fields(strings.ToUpper(title))
	if len(words) == 0 {
		return DefaultTitle
	}
	return strings.Join(words, "_")
}

// ReelName derives the reel from the image file stem, or CENA_NNN when the
// scene has no usable image.
func ReelName(sc scene.Scene) string {
	stem := strings.TrimSuffix(ClipName(sc.ImagePath), path.Ext(ClipName(sc.ImagePath)))
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, stem)

	if len(name) > reelNameLen {
		name = name[:reelNameLen]
	}
	if name == "" {
		return fallbackReel(sc.Number)
	}
	return name
}

// fallbackReel names a reel after the scene number, dropping the separator
// and then the prefix as the number grows so the name stays within
// reelNameLen.
func fallbackReel(number int) string {
	for _, format := range []string{"CENA_%03d", "CENA%04d", "C%07d"} {
		if name := fmt.Sprintf(format, number); len(name) <= reelNameLen {
			return name
		}
	}
	digits := fmt.Sprint(number)
	return digits[len(digits)-reelNameLen:]
}

// ClipName is the file name of an image path or URL.
func ClipName(imagePath string) string {
	p := strings.TrimSpace(imagePath)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// Comment flattens text to one line and keeps the first 60 characters,
// marking truncation with an ellipsis.
func Comment(text string) string {
	flat := strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text))
	if utf8.RuneCountInString(flat) <= commentMaxLen {
		return flat
	}
	runes := []rune(flat)
	return string(runes[:commentMaxLen]) + "..."
}

func normalizeFPS(fps int) int {
	if fps <= 0 {
		return DefaultFPS
	}
	return fps
}

// ValidateScenes reports the first scene that cannot be placed on the edit
// timeline.
func ValidateScenes(scenes []scene.Scene) error {
	return scene.ValidateForEDL(scenes)
}
