// Package subtitle turns narration scenes into timed caption documents
// (SubRip and WebVTT).
package subtitle

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lacasadark/casadark-core/internal/scene"
	"github.com/lacasadark/casadark-core/internal/timecode"
)

// DefaultGapBetweenScenes is the silence, in seconds, left after each block.
const DefaultGapBetweenScenes = 10.0

// SrtBlock is one caption entry. Blocks are never modified after allocation.
type SrtBlock struct {
	Index        int     `json:"index"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Text         string  `json:"text"`
}

// String renders the block in SubRip syntax, including the trailing newline.
func (b SrtBlock) String() string {
	return fmt.Sprintf("%d\n%s --> %s\n%s\n",
		b.Index, timecode.FormatSRT(b.StartSeconds), timecode.FormatSRT(b.EndSeconds), b.Text)
}

// NarrationOptions tunes GenerateNarrationSRT. A zero MaxCharsPerBlock means
// the default; a zero gap is honoured, a negative gap means the default.
type NarrationOptions struct {
	MaxCharsPerBlock int     `json:"max_chars_per_block"`
	GapBetweenScenes float64 `json:"gap_between_scenes"`
}

func DefaultNarrationOptions() NarrationOptions {
	return NarrationOptions{
		MaxCharsPerBlock: DefaultMaxCharsPerBlock,
		GapBetweenScenes: DefaultGapBetweenScenes,
	}
}

func (o NarrationOptions) normalized() NarrationOptions {
	if o.MaxCharsPerBlock <= 0 {
		o.MaxCharsPerBlock = DefaultMaxCharsPerBlock
	}
	if o.GapBetweenScenes < 0 || math.IsNaN(o.GapBetweenScenes) || math.IsInf(o.GapBetweenScenes, 0) {
		o.GapBetweenScenes = DefaultGapBetweenScenes
	}
	return o
}

// NarrationBlocks splits every scene into blocks and lays them out on a
// timeline that starts at zero, ignoring the scenes' own start times. Each
// block gets a share of its scene's spoken duration proportional to its word
// count, and the cursor advances by the gap after every block. Scenes without
// words produce no blocks and no gap.
func NarrationBlocks(scenes []scene.Scene, opts NarrationOptions) []SrtBlock {
	opts = opts.normalized()

	var out []SrtBlock
	cursor := 0.0
	index := 1
	for _, sc := range scenes {
		blocks := SplitTextIntoBlocks(sc.Text, opts.MaxCharsPerBlock)
		totalWords := sc.WordCount()
		if len(blocks) == 0 || totalWords == 0 {
			continue
		}

		sceneDuration := sc.SpokenDuration()
		for _, text := range blocks {
			duration := float64(countWords(text)) / float64(totalWords) * sceneDuration
			if duration < 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
				duration = 0
			}
			out = append(out, SrtBlock{
				Index:        index,
				StartSeconds: cursor,
				EndSeconds:   cursor + duration,
				Text:         text,
			})
			index++
			cursor += duration + opts.GapBetweenScenes
		}
	}
	return out
}

// GenerateNarrationSRT renders NarrationBlocks as a SubRip document.
func GenerateNarrationSRT(scenes []scene.Scene, opts NarrationOptions) string {
	return FormatSRT(NarrationBlocks(scenes, opts))
}

// SimpleBlocks emits one block per scene using the scene's own timestamps.
// Line breaks in the text are kept but blank lines are dropped.
func SimpleBlocks(scenes []scene.Scene) []SrtBlock {
	out := make([]SrtBlock, 0, len(scenes))
	for i, sc := range scenes {
		out = append(out, SrtBlock{
			Index:        i + 1,
			StartSeconds: sc.StartSeconds,
			EndSeconds:   sc.EndSeconds,
			Text:         compactLines(sc.Text),
		})
	}
	return out
}

// GenerateSimpleSRT renders SimpleBlocks as a SubRip document.
func GenerateSimpleSRT(scenes []scene.Scene) string {
	return FormatSRT(SimpleBlocks(scenes))
}

// FormatSRT serialises blocks separated by a blank line.
func FormatSRT(blocks []SrtBlock) string {
	entries := make([]string, len(blocks))
	for i, b := range blocks {
		entries[i] = b.String()
	}
	return strings.Join(entries, "\n")
}

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

func splitSRT(srt string) []string {
	srt = strings.ReplaceAll(srt, "\r\n", "\n")
	srt = strings.TrimSpace(srt)
	if srt == "" {
		return nil
	}

	var blocks []string
	for _, b := range blankLine.Split(srt, -1) {
		if b = strings.TrimSpace(b); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// ValidateSRTBlocks reports whether the text of every entry in srt fits in
// maxChars runes. Entries without a text line are ignored.
func ValidateSRTBlocks(srt string, maxChars int) bool {
	if maxChars <= 0 {
		maxChars = DefaultMaxCharsPerBlock
	}
	for _, block := range splitSRT(srt) {
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			continue
		}
		text := strings.Join(lines[2:], "\n")
		if utf8.RuneCountInString(text) > maxChars {
			return false
		}
	}
	return true
}

// CountSRTBlocks counts the blank-line separated entries in srt.
func CountSRTBlocks(srt string) int {
	return len(splitSRT(srt))
}

// ValidateScenes reports the first scene whose timing cannot be captioned.
func ValidateScenes(scenes []scene.Scene) error {
	return scene.ValidateForCaptions(scenes)
}
