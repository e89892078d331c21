// Package timecode formats fractional seconds into the textual timecodes
// written by the caption and edit-list generators.
package timecode

import (
	"fmt"
	"math"
)

const DefaultFPS = 24

// frameEpsilon absorbs float noise such as 2.3*30 landing just below 69.
const frameEpsilon = 1e-6

// FormatSRT renders seconds as HH:MM:SS,mmm. Milliseconds are rounded and
// carried into the seconds column, so 1.9996 renders as 00:00:02,000.
func FormatSRT(seconds float64) string {
	h, m, s, ms := splitMillis(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// FormatVTT renders seconds as HH:MM:SS.mmm.
func FormatVTT(seconds float64) string {
	h, m, s, ms := splitMillis(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// FormatEDL renders seconds as a non-drop-frame HH:MM:SS:FF timecode.
// Partial frames are truncated.
func FormatEDL(seconds float64, fps int) string {
	if fps <= 0 {
		fps = DefaultFPS
	}
	totalFrames := Frames(seconds, fps)

	hours := totalFrames / (fps * 3600)
	rest := totalFrames % (fps * 3600)
	minutes := rest / (fps * 60)
	rest = rest % (fps * 60)
	secs := rest / fps
	frames := rest % fps
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, secs, frames)
}

// Frames returns the whole number of frames elapsed after seconds at fps.
func Frames(seconds float64, fps int) int {
	if !isUsable(seconds) || fps <= 0 {
		return 0
	}
	return int(math.Floor(seconds*float64(fps) + frameEpsilon))
}

func splitMillis(seconds float64) (h, m, s, ms int64) {
	if !isUsable(seconds) {
		return 0, 0, 0, 0
	}
	total := int64(math.Round(seconds * 1000))
	ms = total % 1000
	totalSeconds := total / 1000
	s = totalSeconds % 60
	totalMinutes := totalSeconds / 60
	m = totalMinutes % 60
	h = totalMinutes / 60
	return h, m, s, ms
}

// isUsable rejects NaN, infinities and negative values, which all render as zero.
func isUsable(seconds float64) bool {
	return !math.IsNaN(seconds) && !math.IsInf(seconds, 0) && seconds >= 0
}
