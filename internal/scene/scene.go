// Package scene holds the narration scene model shared by the caption and
// edit-list generators, plus the input checks run before rendering.
package scene

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrNoScenes             = errors.New("scene list is empty")
	ErrInvalidSceneNumber   = errors.New("scene number must be positive")
	ErrDuplicateSceneNumber = errors.New("scene number is not unique")
	ErrNonFiniteTime        = errors.New("scene time is not a finite number")
	ErrNegativeDuration     = errors.New("scene time must not be negative")
	ErrEndBeforeStart       = errors.New("scene end is before its start")
)

// Scene is one narrated segment of a video, in timeline order.
// StartSeconds/EndSeconds drive caption timing; DurationSeconds drives the
// edit list.
type Scene struct {
	Number          int     `json:"number" yaml:"number"`
	Text            string  `json:"text" yaml:"text"`
	StartSeconds    float64 `json:"start_seconds" yaml:"start_seconds"`
	EndSeconds      float64 `json:"end_seconds" yaml:"end_seconds"`
	DurationSeconds float64 `json:"duration_seconds" yaml:"duration_seconds"`
	ImagePath       string  `json:"image_path,omitempty" yaml:"image_path,omitempty"`
}

// SpokenDuration is the narration length used for caption allocation.
func (s Scene) SpokenDuration() float64 {
	return s.EndSeconds - s.StartSeconds
}

// WordCount counts whitespace separated words in the scene text.
func (s Scene) WordCount() int {
	return len(strings.Fields(s.Text))
}

// SceneError ties a validation failure to the scene that caused it.
type SceneError struct {
	Number int
	Err    error
}

func (e *SceneError) Error() string {
	return fmt.Sprintf("scene %d: %v", e.Number, e.Err)
}

func (e *SceneError) Unwrap() error {
	return e.Err
}

// ValidateForCaptions checks the fields read by the SRT and VTT generators.
func ValidateForCaptions(scenes []Scene) error {
	return validate(scenes, func(s Scene) error {
		if !finite(s.StartSeconds) || !finite(s.EndSeconds) {
			return ErrNonFiniteTime
		}
		if s.StartSeconds < 0 || s.EndSeconds < 0 {
			return ErrNegativeDuration
		}
		if s.EndSeconds < s.StartSeconds {
			return ErrEndBeforeStart
		}
		return nil
	})
}

// ValidateForEDL checks the fields read by the edit-list generators.
func ValidateForEDL(scenes []Scene) error {
	return validate(scenes, func(s Scene) error {
		if !finite(s.DurationSeconds) {
			return ErrNonFiniteTime
		}
		if s.DurationSeconds < 0 {
			return ErrNegativeDuration
		}
		return nil
	})
}

func validate(scenes []Scene, check func(Scene) error) error {
	if len(scenes) == 0 {
		return ErrNoScenes
	}
	seen := make(map[int]bool, len(scenes))
	for _, s := range scenes {
		if s.Number < 1 {
			return &SceneError{Number: s.Number, Err: ErrInvalidSceneNumber}
		}
		if seen[s.Number] {
			return &SceneError{Number: s.Number, Err: ErrDuplicateSceneNumber}
		}
		seen[s.Number] = true
		if err := check(s); err != nil {
			return &SceneError{Number: s.Number, Err: err}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
