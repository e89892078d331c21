package scene

import (
	"errors"
	"math"
	"testing"
)

func TestValidateForCaptions(t *testing.T) {
	tests := []struct {
		name   string
		scenes []Scene
		want   error
	}{
		{name: "valid", scenes: []Scene{{Number: 1, StartSeconds: 0, EndSeconds: 5}, {Number: 2, StartSeconds: 5, EndSeconds: 5}}},
		{name: "empty", scenes: nil, want: ErrNoScenes},
		{name: "zero number", scenes: []Scene{{Number: 0, EndSeconds: 1}}, want: ErrInvalidSceneNumber},
		{name: "duplicate", scenes: []Scene{{Number: 1, EndSeconds: 1}, {Number: 1, EndSeconds: 2}}, want: ErrDuplicateSceneNumber},
		{name: "nan", scenes: []Scene{{Number: 1, EndSeconds: math.NaN()}}, want: ErrNonFiniteTime},
		{name: "negative", scenes: []Scene{{Number: 1, StartSeconds: -1, EndSeconds: 1}}, want: ErrNegativeDuration},
		{name: "end before start", scenes: []Scene{{Number: 1, StartSeconds: 4, EndSeconds: 2}}, want: ErrEndBeforeStart},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateForCaptions(tc.scenes)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("ValidateForCaptions() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("ValidateForCaptions() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateForEDL(t *testing.T) {
	if err := ValidateForEDL([]Scene{{Number: 1, DurationSeconds: 3}}); err != nil {
		t.Fatalf("ValidateForEDL() error = %v", err)
	}

	err := ValidateForEDL([]Scene{{Number: 1, DurationSeconds: 3}, {Number: 7, DurationSeconds: -2}})
	if !errors.Is(err, ErrNegativeDuration) {
		t.Fatalf("ValidateForEDL() error = %v, want ErrNegativeDuration", err)
	}
	var sceneErr *SceneError
	if !errors.As(err, &sceneErr) || sceneErr.Number != 7 {
		t.Fatalf("expected SceneError for scene 7, got %v", err)
	}
}

func TestScene_WordCount(t *testing.T) {
	s := Scene{Text: "  Hello   world.\nThis is\ta test. "}
	if got := s.WordCount(); got != 6 {
		t.Fatalf("WordCount() = %d, want 6", got)
	}
}
