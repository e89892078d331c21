// Package audio probes narration WAV files for their playing time.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/wav"

	"github.com/lacasadark/casadark-core/internal/scene"
)

var ErrInvalidWAV = errors.New("not a valid WAV file")

// Duration returns the playing time of a WAV file in seconds.
func Duration(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return 0, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}

	if err := decoder.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("failed to find audio data in %s: %w", path, err)
	}
	if decoder.AvgBytesPerSec == 0 {
		return 0, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}
	return float64(decoder.PCMSize) / float64(decoder.AvgBytesPerSec), nil
}

// SceneFileName is the narration file expected for a scene number.
func SceneFileName(number int) string {
	return fmt.Sprintf("scene_%03d.wav", number)
}

// FillDurations returns a copy of scenes where every scene without a
// duration takes it from dir/scene_NNN.wav. Scenes with no matching file are
// left as they are. filled counts the scenes that were updated.
func FillDurations(dir string, scenes []scene.Scene) (out []scene.Scene, filled int, err error) {
	out = make([]scene.Scene, len(scenes))
	copy(out, scenes)

	for i := range out {
		if out[i].DurationSeconds > 0 {
			continue
		}
		path := filepath.Join(dir, SceneFileName(out[i].Number))
		if _, statErr := os.Stat(path); statErr != nil {
			if os.IsNotExist(statErr) {
				continue
			}
			return nil, filled, statErr
		}

		seconds, err := Duration(path)
		if err != nil {
			return nil, filled, err
		}
		out[i].DurationSeconds = seconds
		filled++
	}
	return out, filled, nil
}
