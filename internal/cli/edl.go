package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/lacasadark/casadark-core/internal/audio"
	"github.com/lacasadark/casadark-core/internal/edl"
	"github.com/lacasadark/casadark-core/internal/export"
)

type edlOptions struct {
	title            string
	fps              int
	dropFrame        bool
	transitions      bool
	transitionFrames int
	audioDir         string
	out              string
	copy             bool
}

func newEDLCommand(root *rootOptions) *cobra.Command {
	opts := &edlOptions{}

	cmd := &cobra.Command{
		Use:   "edl <scenes-file>",
		Short: "Render a scene file to a CMX 3600 edit decision list",
		Long: `Render a scene file to an EDL with one event per scene on a contiguous
record timeline. Scenes without a duration can take it from their narration
audio with --audio-dir, which reads scene_001.wav, scene_002.wav and so on.
The EDL is printed to stdout unless --out is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := renderEDL(args[0], opts)
			if err != nil {
				return err
			}

			if opts.out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), content)
			} else {
				if err := export.WritePath(opts.out, content); err != nil {
					return err
				}
				if !root.quiet {
					fmt.Fprintln(cmd.OutOrStdout(), opts.out)
				}
			}

			if opts.copy {
				if err := clipboard.WriteAll(content); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				slog.Info("EDL copied to clipboard")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "EDL title (default: the scene file title, then "+edl.DefaultTitle+")")
	cmd.Flags().IntVar(&opts.fps, "fps", 0, fmt.Sprintf("frames per second (default: the scene file fps, then %d)", edl.DefaultFPS))
	cmd.Flags().BoolVar(&opts.dropFrame, "drop-frame", false, "mark the EDL as drop frame (header only)")
	cmd.Flags().BoolVar(&opts.transitions, "transitions", false, "dissolve between scenes instead of cutting")
	cmd.Flags().IntVar(&opts.transitionFrames, "transition-frames", edl.DefaultTransitionFrames, "dissolve length in frames")
	cmd.Flags().StringVar(&opts.audioDir, "audio-dir", "", "directory of scene_NNN.wav files used to fill missing durations")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "copy the EDL to the clipboard")

	return cmd
}

func renderEDL(input string, opts *edlOptions) (string, error) {
	sf, err := LoadSceneFile(input)
	if err != nil {
		return "", err
	}

	scenes := sf.Scenes
	if opts.audioDir != "" {
		var filled int
		scenes, filled, err = audio.FillDurations(filepath.Clean(opts.audioDir), scenes)
		if err != nil {
			return "", fmt.Errorf("read narration audio: %w", err)
		}
		slog.Debug("durations filled from audio", "dir", opts.audioDir, "scenes", filled)
	}

	settings := export.DefaultSettings()
	settings.Title = firstNonEmpty(opts.title, sf.Title, edl.DefaultTitle)
	settings.FPS = firstPositive(opts.fps, sf.FPS, edl.DefaultFPS)
	settings.DropFrame = opts.dropFrame
	settings.TransitionFrames = opts.transitionFrames

	format := export.FormatEDL
	if opts.transitions {
		format = export.FormatEDLTransitions
	}

	content, err := export.Render(format, scenes, settings)
	if err != nil {
		return "", fmt.Errorf("%s: %w", input, err)
	}
	return content, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
