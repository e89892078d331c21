package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lacasadark/casadark-core/internal/export"
	"github.com/lacasadark/casadark-core/internal/subtitle"
)

type srtOptions struct {
	mode     string
	maxChars int
	gap      float64
	outDir   string
	copy     bool
	jobs     int
}

func newSRTCommand(root *rootOptions) *cobra.Command {
	opts := &srtOptions{}

	cmd := &cobra.Command{
		Use:   "srt <scenes-file>...",
		Short: "Render scene files to SRT or WebVTT captions",
		Long: `Render one or more scene files to captions. narration mode splits each
scene into blocks and lays them out on a fresh timeline with a gap after every
block; simple mode writes one caption per scene using its own times; vtt mode
is narration mode in WebVTT.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			paths, err := runSRT(ctx, args, opts)
			if err != nil {
				return err
			}
			if !root.quiet {
				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "narration", "caption mode: narration, simple, vtt")
	cmd.Flags().IntVar(&opts.maxChars, "max-chars", subtitle.DefaultMaxCharsPerBlock, "maximum characters per caption block")
	cmd.Flags().Float64Var(&opts.gap, "gap", subtitle.DefaultGapBetweenScenes, "seconds added after every caption block")
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "", "output directory (default: next to each input)")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "copy the rendered captions to the clipboard (single input only)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 4, "files rendered concurrently")

	return cmd
}

func captionFormat(mode string) (export.Format, error) {
	switch strings.ToLower(mode) {
	case "narration", "":
		return export.FormatSRT, nil
	case "simple":
		return export.FormatSRTSimple, nil
	case "vtt":
		return export.FormatVTT, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want narration, simple or vtt)", mode)
	}
}

// runSRT renders every input and returns the written paths in input order.
func runSRT(ctx context.Context, inputs []string, opts *srtOptions) ([]string, error) {
	format, err := captionFormat(opts.mode)
	if err != nil {
		return nil, err
	}
	if opts.copy && len(inputs) != 1 {
		return nil, fmt.Errorf("--copy needs exactly one input, got %d", len(inputs))
	}

	settings := export.DefaultSettings()
	settings.Narration = subtitle.NarrationOptions{
		MaxCharsPerBlock: opts.maxChars,
		GapBetweenScenes: opts.gap,
	}

	dirs, err := outputDirs(inputs, opts.outDir, format)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(inputs))
	contents := make([]string, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.jobs, 1))

	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			sf, err := LoadSceneFile(input)
			if err != nil {
				return err
			}
			content, err := export.Render(format, sf.Scenes, settings)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}

			path, err := export.WriteFile(dirs[i], baseName(input), format, content)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}

			slog.Debug("captions written",
				"input", input,
				"output", path,
				"blocks", export.BlockCount(format, sf.Scenes, settings))
			paths[i] = path
			contents[i] = content
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.copy {
		if err := clipboard.WriteAll(contents[0]); err != nil {
			return nil, fmt.Errorf("copy to clipboard: %w", err)
		}
		slog.Info("captions copied to clipboard")
	}
	return paths, nil
}

// outputDirs resolves the absolute output directory of every input and
// refuses inputs that would write the same file.
func outputDirs(inputs []string, outDir string, format export.Format) ([]string, error) {
	dirs := make([]string, len(inputs))
	owner := make(map[string]string, len(inputs))
	for i, input := range inputs {
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(input)
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve output dir: %w", err)
		}
		dest := filepath.Join(abs, export.FileName(baseName(input), format))
		if prev, ok := owner[dest]; ok {
			return nil, fmt.Errorf("%s and %s both write %s", prev, input, dest)
		}
		owner[dest] = input
		dirs[i] = abs
	}
	return dirs, nil
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
