// Package cli holds the casadark command line: the service itself and the
// offline render commands for scene files.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lacasadark/casadark-core/internal/config"
	"github.com/lacasadark/casadark-core/internal/logging"
)

type rootOptions struct {
	verbose bool
	quiet   bool
}

// NewRootCommand builds the casadark command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "casadark",
		Short: "Caption and edit-list generator for narrated videos",
		Long: `casadark turns a list of narrated scenes into SRT or WebVTT captions and
CMX 3600 edit decision lists. Run "casadark serve" for the local HTTP service,
or use the render commands on scene files directly.`,
		Version:       config.Version,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd, opts)
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")

	root.AddCommand(
		newServeCommand(),
		newSRTCommand(opts),
		newEDLCommand(opts),
		newValidateCommand(),
	)
	return root
}

func setupLogging(cmd *cobra.Command, opts *rootOptions) {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	if opts.quiet {
		level = slog.LevelError
	}
	slog.SetDefault(logging.NewTextLogger(cmd.ErrOrStderr(), level))
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}
