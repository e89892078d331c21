package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lacasadark/casadark-core/internal/subtitle"
)

func newValidateCommand() *cobra.Command {
	var maxChars int

	cmd := &cobra.Command{
		Use:   "validate <srt-file>",
		Short: "Check that every caption in an SRT file fits the block limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read srt file: %w", err)
			}

			if maxChars <= 0 {
				maxChars = subtitle.DefaultMaxCharsPerBlock
			}
			srt := string(data)
			count := subtitle.CountSRTBlocks(srt)
			if !subtitle.ValidateSRTBlocks(srt, maxChars) {
				return fmt.Errorf("%s: a caption is longer than %d characters", args[0], maxChars)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d blocks, all within %d characters\n", args[0], count, maxChars)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxChars, "max-chars", subtitle.DefaultMaxCharsPerBlock, "maximum characters per caption block")
	return cmd
}
