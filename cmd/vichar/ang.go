package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var angCmd = &cobra.Command{
	Use:   "ang <number>",
	Short: "Process a single ang without advancing the cursor",
	Long: `Fetch, generate and render one specific ang. The progress cursor is not
touched, so this is safe to use for reprocessing a page or previewing a
prompt change without disturbing the sequential walk.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ang, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ang number %q: %w", args[0], err)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.preflight(cmd.Context()); err != nil {
			return err
		}

		if err := a.pipeline.ProcessAng(cmd.Context(), ang); err != nil {
			a.logger.Error("processing failed", "error", err)
		}
		return nil
	},
}
