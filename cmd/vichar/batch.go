package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sachkhoj/vichar/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch <count>",
	Short: "Process the next N angs in sequence",
	Long: `Process up to N angs starting from the current cursor, advancing after
each success. The batch stops at the first failure so that a flapping
upstream does not burn through pages; the failed ang is retried on the
next run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid batch count %q", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.preflight(cmd.Context()); err != nil {
			return err
		}

		done, err := a.pipeline.ProcessBatch(cmd.Context(), n)
		switch {
		case errors.Is(err, pipeline.ErrExhausted):
			a.logger.Info("all angs processed", "completed", done)
		case err != nil:
			a.logger.Error("batch stopped", "completed", done, "error", err)
		default:
			a.logger.Info("batch complete", "completed", done)
		}
		return nil
	},
}
