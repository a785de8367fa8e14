package main

import (
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset progress back to ang 1",
	Long: `Delete the progress file so the next run starts again from ang 1.
Rendered output files are left in place and will be overwritten as the
walk catches back up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.store.Reset(); err != nil {
			return err
		}
		a.logger.Info("progress reset", "next_ang", 1)
		return nil
	},
}
