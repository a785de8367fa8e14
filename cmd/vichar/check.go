package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sachkhoj/vichar/internal/api"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity to the generation server",
	Long: `Probe the Ollama server and report the installed models and whether the
configured model is among them. Exits non-zero if the server cannot be
reached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		status, err := a.gen.CheckAvailability(cmd.Context())
		if err != nil {
			return fmt.Errorf("ollama server unavailable: %w", err)
		}
		return api.Output(status)
	},
}
