package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sachkhoj/vichar/internal/api"
	"github.com/sachkhoj/vichar/internal/pipeline"
	"github.com/sachkhoj/vichar/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "vichar",
	Short: "Gurbani commentary pipeline with LLM-generated vichar",
	Long: `Vichar walks through the angs of the Sri Guru Granth Sahib one page at a
time, fetching each from the BaniDB API, generating a spiritual commentary
with a local Ollama model, and writing the result as HTML and plain text.

Progress is tracked in a JSON file so the walk can be stopped and resumed
at any point. Running with no subcommand processes the next pending ang
and advances the cursor.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.preflight(cmd.Context()); err != nil {
			return err
		}

		err = a.pipeline.ProcessNext(cmd.Context())
		switch {
		case errors.Is(err, pipeline.ErrExhausted):
			a.logger.Info("all angs processed, nothing to do")
		case err != nil:
			// A single failed ang is not fatal: the cursor did not move,
			// so the next run retries the same page.
			a.logger.Error("processing failed", "error", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.vichar/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "vichar home directory (default: ~/.vichar)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(angCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
