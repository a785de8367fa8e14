package main

import (
	"github.com/spf13/cobra"

	"github.com/sachkhoj/vichar/internal/api"
	"github.com/sachkhoj/vichar/internal/progress"
)

type statusReport struct {
	progress.State `yaml:",inline"`
	TotalAngs      int  `json:"total_angs" yaml:"total_angs"`
	Remaining      int  `json:"remaining" yaml:"remaining"`
	Complete       bool `json:"complete" yaml:"complete"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show progress through the angs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		st := a.store.Load()
		total := a.store.TotalAngs()
		remaining := total - st.CurrentAng + 1
		if remaining < 0 {
			remaining = 0
		}

		return api.Output(statusReport{
			State:     st,
			TotalAngs: total,
			Remaining: remaining,
			Complete:  st.CurrentAng > total,
		})
	},
}
