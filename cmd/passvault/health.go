package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"passvault/pkg/breach"
	"passvault/pkg/health"
)

// healthCmd runs the password health analysis, including the online breach
// check. Oracle failures degrade silently: an unreachable breach service
// never marks a password as leaked.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Analyze password health: reuse, weakness, and known breaches",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := unlock(); err != nil {
			return err
		}

		oracle := breach.NewClient(cfg.BreachOptions()...)
		report, err := health.New(v, oracle).Analyze(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Accounts analyzed: %d\n", report.Total)
		fmt.Printf("  Strong: %d\n", report.Stats.Strong)
		fmt.Printf("  Reused: %d\n", report.Stats.Reused)
		fmt.Printf("  Weak or breached: %d\n", report.Stats.Weak)
		return nil
	},
}
