package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	auditLimit        int
	auditExportFormat string
	auditExportOutput string
)

func init() {
	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditExportCmd)

	auditListCmd.Flags().IntVar(&auditLimit, "limit", 0, "Maximum number of entries to show (default from config)")
	auditExportCmd.Flags().StringVar(&auditExportFormat, "format", "json", "Output format: json, csv")
	auditExportCmd.Flags().StringVarP(&auditExportOutput, "output", "o", "", "Output file path (default: stdout)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log",
}

// auditListCmd prints recent audit entries, newest first.
var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := auditLimit
		if limit <= 0 {
			limit = cfg.AuditLimit
		}

		entries, err := v.Audit().List(limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Audit log is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTION\tDETAILS")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				e.Timestamp.Local().Format(time.RFC3339), e.Action, e.Details)
		}
		return w.Flush()
	},
}

// auditExportCmd writes the audit log as JSON or CSV.
var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := v.Audit().Export(auditExportFormat, cfg.AuditLimit)
		if err != nil {
			return err
		}

		if auditExportOutput == "" {
			fmt.Print(string(data))
			return nil
		}
		if err := os.WriteFile(auditExportOutput, data, 0600); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("Audit log exported to %s\n", auditExportOutput)
		return nil
	},
}
