package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/robsolve/config"
	"github.com/kilianp07/robsolve/core/solve"
)

var (
	summaryLog     string
	summaryPeriods int
	summaryDryRun  bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Append the per-period SUMMARY to an ambiguity diagnostic log",
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&summaryLog, "log", "", "diagnostic log (defaults to the configured one)")
	summarizeCmd.Flags().IntVarP(&summaryPeriods, "periods", "p", 0, "number of periods to report")
	summarizeCmd.Flags().BoolVar(&summaryDryRun, "dry-run", false, "print the summary instead of appending it")
	_ = summarizeCmd.MarkFlagRequired("periods")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if summaryPeriods <= 0 {
		return fmt.Errorf("--periods must be positive")
	}
	path := summaryLog
	if path == "" {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = cfg.Solve.DiagnosticLogPath()
	}
	if !summaryDryRun {
		_, err := solve.SummarizeAmbiguity(path, summaryPeriods)
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	tally, err := solve.ParseDiagnostics(f, summaryPeriods)
	if err != nil {
		return err
	}
	return solve.WriteSummary(cmd.OutOrStdout(), tally.Summary())
}
