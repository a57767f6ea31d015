package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/robsolve/config"
	"github.com/kilianp07/robsolve/core/solve"
	"github.com/kilianp07/robsolve/infra/logger"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the diagnostic log left by a previous solve",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		solve.Cleanup(cfg.Solve.DiagnosticLogPath(), logger.New("clean"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
