package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/robsolve/app"
	"github.com/kilianp07/robsolve/config"
	"github.com/kilianp07/robsolve/core/model"
	"github.com/kilianp07/robsolve/infra/logger"
)

var (
	modelPath   string
	backendName string
	serve       bool
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a model, simulate it and optionally store the solution",
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&modelPath, "model", "m", "model.yaml", "model description file")
	solveCmd.Flags().StringVar(&backendName, "backend", "", "override backend_kind (COMPILED or INTERPRETED)")
	solveCmd.Flags().BoolVar(&serve, "serve", false, "keep serving /metrics after the solve until interrupted")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	m, err := model.LoadSpec(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	if backendName != "" {
		kind, err := model.ParseBackendKind(backendName)
		if err != nil {
			return err
		}
		m.Unlock()
		err = m.Set(model.AttrBackendKind, kind)
		m.Lock()
		if err != nil {
			return err
		}
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	logg := logger.New("main")
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	served := make(chan error, 1)
	go func() { served <- svc.ServeMetrics(ctx) }()

	solved, err := svc.Solve(ctx, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "solved %d periods with %s backend\n", solved.NumPeriods(), solved.Backend())
	if solved.ShouldStore() {
		fmt.Fprintf(cmd.OutOrStdout(), "solution stored at %s\n", cfg.Solve.SolutionPath())
	}

	if !serve || cfg.Metrics.ListenAddr == "" {
		return nil
	}
	<-ctx.Done()
	return <-served
}
