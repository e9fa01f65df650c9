package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jawbreaker1/agentpool/internal/config"
	"github.com/Jawbreaker1/agentpool/internal/supervisor"
)

const version = "0.1.0-dev"

func main() {
	var (
		flagWorkerBin  string
		flagMaxRunning int
		flagJSON       bool
		showVersion    bool
	)

	root := &cobra.Command{
		Use:   "agentpool",
		Short: "Supervise a bounded pool of agent worker processes",
		Long: `agentpool runs a bounded pool of long-running agent worker processes,
tracks their lifecycle, and extracts human-readable progress from each
worker's stream-json output. Commands are read line by line from stdin;
type "help" once running.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Printf("agentpool %s\n", version)
				return nil
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			cfg := config.FromEnv(os.Getenv)
			if flagWorkerBin != "" {
				cfg.WorkerBin = flagWorkerBin
			}
			if flagMaxRunning > 0 {
				cfg.MaxRunning = flagMaxRunning
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger.Info("supervisor starting", "worker_bin", cfg.WorkerBin, "max_running", cfg.MaxRunning)
			engine := supervisor.NewEngine(cfg, logger)
			repl := &repl{engine: engine, out: os.Stdout, jsonOut: flagJSON}
			return repl.run(os.Stdin)
		},
	}
	root.Flags().StringVar(&flagWorkerBin, "worker-bin", "", "worker binary (default $"+config.EnvWorkerBin+" or \""+config.DefaultWorkerBin+"\")")
	root.Flags().IntVar(&flagMaxRunning, "max-running", 0, "concurrency ceiling (default 5)")
	root.Flags().BoolVar(&flagJSON, "json", false, "render list/output responses as JSON")
	root.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
