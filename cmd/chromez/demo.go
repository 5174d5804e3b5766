package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zoobzio/chromez"
)

var (
	demoOutput     string
	demoConfig     string
	demoWorkers    int
	demoIterations int
	demoWork       time.Duration
)

func init() {
	demoCmd.Flags().StringVarP(&demoOutput, "output", "o", "", "trace file (default from config, then trace.json)")
	demoCmd.Flags().StringVar(&demoConfig, "config", "", "TOML tracer config")
	demoCmd.Flags().IntVar(&demoWorkers, "workers", 10, "number of worker goroutines")
	demoCmd.Flags().IntVar(&demoIterations, "iterations", 10, "calls per worker")
	demoCmd.Flags().DurationVar(&demoWork, "work", 50*time.Microsecond, "simulated work per call")
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Trace a concurrent workload and check the result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyColorFlag(cmd); err != nil {
			return err
		}
		log, err := newLogger(cmd)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer log.Sync() //nolint:errcheck

		cfg, err := demoSettings()
		if err != nil {
			return err
		}

		workload := demoWorkload{workers: demoWorkers, iterations: demoIterations, work: demoWork}
		if err := runDemo(cfg, log, workload); err != nil {
			return err
		}
		return checkOne(cmd.OutOrStdout(), cfg.Output, workload.expected())
	},
}

// demoSettings resolves the config file, environment and --output, in
// increasing precedence.
func demoSettings() (chromez.Config, error) {
	cfg := chromez.DefaultConfig()
	if demoConfig != "" {
		loaded, err := chromez.LoadConfig(demoConfig)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	cfg, err := cfg.ApplyEnv()
	if err != nil {
		return cfg, err
	}
	if demoOutput != "" {
		cfg.Output = demoOutput
	}
	return cfg, nil
}

type demoWorkload struct {
	workers    int
	iterations int
	work       time.Duration
}

// expected is the number of events the workload records: one Complete event
// for hello and an async pair for bye, per call.
func (d demoWorkload) expected() int {
	return d.workers * d.iterations * 3
}

// runDemo traces the workload into cfg.Output.
func runDemo(cfg chromez.Config, log *zap.Logger, d demoWorkload) error {
	_, guard := cfg.Builder(log).Init()

	var g errgroup.Group
	for w := 0; w < d.workers; w++ {
		g.Go(func() error {
			for i := 0; i < d.iterations; i++ {
				hello(d.work)
				bye(d.work)
			}
			return nil
		})
	}
	werr := g.Wait()

	if err := guard.Close(); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	log.Info("demo finished",
		zap.String("output", cfg.Output),
		zap.Int64("written", guard.Written()),
	)
	return werr
}

func hello(work time.Duration) {
	chromez.Trace("hello", func() {
		time.Sleep(work)
	})
}

func bye(work time.Duration) {
	chromez.TraceAsync("bye", chromez.NextID(), func() {
		time.Sleep(work)
	})
}
