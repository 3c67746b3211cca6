package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kilianp07/epiplan/app"
	"github.com/kilianp07/epiplan/core/factory"
	"github.com/kilianp07/epiplan/core/solver"
	"github.com/kilianp07/epiplan/infra/logger"
	"github.com/kilianp07/epiplan/infra/metrics"
)

var metricsFlags struct {
	addr     string
	interval time.Duration
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Serve Prometheus metrics, optionally re-solving on an interval",
	Args:  cobra.NoArgs,
	RunE:  runMetrics,
}

func init() {
	f := metricsCmd.Flags()
	f.StringVar(&metricsFlags.addr, "addr", "", "listen address (default from metrics.prometheus_addr)")
	f.DurationVar(&metricsFlags.interval, "interval", 0, "run the configured solve at this interval")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Metrics.PrometheusAddr
	if metricsFlags.addr != "" {
		addr = metricsFlags.addr
	}
	if !hasSink(cfg.Metrics.Sinks, "prometheus") {
		cfg.Metrics.Sinks = append(cfg.Metrics.Sinks, factory.ModuleConfig{Type: "prometheus"})
	}
	log := logger.New("metrics-command")
	return withService(cfg, func(svc *app.Service) error {
		var wg sync.WaitGroup
		defer wg.Wait()
		defer stop()
		if metricsFlags.interval > 0 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ticker := time.NewTicker(metricsFlags.interval)
				defer ticker.Stop()
				for {
					if _, err := svc.Solve(ctx, ""); err != nil && !errors.Is(err, solver.ErrTrialLimit) {
						log.Errorf("scheduled solve: %v", err)
					}
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
					}
				}
			}()
		}
		return metrics.StartPromServer(ctx, addr, prometheus.DefaultGatherer)
	})
}

func hasSink(sinks []factory.ModuleConfig, typ string) bool {
	for _, s := range sinks {
		if s.Type == typ {
			return true
		}
	}
	return false
}
