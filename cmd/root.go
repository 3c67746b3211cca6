package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/epiplan/app"
	"github.com/kilianp07/epiplan/config"
	coremon "github.com/kilianp07/epiplan/core/monitoring"
	"github.com/kilianp07/epiplan/infra/logger"
	"github.com/kilianp07/epiplan/infra/monitoring"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "epiplan",
	Short:        "Plan epidemic interventions with MDP solvers",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json); empty uses defaults and EPI_ variables")
}

// Execute runs the CLI.
func Execute() error {
	defer coremon.Recover()
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withService builds a service for cfg, runs fn and closes the service.
func withService(cfg *config.Config, fn func(*app.Service) error) error {
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	defer coremon.Flush(2 * time.Second)

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return fn(svc)
}
