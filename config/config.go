// Package config loads the epiplan configuration from a YAML or JSON file
// with EPI_ environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/epiplan/core/epidemic"
	"github.com/kilianp07/epiplan/core/metrics"
	"github.com/kilianp07/epiplan/infra/monitoring"
	"github.com/kilianp07/epiplan/infra/mqtt"
	"github.com/kilianp07/epiplan/infra/store"
)

// EnvPrefix marks environment overrides. EPI_SOLVER__GAMMA=0.95 sets solver.gamma.
const EnvPrefix = "EPI_"

type Config struct {
	Solver    SolverConfig        `json:"solver"`
	Model     epidemic.SIRConfig  `json:"model"`
	Simulator epidemic.SEIRConfig `json:"simulator"`
	Metrics   metrics.Config      `json:"metrics"`
	Store     store.Config        `json:"store"`
	MQTT      mqtt.Config         `json:"mqtt"`
	Logging   LoggingConfig       `json:"logging"`
	Sentry    monitoring.Config   `json:"sentry"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Solver.SetDefaults()
	if len(c.Model.Betas) == 0 {
		c.Model.Betas = []float64{0.2, 0.35, 0.5}
	}
	c.Model.SetDefaults()
	if len(c.Simulator.R0Values) == 0 {
		c.Simulator.R0Values = []float64{0.8, 1.5, 2.5}
	}
	c.Simulator.SetDefaults()
	c.Metrics.SetDefaults()
	c.Store.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section. The model section is only checked for the
// algorithms that build it, and likewise for the simulator.
func (c *Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	switch c.Solver.Algorithm {
	case AlgorithmVI, AlgorithmLRTDP:
		if err := c.Model.Validate(); err != nil {
			return fmt.Errorf("model: %w", err)
		}
	case AlgorithmSimulator:
		if err := c.Simulator.Validate(); err != nil {
			return fmt.Errorf("simulator: %w", err)
		}
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}

// Load reads path, applies EPI_ environment overrides and defaults, and
// validates the result. An empty path loads defaults and the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
