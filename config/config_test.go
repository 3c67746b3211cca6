package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `solver:
  algorithm: lrtdp
  gamma: 0.95
  epsilon: 0.001
  max_depth: 50
  seed: 7
  goal_states: ["s_20_i_00_r_00"]
model:
  threshold: 0.1
  infection_duration_days: 7
  betas: [0.1, 0.4]
metrics:
  sinks:
    - type: "nop"
store:
  backend: sqlite
  path: runs.db
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  topic_prefix: "plans"
logging:
  level: debug
  file: logs/epiplan.log
sentry:
  dsn: "https://key@sentry.example/1"
  environment: staging
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"algorithm", cfg.Solver.Algorithm, AlgorithmLRTDP},
		{"gamma", cfg.Solver.Gamma, 0.95},
		{"epsilon", cfg.Solver.Epsilon, 0.001},
		{"max_depth", cfg.Solver.MaxDepth, 50},
		{"horizon default", cfg.Solver.Horizon, 100},
		{"goal", cfg.Solver.GoalStates, []string{"s_20_i_00_r_00"}},
		{"threshold", cfg.Model.Threshold, 0.1},
		{"duration", cfg.Model.InfectionDurationDays, 7.0},
		{"betas", cfg.Model.Betas, []float64{0.1, 0.4}},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"store", cfg.Store.Backend, "sqlite"},
		{"store path", cfg.Store.Path, "runs.db"},
		{"mqtt broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt prefix", cfg.MQTT.TopicPrefix, "plans"},
		{"mqtt client default", cfg.MQTT.ClientID, "epiplan"},
		{"log level", cfg.Logging.Level, "debug"},
		{"log file", cfg.Logging.File, "logs/epiplan.log"},
		{"log rotation default", cfg.Logging.MaxSizeMB, 10},
		{"sentry dsn", cfg.Sentry.DSN, "https://key@sentry.example/1"},
		{"sentry env", cfg.Sentry.Environment, "staging"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
	require.NotNil(t, cfg.Solver.Seed)
	assert.Equal(t, uint64(7), *cfg.Solver.Seed)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"solver":{"algorithm":"simulator","digits":2},"simulator":{"r0_values":[1.1]}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmSimulator, cfg.Solver.Algorithm)
	assert.Equal(t, 2, cfg.Solver.Digits)
	assert.Equal(t, []float64{1.1}, cfg.Simulator.R0Values)
	assert.Equal(t, 7, cfg.Simulator.DaysPerAction)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, AlgorithmVI, cfg.Solver.Algorithm)
	assert.Equal(t, 0.9, cfg.Solver.Gamma)
	assert.Equal(t, []float64{0.2, 0.35, 0.5}, cfg.Model.Betas)
	assert.Equal(t, []float64{0.8, 1.5, 2.5}, cfg.Simulator.R0Values)
	assert.Equal(t, "jsonl", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Nil(t, cfg.Solver.Seed)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("EPI_SOLVER__GAMMA", "0.5")
	t.Setenv("EPI_SOLVER__MAX_TRIALS", "12")
	t.Setenv("EPI_LOGGING__LEVEL", "warn")
	path := writeFile(t, "config.yaml", "solver:\n  gamma: 0.8\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Solver.Gamma)
	assert.Equal(t, 12, cfg.Solver.MaxTrials)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]struct {
		name string
		data string
	}{
		"format":    {"config.toml", "a = 1"},
		"algorithm": {"config.yaml", "solver:\n  algorithm: pi\n"},
		"gamma":     {"config.yaml", "solver:\n  gamma: 1.5\n"},
		"threshold": {"config.yaml", "model:\n  threshold: 0.3\n"},
		"store":     {"config.yaml", "store:\n  backend: redis\n"},
		"mqtt":      {"config.yaml", "mqtt:\n  enabled: true\n"},
		"logging":   {"config.yaml", "logging:\n  level: loud\n"},
		"rotation":  {"config.yaml", "logging:\n  max_backups: -1\n"},
		"sentry":    {"config.yaml", "sentry:\n  traces_sample_rate: 3\n"},
		"simulator": {"config.yaml", "solver:\n  algorithm: simulator\nsimulator:\n  initial: [1, 0]\n"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, c.name, c.data))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestModelSkippedForSimulator(t *testing.T) {
	cfg := Default()
	cfg.Solver.Algorithm = AlgorithmSimulator
	cfg.Model.Threshold = 0.3
	assert.NoError(t, cfg.Validate())
	cfg.Solver.Algorithm = AlgorithmVI
	assert.Error(t, cfg.Validate())
}
