// Package store persists solver runs so that past policies can be listed
// and exported. Backends are selected by name through a factory registry.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/epiplan/core/factory"
	"github.com/kilianp07/epiplan/core/mdp"
)

// Parameters are the solver settings a run was started with.
type Parameters struct {
	Gamma        float64  `json:"gamma"`
	Horizon      int      `json:"horizon,omitempty"`
	Epsilon      float64  `json:"epsilon,omitempty"`
	MaxDepth     int      `json:"max_depth,omitempty"`
	MaxTrials    int      `json:"max_trials,omitempty"`
	Seed         uint64   `json:"seed,omitempty"`
	InitialState string   `json:"initial_state,omitempty"`
	GoalStates   []string `json:"goal_states,omitempty"`
}

// Record is one persisted solver run.
type Record struct {
	ID         string         `json:"id"`
	Algorithm  string         `json:"algorithm"`
	CreatedAt  time.Time      `json:"created_at"`
	Duration   time.Duration  `json:"duration"`
	Parameters Parameters     `json:"parameters"`
	Statistics mdp.Statistics `json:"statistics"`
	Policy     mdp.Policy     `json:"policy"`
	Values     mdp.ValueTable `json:"values"`
	// Error holds the solver error of a partial run, e.g. a trial limit.
	Error string `json:"error,omitempty"`
}

// Query filters stored records. Zero fields match everything.
type Query struct {
	ID        string
	Algorithm string
	Since     time.Time
	Until     time.Time
	// Limit keeps only the most recent matches.
	Limit int
}

func (q Query) match(r Record) bool {
	if q.ID != "" && r.ID != q.ID {
		return false
	}
	if q.Algorithm != "" && r.Algorithm != q.Algorithm {
		return false
	}
	if !q.Since.IsZero() && r.CreatedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && r.CreatedAt.After(q.Until) {
		return false
	}
	return true
}

// Store persists Records and supports querying them in creation order.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Backend is "jsonl", "sqlite" or "none".
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "epiplan.db"
		default:
			c.Path = "runs.jsonl"
		}
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	names := registry.Names()
	found := false
	for _, n := range names {
		if n == c.Backend {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown store backend %q (known: %v)", c.Backend, names)
	}
	if c.Backend != "none" && c.Path == "" {
		return fmt.Errorf("store path is required")
	}
	return nil
}

var registry = factory.NewRegistry[Store]()

func init() {
	_ = registry.Register("none", func(map[string]any) (Store, error) { return NopStore{}, nil })
	_ = registry.Register("jsonl", func(conf map[string]any) (Store, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONLStore(c.Path)
	})
	_ = registry.Register("sqlite", func(conf map[string]any) (Store, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})
}

// New opens the backend selected by cfg.
func New(cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return registry.Create(factory.ModuleConfig{
		Type: cfg.Backend,
		Conf: map[string]any{"path": cfg.Path},
	})
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error          { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }

// latest trims records to the last n entries when n is positive.
func latest(records []Record, n int) []Record {
	if n > 0 && len(records) > n {
		return records[len(records)-n:]
	}
	return records
}
