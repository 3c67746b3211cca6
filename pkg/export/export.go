// Package export writes solved policies and their value functions to files
// for inspection or for loading into other tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/epiplan/core/mdp"
)

// Entry is one state of an exported policy. Action is nil when the policy
// leaves the state undefined.
type Entry struct {
	State  string      `json:"state" yaml:"state"`
	Action *mdp.Action `json:"action,omitempty" yaml:"action,omitempty"`
	Value  float64     `json:"value" yaml:"value"`
}

// Entries joins policy and values over the union of their keys, sorted by state.
func Entries(policy mdp.Policy, values mdp.ValueTable) []Entry {
	keys := make(map[string]struct{}, len(values))
	for k := range policy {
		keys[k] = struct{}{}
	}
	for k := range values {
		keys[k] = struct{}{}
	}
	states := make([]string, 0, len(keys))
	for k := range keys {
		states = append(states, k)
	}
	sort.Strings(states)
	out := make([]Entry, len(states))
	for i, s := range states {
		out[i] = Entry{State: s, Value: values.Get(s)}
		if a, ok := policy.Lookup(s); ok {
			out[i].Action = &a
		}
	}
	return out
}

// WriteJSON writes the entries to w as a JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// WriteYAML writes the entries to w as a YAML sequence.
func WriteYAML(w io.Writer, entries []Entry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}

// WriteCSV writes the entries to w in CSV format with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"state", "action", "value"}); err != nil {
		return err
	}
	for _, e := range entries {
		action := ""
		if e.Action != nil {
			action = e.Action.String()
		}
		rec := []string{e.State, action, strconv.FormatFloat(e.Value, 'f', -1, 64)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatFromPath infers the export format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return "json", nil
	case ".csv":
		return "csv", nil
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", ext)
	}
}

// Write writes entries to w in the named format.
func Write(w io.Writer, format string, entries []Entry) error {
	switch format {
	case "json":
		return WriteJSON(w, entries)
	case "csv":
		return WriteCSV(w, entries)
	case "yaml":
		return WriteYAML(w, entries)
	default:
		return fmt.Errorf("unsupported export format: %q", format)
	}
}
