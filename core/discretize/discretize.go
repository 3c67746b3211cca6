// Package discretize maps continuous simulator states to stable string keys
// so that a tabular value function can be grown lazily over them.
package discretize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultDigits is the number of decimals kept per component.
	DefaultDigits = 4
	// DefaultSeparator joins the truncated components of a key.
	DefaultSeparator = "_"
)

// Discretizer truncates every component of a state toward zero at Digits
// decimals. The zero value uses DefaultDigits and DefaultSeparator.
type Discretizer struct {
	Digits    int
	Separator string
}

// New returns a Discretizer keeping digits decimals.
func New(digits int) Discretizer {
	return Discretizer{Digits: digits, Separator: DefaultSeparator}
}

func (d Discretizer) digits() int {
	if d.Digits <= 0 {
		return DefaultDigits
	}
	return d.Digits
}

func (d Discretizer) sep() string {
	if d.Separator == "" {
		return DefaultSeparator
	}
	return d.Separator
}

// Resolution is the largest gap between a component and its reconstruction.
func (d Discretizer) Resolution() float64 { return math.Pow10(-d.digits()) }

// Key encodes x as the truncated integer multiples of Resolution.
func (d Discretizer) Key(x []float64) string {
	scale := math.Pow10(d.digits())
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = strconv.FormatInt(int64(math.Trunc(v*scale)), 10)
	}
	return strings.Join(parts, d.sep())
}

// Reconstruct decodes a key produced by Key back to an approximate state.
func (d Discretizer) Reconstruct(key string) ([]float64, error) {
	if key == "" {
		return nil, fmt.Errorf("empty key")
	}
	scale := math.Pow10(d.digits())
	parts := strings.Split(key, d.sep())
	out := make([]float64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("component %d of key %q: %w", i, key, err)
		}
		out[i] = float64(n) / scale
	}
	return out, nil
}
