package priority

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrInvalidWeights indicates balanced-strategy weights that cannot be used.
var ErrInvalidWeights = errors.New("invalid weights")

// Weights are the balanced strategy's factor weights. They are normalized
// to sum to 1 before scoring, so only their ratios matter.
type Weights struct {
	Urgency    float64 `mapstructure:"urgency" json:"urgency"`
	Importance float64 `mapstructure:"importance" json:"importance"`
	Unblocks   float64 `mapstructure:"unblocks" json:"unblocks"`
	Effort     float64 `mapstructure:"effort" json:"effort"`
}

// DefaultWeights returns production defaults: urgency leads, importance
// close behind, unblocked work and quick wins as secondary terms.
func DefaultWeights() Weights {
	return Weights{
		Urgency:    0.35,
		Importance: 0.30,
		Unblocks:   0.20,
		Effort:     0.15,
	}
}

// Normalize validates w and scales it to sum to 1. Every weight must be
// finite and non-negative, and at least one must be positive.
func (w Weights) Normalize() (Weights, error) {
	fields := []struct {
		name string
		v    float64
	}{
		{"urgency", w.Urgency},
		{"importance", w.Importance},
		{"unblocks", w.Unblocks},
		{"effort", w.Effort},
	}
	sum := 0.0
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return Weights{}, fmt.Errorf("%w: %s must be a finite number >= 0, got %v", ErrInvalidWeights, f.name, f.v)
		}
		sum += f.v
	}
	if sum == 0 {
		return Weights{}, fmt.Errorf("%w: at least one weight must be positive", ErrInvalidWeights)
	}
	return Weights{
		Urgency:    w.Urgency / sum,
		Importance: w.Importance / sum,
		Unblocks:   w.Unblocks / sum,
		Effort:     w.Effort / sum,
	}, nil
}

// Override returns base with the weights named in m replaced. Keys are
// urgency, importance, unblocks (alias dependencies) and effort.
func (w Weights) Override(m map[string]float64) (Weights, error) {
	out := w
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := m[k]
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "urgency":
			out.Urgency = v
		case "importance":
			out.Importance = v
		case "unblocks", "dependencies":
			out.Unblocks = v
		case "effort":
			out.Effort = v
		default:
			return Weights{}, fmt.Errorf("%w: unknown weight %q", ErrInvalidWeights, k)
		}
	}
	return out, nil
}
