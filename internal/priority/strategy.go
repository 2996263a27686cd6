// Package priority scores tasks under a named strategy, explains each
// score, and ranks the results into a deterministic order.
package priority

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStrategyNotSupported is matched by every *StrategyNotSupportedError.
var ErrStrategyNotSupported = errors.New("strategy not supported")

// Strategy is the closed set of scoring policies. Each value maps to one
// scoring function with the shared contract: a score in [0, 100] and an
// explanation citing the factors that produced it.
type Strategy int

const (
	// Balanced combines urgency, importance, unblocked work and effort
	// with configurable weights.
	Balanced Strategy = iota
	// Urgency ranks by closeness of the due date, widened by effort.
	Urgency
	// Importance ranks by the importance rating alone.
	Importance
	// Effort ranks quick wins first.
	Effort
)

// strategyNames holds the canonical name followed by accepted aliases.
var strategyNames = map[Strategy][]string{
	Balanced:   {"balanced", "smart_balance"},
	Urgency:    {"urgency", "deadline"},
	Importance: {"importance", "impact"},
	Effort:     {"effort", "fastest"},
}

// Strategies returns every supported strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{Balanced, Urgency, Importance, Effort}
}

// String returns the canonical strategy name.
func (s Strategy) String() string {
	if names, ok := strategyNames[s]; ok {
		return names[0]
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Aliases returns the alternate names accepted for s.
func (s Strategy) Aliases() []string {
	names := strategyNames[s]
	if len(names) < 2 {
		return nil
	}
	return append([]string(nil), names[1:]...)
}

// Description is a one-line summary of how s scores.
func (s Strategy) Description() string {
	switch s {
	case Balanced:
		return "weighted mix of urgency, importance, unblocked work and effort"
	case Urgency:
		return "closest due date first, larger tasks due soon slightly ahead"
	case Importance:
		return "highest importance first, earlier due date breaks ties"
	case Effort:
		return "smallest estimated effort first"
	}
	return ""
}

// StrategyNotSupportedError reports an unrecognized strategy name.
type StrategyNotSupportedError struct {
	Name string
}

func (e *StrategyNotSupportedError) Error() string {
	return fmt.Sprintf("%v: %q (supported: %s)", ErrStrategyNotSupported, e.Name, strings.Join(names(), ", "))
}

// Is reports whether target is ErrStrategyNotSupported.
func (e *StrategyNotSupportedError) Is(target error) bool {
	return target == ErrStrategyNotSupported
}

// ParseStrategy resolves a strategy by canonical name or alias,
// ignoring case and surrounding space. An empty name yields def.
func ParseStrategy(name string, def Strategy) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return def, nil
	}
	for _, s := range Strategies() {
		for _, n := range strategyNames[s] {
			if n == key {
				return s, nil
			}
		}
	}
	return def, &StrategyNotSupportedError{Name: name}
}

func names() []string {
	out := make([]string, 0, len(strategyNames))
	for _, s := range Strategies() {
		out = append(out, s.String())
	}
	return out
}
