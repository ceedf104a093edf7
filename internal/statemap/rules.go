package statemap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStateVectorSize indicates a state key with an index suffix wider than
// three digits; models that large are outside the supported range.
var ErrStateVectorSize = errors.New("statemap: state vector exceeds supported size")

// initialRule maps a state-key shape onto its initial-value name. Rules are
// evaluated in order and the first match wins, keeping the table open for
// new suffix shapes without branching sprawl.
type initialRule struct {
	name  string
	match func(key string) bool
	apply func(key string) (string, error)
}

var initialRules = []initialRule{
	{
		name:  "integrator-block",
		match: func(key string) bool { return !strings.HasSuffix(key, "]") && strings.HasSuffix(key, "I.y") },
		apply: func(key string) (string, error) {
			if len(key) < 10 {
				return "", fmt.Errorf("statemap: state key %q too short for integrator-block rule", key)
			}
			return key[:len(key)-10] + "I_start", nil
		},
	},
	{
		name:  "derivative-block",
		match: func(key string) bool { return !strings.HasSuffix(key, "]") && strings.HasSuffix(key, "D.x") },
		apply: func(key string) (string, error) {
			if len(key) < 10 {
				return "", fmt.Errorf("statemap: state key %q too short for derivative-block rule", key)
			}
			return key[:len(key)-10] + "D_start", nil
		},
	},
	{
		name:  "indexed",
		match: func(key string) bool { return strings.HasSuffix(key, "]") },
		apply: func(key string) (string, error) {
			// Supported index widths are 1..3 digits.
			for w := 3; w <= 5; w++ {
				if len(key) > w && key[len(key)-w] == '[' {
					return key[:len(key)-w] + "_start" + key[len(key)-w:], nil
				}
			}
			return "", fmt.Errorf("%w: key %q", ErrStateVectorSize, key)
		},
	},
	{
		name:  "plain",
		match: func(key string) bool { return true },
		apply: func(key string) (string, error) { return key + "_start", nil },
	},
}

// InitialName derives the symbolic initial-value name for a state key.
// The derivation is total over every supported key shape; an index suffix
// wider than three digits is a configuration error.
func InitialName(key string) (string, error) {
	for _, r := range initialRules {
		if r.match(key) {
			return r.apply(key)
		}
	}
	// The plain rule matches everything, so this is unreachable.
	return "", fmt.Errorf("statemap: no rule for state key %q", key)
}
