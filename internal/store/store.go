package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// InitialMarker is the substring that distinguishes initial-value names
// from plain parameters.
const InitialMarker = "_start"

// Policy selects how validation problems are handled. Permissive mirrors
// the interactive-exploration origin of this tool: unknown names and
// violated constraints are reported but known updates still commit.
// Strict rejects the whole update instead.
type Policy int

const (
	Permissive Policy = iota
	Strict
)

// ErrRejected is returned under the Strict policy when an update carries
// an unknown name or violates a constraint; nothing commits.
var ErrRejected = errors.New("store: update rejected")

// DiagKind classifies a validation diagnostic.
type DiagKind int

const (
	DiagUnknownParameter DiagKind = iota
	DiagNotInitialValue
	DiagConstraintViolated
)

// Diagnostic is one non-fatal validation finding, reported to the caller
// rather than logged from here.
type Diagnostic struct {
	Kind DiagKind
	Name string
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case DiagUnknownParameter:
		return fmt.Sprintf("%s: not an accessible parameter, check the spelling", d.Name)
	case DiagNotInitialValue:
		return fmt.Sprintf("%s: not an initial value (no %q in the name), use a parameter update instead", d.Name, InitialMarker)
	case DiagConstraintViolated:
		return fmt.Sprintf("requirement does not hold: %s", d.Name)
	default:
		return d.Name
	}
}

// Constraint is a named predicate over a values snapshot, checked after
// every parameter update.
type Constraint struct {
	Name  string
	Check func(values map[string]float64) bool
}

// Store is the mutable symbolic-name to value mapping for parameters and
// initial values. The known-name set is fixed at construction; updates
// only ever touch named keys.
type Store struct {
	values      map[string]float64
	constraints []Constraint
	policy      Policy
}

// New builds a store from the scenario's default parameter values.
func New(defaults map[string]float64) *Store {
	values := make(map[string]float64, len(defaults))
	for k, v := range defaults {
		values[k] = v
	}
	return &Store{values: values}
}

// SetPolicy switches between permissive and strict validation.
func (s *Store) SetPolicy(p Policy) { s.policy = p }

// AddConstraint registers a post-update value check.
func (s *Store) AddConstraint(c Constraint) { s.constraints = append(s.constraints, c) }

// Has reports whether name is a known parameter or initial value.
func (s *Store) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Value returns the current value for a known name.
func (s *Store) Value(name string) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Names returns the known names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for n := range s.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of all current values.
func (s *Store) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Restore replaces the current values with a previously taken snapshot,
// dropping names the store does not know.
func (s *Store) Restore(values map[string]float64) {
	for k, v := range values {
		if _, ok := s.values[k]; ok {
			s.values[k] = v
		}
	}
}

// SetParameters applies updates to known names. Unknown names are
// diagnosed and skipped without aborting the rest. Constraints are
// evaluated against the post-update values; under the permissive policy a
// violation is reported but the update still commits, under the strict
// policy the whole update is rolled back.
func (s *Store) SetParameters(updates map[string]float64) ([]Diagnostic, error) {
	return s.apply(updates, func(name string) *Diagnostic {
		if !s.Has(name) {
			return &Diagnostic{Kind: DiagUnknownParameter, Name: name}
		}
		return nil
	})
}

// SetInitialValues applies updates whose names carry the initial-value
// marker. Everything else is diagnosed and skipped.
func (s *Store) SetInitialValues(updates map[string]float64) ([]Diagnostic, error) {
	return s.apply(updates, func(name string) *Diagnostic {
		if !strings.Contains(name, InitialMarker) {
			return &Diagnostic{Kind: DiagNotInitialValue, Name: name}
		}
		if !s.Has(name) {
			return &Diagnostic{Kind: DiagUnknownParameter, Name: name}
		}
		return nil
	})
}

func (s *Store) apply(updates map[string]float64, screen func(name string) *Diagnostic) ([]Diagnostic, error) {
	var diags []Diagnostic
	staged := make(map[string]float64, len(updates))

	names := make([]string, 0, len(updates))
	for n := range updates {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		if d := screen(name); d != nil {
			diags = append(diags, *d)
			continue
		}
		staged[name] = updates[name]
	}

	if s.policy == Strict && len(diags) > 0 {
		return diags, fmt.Errorf("%w: unknown name", ErrRejected)
	}

	before := s.Snapshot()
	for k, v := range staged {
		s.values[k] = v
	}

	for _, c := range s.constraints {
		if c.Check == nil || c.Check(s.Snapshot()) {
			continue
		}
		diags = append(diags, Diagnostic{Kind: DiagConstraintViolated, Name: c.Name})
		if s.policy == Strict {
			s.values = before
			return diags, fmt.Errorf("%w: %s", ErrRejected, c.Name)
		}
	}

	return diags, nil
}
