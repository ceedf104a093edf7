package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kvarnsen/fmex/internal/catalog"
	"github.com/kvarnsen/fmex/internal/model"
)

// Get resolves a symbolic name or location to its current numeric value.
// Constants and declared parameters resolve from the catalog's start
// values at any time; calculated parameters from the first sample of the
// last run; overridden locations from the last override set; continuous
// variables from the last sample of the last run. Before the first run,
// anything beyond constants and parameters is ErrUnavailable.
func (s *Session) Get(name string) (float64, error) {
	loc := name
	if resolved, ok := s.locations.Resolve(name); ok {
		loc = resolved
	}
	v, ok := s.catalog.Lookup(loc)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownName, name)
	}

	switch {
	case v.Causality == catalog.CausalityLocal && v.Variability == catalog.VariabilityConstant:
		return v.StartFloat()

	case v.Causality == catalog.CausalityParameter:
		return v.StartFloat()

	case v.Causality == catalog.CausalityCalculatedParameter:
		if s.last == nil {
			return 0, fmt.Errorf("%w: %s", ErrUnavailable, name)
		}
		val, err := s.last.First(loc)
		if errors.Is(err, model.ErrNotRecorded) {
			return 0, fmt.Errorf("%w: %s", ErrNotCaptured, name)
		}
		return val, err
	}

	if val, ok := s.lastOverrides[loc]; ok {
		return val, nil
	}

	if v.Variability == catalog.VariabilityContinuous {
		if s.last == nil {
			return 0, fmt.Errorf("%w: %s", ErrUnavailable, name)
		}
		val, err := s.last.Last(loc)
		if errors.Is(err, model.ErrNotRecorded) {
			return 0, fmt.Errorf("%w: %s", ErrNotCaptured, name)
		}
		return val, err
	}

	return 0, fmt.Errorf("%w: %s", ErrUndefined, name)
}

// Describe returns the human-readable description and unit for a symbolic
// name or location.
func (s *Session) Describe(name string) (description, unit string, err error) {
	loc := name
	if resolved, ok := s.locations.Resolve(name); ok {
		loc = resolved
	}
	return s.catalog.Describe(loc)
}

// DisplayEntry is one row of a parameter display.
type DisplayEntry struct {
	Name     string
	Location string
	Value    float64
	Err      error
}

// Display lists the store's parameters whose symbolic name or location
// contains filter, with values resolved from the model, not the store.
func (s *Session) Display(filter string) []DisplayEntry {
	var out []DisplayEntry
	for _, name := range s.store.Names() {
		loc, ok := s.locations.Resolve(name)
		if !ok {
			continue
		}
		if filter != "" && !strings.Contains(name, filter) && !strings.Contains(loc, filter) {
			continue
		}
		val, err := s.Get(loc)
		out = append(out, DisplayEntry{Name: name, Location: loc, Value: val, Err: err})
	}
	return out
}
