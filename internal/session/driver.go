package session

import (
	"context"
	"fmt"

	"github.com/kvarnsen/fmex/internal/model"
	"github.com/kvarnsen/fmex/internal/outputs"
)

// Simulation modes. Aliases mirror the interactive shorthand this
// workflow grew out of.
const (
	ModeFresh        = "init"
	ModeContinuation = "cont"
)

var modeAliases = map[string]string{
	"init":      ModeFresh,
	"initial":   ModeFresh,
	"fresh":     ModeFresh,
	"cont":      ModeContinuation,
	"continued": ModeContinuation,
	"continue":  ModeContinuation,
}

// Simulate runs the model over one interval in the given mode.
//
// Fresh mode starts at time zero from the full parameter store. Continuation
// mode starts at the cursor from the store minus any parameter superseded by
// carried state, with the state entries fed in through their derived
// initial-value locations. On any failure the cursor and state entries are
// left exactly as they were.
func (s *Session) Simulate(ctx context.Context, mode string, duration float64) (*model.Result, error) {
	m, ok := modeAliases[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrBadDuration, duration)
	}

	var overrides map[string]float64
	var start float64
	switch m {
	case ModeFresh:
		overrides = s.freshOverrides()
		start = 0
	case ModeContinuation:
		if s.cursor == 0 {
			return nil, ErrNoPriorRun
		}
		var err error
		overrides, err = s.continuationOverrides()
		if err != nil {
			return nil, err
		}
		start = s.cursor
	}

	req := model.Request{
		StartTime:      start,
		StopTime:       start + duration,
		OutputInterval: duration / float64(s.points),
		StartValues:    overrides,
		Outputs:        outputs.Select(s.catalog, s.diagrams, s.states.Keys(), s.keyVars),
	}

	res, err := s.model.Simulate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("session: simulation failed: %w", err)
	}

	// Feed the end state back before anything else can fail, so a
	// rendering problem never costs continuity.
	for _, key := range s.states.Keys() {
		v, err := res.Last(key)
		if err != nil {
			return nil, fmt.Errorf("session: state feedback for %s: %w", key, err)
		}
		if err := s.states.Set(key, v); err != nil {
			return nil, err
		}
	}
	s.cursor = res.FinalTime()
	s.last = res
	s.lastOverrides = overrides

	if s.renderer != nil {
		if err := s.renderer.Render(res, s.diagrams); err != nil {
			return res, fmt.Errorf("session: diagram rendering: %w", err)
		}
	}
	return res, nil
}

// freshOverrides maps the whole store, initial values included, through
// the location map.
func (s *Session) freshOverrides() map[string]float64 {
	overrides := make(map[string]float64)
	for _, name := range s.store.Names() {
		loc, ok := s.locations.Resolve(name)
		if !ok {
			continue
		}
		v, _ := s.store.Value(name)
		overrides[loc] = v
	}
	return overrides
}

// continuationOverrides drops every parameter whose location coincides
// with a derived initial-value location (carried state supersedes it) and
// adds the carried state values keyed by those locations instead.
func (s *Session) continuationOverrides() (map[string]float64, error) {
	overrides := make(map[string]float64)
	for _, name := range s.store.Names() {
		loc, ok := s.locations.Resolve(name)
		if !ok || s.initLocs[loc] {
			continue
		}
		v, _ := s.store.Value(name)
		overrides[loc] = v
	}
	for _, key := range s.states.Keys() {
		v, ok := s.states.Value(key)
		if !ok {
			return nil, fmt.Errorf("session: state entry %s has no carried value", key)
		}
		iname := s.initials[key]
		loc := iname
		if resolved, ok := s.locations.Resolve(iname); ok {
			loc = resolved
		}
		overrides[loc] = v
	}
	return overrides, nil
}
