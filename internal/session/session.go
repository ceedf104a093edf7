package session

import (
	"fmt"
	"sort"

	"github.com/kvarnsen/fmex/internal/catalog"
	"github.com/kvarnsen/fmex/internal/diagram"
	"github.com/kvarnsen/fmex/internal/model"
	"github.com/kvarnsen/fmex/internal/statemap"
	"github.com/kvarnsen/fmex/internal/store"
)

// DefaultPoints is the number of communication points per run when the
// scenario does not say otherwise.
const DefaultPoints = 500

// Renderer draws diagrams after a successful run. Satisfied by
// diagram.Renderer; nil disables rendering.
type Renderer interface {
	Render(res *model.Result, specs []diagram.Spec) error
}

// Options wires a scenario onto a model: which symbolic parameters exist,
// where they live in the model, what is always recorded, which value
// constraints hold, and what gets plotted.
type Options struct {
	Parameters   map[string]float64 // symbolic name -> default value
	Locations    map[string]string  // symbolic name -> model location
	KeyVariables map[string]string  // describe-only symbol -> location, always recorded
	Constraints  []store.Constraint
	Diagrams     []diagram.Spec
	Points       int
}

// Session owns all run-to-run continuity state for one model: the
// catalog, the state entries and their derived initial names, the
// parameter store, the continuation cursor and the most recent result.
// Sessions are independent; nothing is shared process-wide.
type Session struct {
	model     model.Model
	catalog   *catalog.Catalog
	states    *statemap.States
	initials  map[string]string // state key -> derived initial-value name
	initLocs  map[string]bool   // derived initial-value locations
	store     *store.Store
	locations *statemap.Locations
	keyVars   []string // locations, sorted
	diagrams  []diagram.Spec
	points    int
	renderer  Renderer

	cursor        float64
	last          *model.Result
	lastOverrides map[string]float64
}

// New introspects the model once and builds a ready session. Any failure
// here is a configuration error: the model catalog is malformed or the
// scenario wiring is inconsistent, and the caller cannot proceed.
func New(m model.Model, opts Options) (*Session, error) {
	cat, err := catalog.New(m.Variables())
	if err != nil {
		return nil, err
	}

	states := statemap.NewStates(cat)
	initials, err := states.InitialNames()
	if err != nil {
		return nil, err
	}

	locations := statemap.NewLocations()
	names := make([]string, 0, len(opts.Parameters))
	for name := range opts.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		loc, ok := opts.Locations[name]
		if !ok {
			return nil, fmt.Errorf("session: parameter %s has no location", name)
		}
		if err := locations.Add(name, loc); err != nil {
			return nil, err
		}
	}

	// Derived initial-value names are themselves locations; register
	// them so continuation overrides resolve like any other symbol.
	initLocs := make(map[string]bool, len(initials))
	for _, key := range states.Keys() {
		iname := initials[key]
		initLocs[iname] = true
		if _, ok := locations.Resolve(iname); !ok {
			if err := locations.Add(iname, iname); err != nil {
				return nil, err
			}
		}
	}

	var keyVars []string
	kvNames := make([]string, 0, len(opts.KeyVariables))
	for name := range opts.KeyVariables {
		kvNames = append(kvNames, name)
	}
	sort.Strings(kvNames)
	for _, name := range kvNames {
		loc := opts.KeyVariables[name]
		if err := locations.AddReadOnly(name, loc); err != nil {
			return nil, err
		}
		keyVars = append(keyVars, loc)
	}
	sort.Strings(keyVars)

	st := store.New(opts.Parameters)
	for _, c := range opts.Constraints {
		st.AddConstraint(c)
	}

	points := opts.Points
	if points <= 0 {
		points = DefaultPoints
	}

	return &Session{
		model:     m,
		catalog:   cat,
		states:    states,
		initials:  initials,
		initLocs:  initLocs,
		store:     st,
		locations: locations,
		keyVars:   keyVars,
		diagrams:  opts.Diagrams,
		points:    points,
	}, nil
}

// SetRenderer installs the post-run diagram renderer.
func (s *Session) SetRenderer(r Renderer) { s.renderer = r }

// SetPolicy switches the parameter store between permissive and strict
// validation.
func (s *Session) SetPolicy(p store.Policy) { s.store.SetPolicy(p) }

// SetDiagrams replaces the active diagram list, as a new plot window
// would.
func (s *Session) SetDiagrams(specs []diagram.Spec) { s.diagrams = specs }

// Diagrams returns the active diagram list.
func (s *Session) Diagrams() []diagram.Spec { return s.diagrams }

// Catalog exposes the model's variable catalog.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// Model returns the wired model collaborator.
func (s *Session) Model() model.Model { return s.model }

// StateKeys returns the fixed state-entry keys.
func (s *Session) StateKeys() []string { return s.states.Keys() }

// KeyVariables returns the always-recorded locations.
func (s *Session) KeyVariables() []string {
	out := make([]string, len(s.keyVars))
	copy(out, s.keyVars)
	return out
}

// Cursor returns the continuation cursor: the final timestamp of the last
// successful run, zero before any run.
func (s *Session) Cursor() float64 { return s.cursor }

// Result returns the most recent simulation result, nil before any run.
func (s *Session) Result() *model.Result { return s.last }

// SetParameters stages user parameter updates; see store.SetParameters.
func (s *Session) SetParameters(updates map[string]float64) ([]store.Diagnostic, error) {
	return s.store.SetParameters(updates)
}

// SetInitialValues stages initial-value updates; see store.SetInitialValues.
func (s *Session) SetInitialValues(updates map[string]float64) ([]store.Diagnostic, error) {
	return s.store.SetInitialValues(updates)
}

// ParameterNames returns the store's known symbolic names.
func (s *Session) ParameterNames() []string { return s.store.Names() }

// Parameter returns the store's current value for a symbolic name.
func (s *Session) Parameter(name string) (float64, bool) { return s.store.Value(name) }

// Snapshot captures everything continuation needs across process
// boundaries: cursor, parameter values, carried state values.
type Snapshot struct {
	Cursor     float64            `json:"cursor"`
	Parameters map[string]float64 `json:"parameters"`
	States     map[string]float64 `json:"states"`
	Overrides  map[string]float64 `json:"overrides,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Cursor:     s.cursor,
		Parameters: s.store.Snapshot(),
		States:     s.states.Values(),
		Overrides:  s.lastOverrides,
	}
}

// Restore reinstates a snapshot taken from an equivalent session. State
// keys the current model does not expose are dropped.
func (s *Session) Restore(snap Snapshot) {
	s.cursor = snap.Cursor
	s.store.Restore(snap.Parameters)
	for k, v := range snap.States {
		if s.states.Has(k) {
			_ = s.states.Set(k, v)
		}
	}
	if len(snap.Overrides) > 0 {
		s.lastOverrides = snap.Overrides
	}
}

// AdoptResult reinstates a stored run's trajectory as the most recent
// result, so value resolution keeps working across process boundaries.
func (s *Session) AdoptResult(res *model.Result) { s.last = res }
