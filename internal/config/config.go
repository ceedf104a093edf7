package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kvarnsen/fmex/internal/bioreactor"
	"github.com/kvarnsen/fmex/internal/session"
	"github.com/kvarnsen/fmex/internal/store"
)

const (
	DefaultDuration = 5.0
	DefaultPoints   = 500
)

// Scenario wires a model into an explorable session: symbolic parameter
// names with defaults and locations, describe-only key variables, value
// constraints and the active plot layout.
type Scenario struct {
	Model        string             `yaml:"model"`
	Duration     float64            `yaml:"duration"`
	Points       int                `yaml:"points"`
	Parameters   map[string]float64 `yaml:"parameters"`
	Locations    map[string]string  `yaml:"locations"`
	KeyVariables map[string]string  `yaml:"key_variables"`
	Constraints  []Bound            `yaml:"constraints"`
	Plot         string             `yaml:"plot"`
}

// Bound is a data-driven value constraint on one parameter.
type Bound struct {
	Param     string   `yaml:"param"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
	Exclusive bool     `yaml:"exclusive,omitempty"`
}

// Constraint compiles the bound into a named predicate over a store
// snapshot. A parameter absent from the snapshot passes; the bound only
// constrains values that exist.
func (b Bound) Constraint() store.Constraint {
	name := b.Param
	switch {
	case b.Min != nil && b.Exclusive:
		name = fmt.Sprintf("%s > %g", b.Param, *b.Min)
	case b.Min != nil:
		name = fmt.Sprintf("%s >= %g", b.Param, *b.Min)
	case b.Max != nil && b.Exclusive:
		name = fmt.Sprintf("%s < %g", b.Param, *b.Max)
	case b.Max != nil:
		name = fmt.Sprintf("%s <= %g", b.Param, *b.Max)
	}
	min, max, excl := b.Min, b.Max, b.Exclusive
	param := b.Param
	return store.Constraint{
		Name: name,
		Check: func(values map[string]float64) bool {
			v, ok := values[param]
			if !ok {
				return true
			}
			if min != nil {
				if excl && v <= *min {
					return false
				}
				if !excl && v < *min {
					return false
				}
			}
			if max != nil {
				if excl && v >= *max {
					return false
				}
				if !excl && v > *max {
					return false
				}
			}
			return true
		},
	}
}

func f64(v float64) *float64 { return &v }

// DefaultScenario is the batch cultivation exploration setup: volume,
// cell mass and substrate mass as settable initial values, the culture
// kinetics as plain parameters, and the usual rate and concentration
// variables always recorded.
func DefaultScenario() *Scenario {
	return &Scenario{
		Model:    "batch-bioreactor",
		Duration: DefaultDuration,
		Points:   DefaultPoints,
		Parameters: map[string]float64{
			"V_start":  bioreactor.DefaultVStart,
			"VX_start": bioreactor.DefaultM1Start,
			"VS_start": bioreactor.DefaultM2Start,
			"Y":        bioreactor.DefaultY,
			"qSmax":    bioreactor.DefaultQSmax,
			"Ks":       bioreactor.DefaultKs,
		},
		Locations: map[string]string{
			"V_start":  bioreactor.LocVStart,
			"VX_start": bioreactor.LocM1Start,
			"VS_start": bioreactor.LocM2Start,
			"Y":        bioreactor.LocY,
			"qSmax":    bioreactor.LocQSmax,
			"Ks":       bioreactor.LocKs,
		},
		KeyVariables: map[string]string{
			"mu":     bioreactor.LocMu,
			"mu_max": bioreactor.LocMuMax,
			"V":      bioreactor.LocV,
			"VX":     bioreactor.LocM1,
			"VS":     bioreactor.LocM2,
		},
		Constraints: []Bound{
			{Param: "Y", Min: f64(0), Exclusive: true},
			{Param: "qSmax", Min: f64(0), Exclusive: true},
			{Param: "Ks", Min: f64(0), Exclusive: true},
			{Param: "V_start", Min: f64(0), Exclusive: true},
			{Param: "VX_start", Min: f64(0)},
			{Param: "VS_start", Min: f64(0)},
		},
		Plot: "TimeSeries",
	}
}

// Load reads a scenario file over the defaults, so partial files only
// override what they mention.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// Save writes a scenario file.
func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Options assembles the session wiring for this scenario.
func (sc *Scenario) Options() (session.Options, error) {
	diagrams, ok := PlotLayout(sc.Plot)
	if !ok {
		return session.Options{}, fmt.Errorf("config: unknown plot layout %q (available: %v)", sc.Plot, ListPlots())
	}
	constraints := make([]store.Constraint, 0, len(sc.Constraints))
	for _, b := range sc.Constraints {
		constraints = append(constraints, b.Constraint())
	}
	return session.Options{
		Parameters:   sc.Parameters,
		Locations:    sc.Locations,
		KeyVariables: sc.KeyVariables,
		Constraints:  constraints,
		Diagrams:     diagrams,
		Points:       sc.Points,
	}, nil
}
