// Package bioreactor implements the built-in reference model: batch
// cultivation of a single culture on one substrate in a stirred tank.
// It fills the external-model seam with a complete variable catalog
// (states, derivative linkage, parameters, computed rates, liquid-phase
// constants) so the rest of the system can run end to end.
package bioreactor

import (
	"context"
	"fmt"
	"math"

	"github.com/kvarnsen/fmex/internal/catalog"
	"github.com/kvarnsen/fmex/internal/model"
	"github.com/kvarnsen/fmex/internal/solver"
)

// Parameter and state locations exposed by the model.
const (
	LocVStart  = "bioreactor.V_start"
	LocM1Start = "bioreactor.m_start[1]"
	LocM2Start = "bioreactor.m_start[2]"
	LocY       = "bioreactor.culture.Y"
	LocQSmax   = "bioreactor.culture.qSmax"
	LocKs      = "bioreactor.culture.Ks"

	LocV  = "bioreactor.V"
	LocM1 = "bioreactor.m[1]"
	LocM2 = "bioreactor.m[2]"

	LocC1    = "bioreactor.c[1]"
	LocC2    = "bioreactor.c[2]"
	LocMu    = "bioreactor.culture.mu"
	LocQS    = "bioreactor.culture.qS"
	LocMuMax = "bioreactor.culture.mu_max"
)

// Default parameter values, matching the declared catalog starts.
const (
	DefaultVStart  = 1.0
	DefaultM1Start = 1.0
	DefaultM2Start = 10.0
	DefaultY       = 0.5
	DefaultQSmax   = 1.0
	DefaultKs      = 0.1
)

// substeps is the number of internal RK4 steps per output interval.
const substeps = 10

// Model is the batch-reactor reference model. The zero value is not
// usable; construct with New.
type Model struct {
	vars []catalog.Variable
}

func New() *Model {
	return &Model{vars: variables()}
}

func (m *Model) Name() string { return "batch-bioreactor" }

// Variables returns the model's variable catalog.
func (m *Model) Variables() []catalog.Variable { return m.vars }

func f64(v float64) *float64 { return &v }

func variables() []catalog.Variable {
	return []catalog.Variable{
		// Settable parameters.
		{Name: LocVStart, Causality: catalog.CausalityParameter, Variability: catalog.VariabilityOther,
			Start: f64(DefaultVStart), Description: "Initial broth volume", Unit: "L"},
		{Name: LocM1Start, Causality: catalog.CausalityParameter, Variability: catalog.VariabilityOther,
			Start: f64(DefaultM1Start), Description: "Initial cell mass", Unit: "g"},
		{Name: LocM2Start, Causality: catalog.CausalityParameter, Variability: catalog.VariabilityOther,
			Start: f64(DefaultM2Start), Description: "Initial substrate mass", Unit: "g"},
		{Name: LocY, Causality: catalog.CausalityParameter, Variability: catalog.VariabilityOther,
			Start: f64(DefaultY), Description: "Yield of cell mass per substrate consumed", Unit: "g/g"},
		{Name: LocQSmax, Causality: catalog.CausalityParameter, Variability: catalog.VariabilityOther,
			Start: f64(DefaultQSmax), Description: "Maximal specific substrate uptake rate", Unit: "g/(g*h)"},
		{Name: LocKs, Causality: catalog.CausalityParameter, Variability: catalog.VariabilityOther,
			Start: f64(DefaultKs), Description: "Substrate uptake saturation constant", Unit: "g/L"},

		// Integrated states and their derivative variables.
		{Name: LocV, Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous,
			Description: "Broth volume", Unit: "L"},
		{Name: LocM1, Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous,
			Description: "Cell mass in broth", Unit: "g"},
		{Name: LocM2, Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous,
			Description: "Substrate mass in broth", Unit: "g"},
		{Name: "der(bioreactor.V)", Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous,
			DerivativeOf: LocV, Description: "Volume change rate", Unit: "L/h"},
		{Name: "der(bioreactor.m[1])", Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous,
			DerivativeOf: LocM1, Description: "Cell mass change rate", Unit: "g/h"},
		{Name: "der(bioreactor.m[2])", Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous,
			DerivativeOf: LocM2, Description: "Substrate mass change rate", Unit: "g/h"},

		// Computed outputs.
		{Name: LocC1, Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous,
			Description: "Cell concentration", Unit: "g/L"},
		{Name: LocC2, Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous,
			Description: "Substrate concentration", Unit: "g/L"},
		{Name: LocMu, Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous,
			Description: "Specific growth rate", Unit: "1/h"},
		{Name: LocQS, Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous,
			Description: "Specific substrate uptake rate", Unit: "g/(g*h)"},
		{Name: LocMuMax, Causality: catalog.CausalityCalculatedParameter, Variability: catalog.VariabilityOther,
			Description: "Maximal specific growth rate", Unit: "1/h"},

		// Liquid-phase constants, looked up by describe but never simulated.
		{Name: "liquidphase.X", Causality: catalog.CausalityLocal, Variability: catalog.VariabilityConstant,
			Start: f64(1), Description: "Cell mass - concentration index", Unit: ""},
		{Name: "liquidphase.S", Causality: catalog.CausalityLocal, Variability: catalog.VariabilityConstant,
			Start: f64(2), Description: "Glucose substrate - concentration index", Unit: ""},
		{Name: "liquidphase.mw[1]", Causality: catalog.CausalityLocal, Variability: catalog.VariabilityConstant,
			Start: f64(24.6), Description: "Cell mass molecular weight", Unit: "Da"},
		{Name: "liquidphase.mw[2]", Causality: catalog.CausalityLocal, Variability: catalog.VariabilityConstant,
			Start: f64(180.0), Description: "Glucose molecular weight", Unit: "Da"},
		{Name: "library.version", Causality: catalog.CausalityLocal, Variability: catalog.VariabilityConstant,
			StartText: "2.2.1", Description: "Process library version"},
	}
}

// params holds one invocation's resolved parameters and initial state.
type params struct {
	vStart, m1Start, m2Start float64
	y, qSmax, ks             float64
}

func defaults() params {
	return params{
		vStart: DefaultVStart, m1Start: DefaultM1Start, m2Start: DefaultM2Start,
		y: DefaultY, qSmax: DefaultQSmax, ks: DefaultKs,
	}
}

// dynamics is the batch mass-balance system with state [V, m1, m2]:
// no in- or outflow, growth mu*m1, uptake -qS*m1.
type dynamics struct {
	p params
}

func (d *dynamics) Dim() int { return 3 }

func (d *dynamics) Derivative(x solver.State, t float64) solver.State {
	v, m1 := x[0], x[1]
	s := x[2] / v
	if s < 0 {
		s = 0
	}
	qS := d.p.qSmax * s / (d.p.ks + s)
	mu := d.p.y * qS
	return solver.State{0, mu * m1, -qS * m1}
}

// Simulate integrates the batch system over the requested interval,
// applying start-value overrides and recording exactly the requested
// output columns at the requested resolution.
func (m *Model) Simulate(ctx context.Context, req model.Request) (*model.Result, error) {
	if req.StopTime <= req.StartTime || req.OutputInterval <= 0 {
		return nil, fmt.Errorf("%w: [%g, %g] at %g", model.ErrBadInterval,
			req.StartTime, req.StopTime, req.OutputInterval)
	}

	p := defaults()
	for loc, v := range req.StartValues {
		switch loc {
		case LocVStart:
			p.vStart = v
		case LocM1Start:
			p.m1Start = v
		case LocM2Start:
			p.m2Start = v
		case LocY:
			p.y = v
		case LocQSmax:
			p.qSmax = v
		case LocKs:
			p.ks = v
		default:
			return nil, fmt.Errorf("%w: %s", model.ErrUnknownOverride, loc)
		}
	}

	recordable := map[string]bool{
		LocV: true, LocM1: true, LocM2: true,
		LocC1: true, LocC2: true, LocMu: true, LocQS: true, LocMuMax: true,
	}
	for _, out := range req.Outputs {
		if !recordable[out] {
			return nil, fmt.Errorf("%w: %s", model.ErrUnknownOutput, out)
		}
	}

	n := int(math.Round((req.StopTime-req.StartTime)/req.OutputInterval)) + 1
	if n < 2 {
		n = 2
	}
	res := model.NewResult(req.Outputs, n)

	dyn := &dynamics{p: p}
	rk4 := solver.NewRK4()
	x := solver.State{p.vStart, p.m1Start, p.m2Start}
	t := req.StartTime
	dt := req.OutputInterval / substeps

	// Recorded timestamps stay on the exact output grid; the integration
	// clock drifts by float addition and is only used for the stepper.
	record := func(i int) {
		res.Times = append(res.Times, req.StartTime+(req.StopTime-req.StartTime)*float64(i)/float64(n-1))
		for _, out := range req.Outputs {
			res.Columns[out] = append(res.Columns[out], m.observe(out, dyn, x))
		}
	}

	record(0)
	for i := 1; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		for s := 0; s < substeps; s++ {
			x = rk4.Step(dyn, x, t, dt)
			t += dt
			if !x.IsValid() {
				return nil, fmt.Errorf("%w at t=%.4f", model.ErrDiverged, t)
			}
		}
		// Substrate cannot go negative; clamp integration overshoot.
		if x[2] < 0 {
			x[2] = 0
		}
		record(i)
	}
	return res, nil
}

func (m *Model) observe(name string, dyn *dynamics, x solver.State) float64 {
	v, m1, m2 := x[0], x[1], x[2]
	s := m2 / v
	if s < 0 {
		s = 0
	}
	qS := dyn.p.qSmax * s / (dyn.p.ks + s)
	switch name {
	case LocV:
		return v
	case LocM1:
		return m1
	case LocM2:
		return m2
	case LocC1:
		return m1 / v
	case LocC2:
		return m2 / v
	case LocMu:
		return dyn.p.y * qS
	case LocQS:
		return qS
	case LocMuMax:
		return dyn.p.y * dyn.p.qSmax
	}
	return 0
}
