package session_test

import (
	"context"
	"math"
	"testing"

	"github.com/kvarnsen/fmex/internal/bioreactor"
	"github.com/kvarnsen/fmex/internal/config"
	"github.com/kvarnsen/fmex/internal/session"
)

func newBatchSession(t *testing.T) *session.Session {
	t.Helper()
	opts, err := config.DefaultScenario().Options()
	if err != nil {
		t.Fatal(err)
	}
	s, err := session.New(bioreactor.New(), opts)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBatchExplorationWorkflow(t *testing.T) {
	ctx := context.Background()
	s := newBatchSession(t)

	diags, err := s.SetInitialValues(map[string]float64{"VS_start": 8.0})
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %v", diags)
	}

	first, err := s.Simulate(ctx, session.ModeFresh, 6)
	if err != nil {
		t.Fatal(err)
	}
	if s.Cursor() != 6 {
		t.Fatalf("cursor = %v, want exactly 6", s.Cursor())
	}
	if v, err := first.First(bioreactor.LocM2); err != nil || v != 8.0 {
		t.Fatalf("initial substrate = %v, %v; want the staged 8.0", v, err)
	}

	second, err := s.Simulate(ctx, session.ModeContinuation, 3)
	if err != nil {
		t.Fatal(err)
	}
	if s.Cursor() != 9 {
		t.Fatalf("cursor = %v, want exactly 9", s.Cursor())
	}
	if second.Times[0] != 6 {
		t.Fatalf("continuation starts at %v, want 6", second.Times[0])
	}

	// The trajectory is seamless: the continuation picks up each state
	// exactly where the first run left it.
	for _, loc := range []string{bioreactor.LocV, bioreactor.LocM1, bioreactor.LocM2} {
		end, err := first.Last(loc)
		if err != nil {
			t.Fatal(err)
		}
		start, err := second.First(loc)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(end-start) > 1e-12 {
			t.Fatalf("%s jumps across the seam: %.15g -> %.15g", loc, end, start)
		}
	}
}

func TestContinuationSurvivesParameterChange(t *testing.T) {
	ctx := context.Background()
	s := newBatchSession(t)

	if _, err := s.Simulate(ctx, session.ModeFresh, 4); err != nil {
		t.Fatal(err)
	}
	carried, err := s.Result().Last(bioreactor.LocM1)
	if err != nil {
		t.Fatal(err)
	}

	// A kinetics change between runs must not disturb the carried state.
	if _, err := s.SetParameters(map[string]float64{"qSmax": 0.5}); err != nil {
		t.Fatal(err)
	}
	res, err := s.Simulate(ctx, session.ModeContinuation, 2)
	if err != nil {
		t.Fatal(err)
	}
	start, err := res.First(bioreactor.LocM1)
	if err != nil {
		t.Fatal(err)
	}
	if start != carried {
		t.Fatalf("carried cell mass = %v, want %v", start, carried)
	}
}

func TestKeyVariablesAlwaysRecorded(t *testing.T) {
	s := newBatchSession(t)
	s.SetDiagrams(nil)

	res, err := s.Simulate(context.Background(), session.ModeFresh, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, loc := range []string{
		bioreactor.LocMu, bioreactor.LocMuMax,
		bioreactor.LocV, bioreactor.LocM1, bioreactor.LocM2,
	} {
		if _, err := res.Column(loc); err != nil {
			t.Fatalf("key variable %s not recorded: %v", loc, err)
		}
	}

	// Accessor dispatch against the real model.
	if v, err := s.Get("mu_max"); err != nil ||
		v != bioreactor.DefaultY*bioreactor.DefaultQSmax {
		t.Fatalf("mu_max = %v, %v", v, err)
	}
	if v, err := s.Get("Y"); err != nil || v != bioreactor.DefaultY {
		t.Fatalf("Y = %v, %v", v, err)
	}
	if _, _, err := s.Describe("mu"); err != nil {
		t.Fatalf("Describe(mu) = %v", err)
	}
}
