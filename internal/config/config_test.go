package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kvarnsen/fmex/internal/bioreactor"
)

func TestDefaultScenarioWiring(t *testing.T) {
	sc := DefaultScenario()

	if sc.Model != "batch-bioreactor" {
		t.Fatalf("model = %q", sc.Model)
	}
	// Every parameter has a location, every location names the model.
	for name := range sc.Parameters {
		if _, ok := sc.Locations[name]; !ok {
			t.Fatalf("parameter %s has no location", name)
		}
	}
	if sc.Locations["VX_start"] != bioreactor.LocM1Start {
		t.Fatalf("VX_start location = %q", sc.Locations["VX_start"])
	}
	if sc.KeyVariables["mu"] != bioreactor.LocMu {
		t.Fatalf("mu key variable = %q", sc.KeyVariables["mu"])
	}
	// Every constrained parameter is a declared parameter.
	for _, b := range sc.Constraints {
		if _, ok := sc.Parameters[b.Param]; !ok {
			t.Fatalf("constraint on undeclared parameter %s", b.Param)
		}
	}

	if _, err := sc.Options(); err != nil {
		t.Fatalf("Options() = %v", err)
	}
}

func TestBoundConstraintSemantics(t *testing.T) {
	tests := []struct {
		name   string
		bound  Bound
		values map[string]float64
		want   bool
	}{
		{
			name:   "exclusive min rejects boundary",
			bound:  Bound{Param: "Y", Min: f64(0), Exclusive: true},
			values: map[string]float64{"Y": 0},
			want:   false,
		},
		{
			name:   "inclusive min accepts boundary",
			bound:  Bound{Param: "VX_start", Min: f64(0)},
			values: map[string]float64{"VX_start": 0},
			want:   true,
		},
		{
			name:   "inclusive min rejects below",
			bound:  Bound{Param: "VX_start", Min: f64(0)},
			values: map[string]float64{"VX_start": -0.1},
			want:   false,
		},
		{
			name:   "max rejects above",
			bound:  Bound{Param: "Y", Max: f64(1)},
			values: map[string]float64{"Y": 1.5},
			want:   false,
		},
		{
			name:   "absent parameter passes",
			bound:  Bound{Param: "Y", Min: f64(0), Exclusive: true},
			values: map[string]float64{"Ks": 0.1},
			want:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.bound.Constraint()
			if got := c.Check(tt.values); got != tt.want {
				t.Fatalf("Check(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestBoundConstraintNames(t *testing.T) {
	if n := (Bound{Param: "Y", Min: f64(0), Exclusive: true}).Constraint().Name; n != "Y > 0" {
		t.Fatalf("name = %q", n)
	}
	if n := (Bound{Param: "VS_start", Min: f64(0)}).Constraint().Name; n != "VS_start >= 0" {
		t.Fatalf("name = %q", n)
	}
	if n := (Bound{Param: "Y", Max: f64(1)}).Constraint().Name; n != "Y <= 1" {
		t.Fatalf("name = %q", n)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	partial := []byte("duration: 12\nparameters:\n  V_start: 4.5\n  VX_start: 1.0\n  VS_start: 10.0\n  Y: 0.5\n  qSmax: 1.0\n  Ks: 0.1\nplot: PhasePlane\n")
	if err := os.WriteFile(path, partial, 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Duration != 12 {
		t.Fatalf("duration = %v, want the file's 12", sc.Duration)
	}
	if sc.Plot != "PhasePlane" {
		t.Fatalf("plot = %q, want the file's PhasePlane", sc.Plot)
	}
	// Everything the file does not mention keeps its default.
	if sc.Points != DefaultPoints {
		t.Fatalf("points = %d, want default %d", sc.Points, DefaultPoints)
	}
	if sc.Locations["Y"] != bioreactor.LocY {
		t.Fatalf("Y location = %q, want default", sc.Locations["Y"])
	}
	if sc.Parameters["V_start"] != 4.5 {
		t.Fatalf("V_start = %v, want the file's 4.5", sc.Parameters["V_start"])
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	sc := DefaultScenario()
	sc.Duration = 7
	sc.Plot = "TimeSeries2"

	if err := Save(path, sc); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Duration != 7 || got.Plot != "TimeSeries2" {
		t.Fatalf("round trip = duration %v, plot %q", got.Duration, got.Plot)
	}
	if len(got.Parameters) != len(sc.Parameters) {
		t.Fatalf("round trip lost parameters: %v", got.Parameters)
	}
}

func TestPlotLayouts(t *testing.T) {
	if specs, ok := PlotLayout(""); !ok || specs != nil {
		t.Fatalf("PlotLayout(\"\") = %v, %v", specs, ok)
	}
	if _, ok := PlotLayout("NoSuchLayout"); ok {
		t.Fatal("PlotLayout(NoSuchLayout) should miss")
	}
	specs, ok := PlotLayout("PhasePlane")
	if !ok || len(specs) != 1 || specs[0].TimeAxis() {
		t.Fatalf("PlotLayout(PhasePlane) = %v, %v", specs, ok)
	}

	names := ListPlots()
	want := []string{"Demo_1", "PhasePlane", "TimeSeries", "TimeSeries2"}
	if len(names) != len(want) {
		t.Fatalf("ListPlots() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ListPlots() = %v, want %v", names, want)
		}
	}
}
