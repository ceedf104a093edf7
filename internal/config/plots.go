package config

import (
	"sort"

	"github.com/kvarnsen/fmex/internal/bioreactor"
	"github.com/kvarnsen/fmex/internal/diagram"
)

// plots holds the named plot layouts for the default scenario. Each
// layout is a list of (source column, style) diagrams handed to the
// fixed renderer after a run.
var plots = map[string][]diagram.Spec{
	"TimeSeries": {
		{Title: "Batch cultivation - X", Y: bioreactor.LocC1, Unit: "g/L"},
		{Title: "Batch cultivation - S", Y: bioreactor.LocC2, Unit: "g/L"},
		{Title: "Specific growth rate", Y: bioreactor.LocMu, Unit: "1/h"},
	},
	"TimeSeries2": {
		{Title: "Batch cultivation - X", Y: bioreactor.LocC1, Unit: "g/L"},
		{Title: "Batch cultivation - S", Y: bioreactor.LocC2, Unit: "g/L"},
	},
	"Demo_1": {
		{Title: "Substrate", Y: bioreactor.LocC2, Unit: "g/L"},
		{Title: "Cells", Y: bioreactor.LocC1, Unit: "g/L"},
	},
	"PhasePlane": {
		{Title: "Phase plane", X: bioreactor.LocM1, Y: bioreactor.LocM2},
	},
}

// PlotLayout returns the named layout. An empty name means no plotting.
func PlotLayout(name string) ([]diagram.Spec, bool) {
	if name == "" {
		return nil, true
	}
	specs, ok := plots[name]
	return specs, ok
}

// ListPlots returns the available layout names in sorted order.
func ListPlots() []string {
	names := make([]string, 0, len(plots))
	for n := range plots {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
