package outputs

import (
	"testing"

	"github.com/kvarnsen/fmex/internal/catalog"
	"github.com/kvarnsen/fmex/internal/diagram"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Variable{
		{Name: "bioreactor.V", Causality: catalog.CausalityLocal},
		{Name: "bioreactor.m[1]", Causality: catalog.CausalityLocal},
		{Name: "bioreactor.c[1]", Causality: catalog.CausalityLocal},
		{Name: "bioreactor.culture.mu", Causality: catalog.CausalityLocal},
		{Name: "bioreactor.culture.Y", Causality: catalog.CausalityParameter},
	})
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func TestSelectUnionsSortedDedup(t *testing.T) {
	cat := testCatalog(t)
	diagrams := []diagram.Spec{
		{Title: "Biomass", Y: "bioreactor.c[1]"},
		{Title: "Growth", Y: "bioreactor.culture.mu"},
		{Title: "Growth again", Y: "bioreactor.culture.mu"},
	}
	stateKeys := []string{"bioreactor.V", "bioreactor.m[1]"}
	keyVars := []string{"bioreactor.culture.mu", "bioreactor.V"}

	got := Select(cat, diagrams, stateKeys, keyVars)
	want := []string{
		"bioreactor.V",
		"bioreactor.c[1]",
		"bioreactor.culture.mu",
		"bioreactor.m[1]",
	}
	if len(got) != len(want) {
		t.Fatalf("Select() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Select() = %v, want %v", got, want)
		}
	}
}

func TestSelectSkipsNonLocalAndUnknownReferences(t *testing.T) {
	cat := testCatalog(t)
	diagrams := []diagram.Spec{
		{Title: "Yield", Y: "bioreactor.culture.Y"}, // parameter, not recordable
		{Title: "Ghost", Y: "bioreactor.S"},         // not in the catalog
	}

	got := Select(cat, diagrams, nil, nil)
	if len(got) != 0 {
		t.Fatalf("Select() = %v, want empty", got)
	}
}

func TestSelectPhasePlotRecordsBothAxes(t *testing.T) {
	cat := testCatalog(t)
	diagrams := []diagram.Spec{
		{Title: "Phase", X: "bioreactor.m[1]", Y: "bioreactor.c[1]"},
	}

	got := Select(cat, diagrams, nil, nil)
	want := []string{"bioreactor.c[1]", "bioreactor.m[1]"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Select() = %v, want %v", got, want)
	}
}
