// Package outputs decides which model variables a run must record: the
// union of everything the active diagrams reference, every state entry
// (needed for continuation), and the declared key variables — and nothing
// more, so large models are not recorded wholesale.
package outputs

import (
	"sort"

	"github.com/kvarnsen/fmex/internal/catalog"
	"github.com/kvarnsen/fmex/internal/diagram"
)

// Select returns the sorted, deduplicated output set for one run.
// Diagram references count only when they name a local variable in the
// catalog; the time axis and parameter references are not recordable
// columns.
func Select(cat *catalog.Catalog, diagrams []diagram.Spec, stateKeys, keyVariables []string) []string {
	seen := make(map[string]bool)

	for _, d := range diagrams {
		for _, ref := range d.References() {
			v, ok := cat.Lookup(ref)
			if !ok || v.Causality != catalog.CausalityLocal {
				continue
			}
			seen[ref] = true
		}
	}
	for _, k := range stateKeys {
		seen[k] = true
	}
	for _, k := range keyVariables {
		seen[k] = true
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
