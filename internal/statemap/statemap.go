package statemap

import (
	"fmt"
	"sort"

	"github.com/kvarnsen/fmex/internal/catalog"
)

// States tracks the integrated quantities of a model: one entry per
// variable that some other variable is the derivative of, keyed by the
// integrated variable's location. The key set is fixed at construction;
// only the carried values mutate, fed back after each successful run.
type States struct {
	keys    []string
	values  map[string]float64
	present map[string]bool
}

// NewStates discovers the state entries of a catalog.
func NewStates(cat *catalog.Catalog) *States {
	s := &States{
		values:  make(map[string]float64),
		present: make(map[string]bool),
	}
	for _, v := range cat.Variables() {
		if v.DerivativeOf == "" {
			continue
		}
		if s.present[v.DerivativeOf] {
			continue
		}
		s.keys = append(s.keys, v.DerivativeOf)
		s.present[v.DerivativeOf] = true
	}
	sort.Strings(s.keys)
	return s
}

// Keys returns the fixed state-entry key set in sorted order.
func (s *States) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of state entries.
func (s *States) Len() int { return len(s.keys) }

// Has reports whether key is a state entry.
func (s *States) Has(key string) bool { return s.present[key] }

// Value returns the carried value for key and whether one has been set.
func (s *States) Value(key string) (float64, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set records the carried value for an existing state entry.
func (s *States) Set(key string, v float64) error {
	if !s.present[key] {
		return fmt.Errorf("statemap: %s is not a state entry", key)
	}
	s.values[key] = v
	return nil
}

// Values returns a copy of all carried values. Entries never fed back are
// absent.
func (s *States) Values() map[string]float64 {
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// InitialNames derives the initial-value name for every state entry.
// The mapping is total; a key with an unsupported index width fails the
// whole derivation, since the model is then outside the supported range.
func (s *States) InitialNames() (map[string]string, error) {
	out := make(map[string]string, len(s.keys))
	for _, key := range s.keys {
		name, err := InitialName(key)
		if err != nil {
			return nil, err
		}
		out[key] = name
	}
	return out, nil
}
