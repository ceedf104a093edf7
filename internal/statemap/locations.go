package statemap

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateSymbol indicates a symbolic name registered twice. Duplicate
// locations are fine (several symbols may address one location); duplicate
// symbols are not.
var ErrDuplicateSymbol = errors.New("statemap: duplicate symbolic name")

// Locations associates user-facing symbolic names with model-internal
// location strings. Built once at startup for every parameter and derived
// initial-value name, then extended only with describe-only key variables.
type Locations struct {
	byName   map[string]string
	settable map[string]bool
}

func NewLocations() *Locations {
	return &Locations{
		byName:   make(map[string]string),
		settable: make(map[string]bool),
	}
}

// Add registers a settable symbolic name.
func (l *Locations) Add(name, location string) error {
	return l.add(name, location, true)
}

// AddReadOnly registers a describe-only symbolic name, never used for
// value setting.
func (l *Locations) AddReadOnly(name, location string) error {
	return l.add(name, location, false)
}

func (l *Locations) add(name, location string, settable bool) error {
	if _, dup := l.byName[name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateSymbol, name)
	}
	l.byName[name] = location
	l.settable[name] = settable
	return nil
}

// Resolve returns the location a symbolic name points at.
func (l *Locations) Resolve(name string) (string, bool) {
	loc, ok := l.byName[name]
	return loc, ok
}

// Settable reports whether a symbolic name may be used for value setting.
func (l *Locations) Settable(name string) bool { return l.settable[name] }

// Symbol performs the reverse lookup, returning the first symbolic name
// (in sorted order) that points at location.
func (l *Locations) Symbol(location string) (string, bool) {
	names := make([]string, 0, len(l.byName))
	for n := range l.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if l.byName[n] == location {
			return n, true
		}
	}
	return "", false
}

// Names returns all registered symbolic names in sorted order.
func (l *Locations) Names() []string {
	names := make([]string, 0, len(l.byName))
	for n := range l.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
