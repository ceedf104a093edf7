package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Causality classifies how a model variable obtains its value.
type Causality int

const (
	CausalityLocal Causality = iota
	CausalityParameter
	CausalityCalculatedParameter
	CausalityOther
)

func (c Causality) String() string {
	switch c {
	case CausalityLocal:
		return "local"
	case CausalityParameter:
		return "parameter"
	case CausalityCalculatedParameter:
		return "calculatedParameter"
	default:
		return "other"
	}
}

// Variability classifies how a model variable changes over time.
type Variability int

const (
	VariabilityContinuous Variability = iota
	VariabilityConstant
	VariabilityOther
)

func (v Variability) String() string {
	switch v {
	case VariabilityContinuous:
		return "continuous"
	case VariabilityConstant:
		return "constant"
	default:
		return "other"
	}
}

// Variable is one entry of a model's variable catalog. Start carries the
// declared start value when it is numeric; StartText carries non-numeric
// start values such as version strings.
type Variable struct {
	Name         string
	Causality    Causality
	Variability  Variability
	Start        *float64
	StartText    string
	Description  string
	Unit         string
	DerivativeOf string
}

// StartFloat returns the numeric start value. Non-numeric StartText is
// parsed as a fallback so index constants declared as text still resolve.
func (v *Variable) StartFloat() (float64, error) {
	if v.Start != nil {
		return *v.Start, nil
	}
	if v.StartText != "" {
		f, err := strconv.ParseFloat(v.StartText, 64)
		if err != nil {
			return 0, fmt.Errorf("catalog: variable %s has non-numeric start %q", v.Name, v.StartText)
		}
		return f, nil
	}
	return 0, fmt.Errorf("catalog: variable %s has no start value", v.Name)
}

var (
	ErrDuplicateName = errors.New("catalog: duplicate variable name")
	ErrBadDerivative = errors.New("catalog: derivative reference to unknown variable")
	ErrEmpty         = errors.New("catalog: no variables")
)

// Catalog is the read-only variable inventory of a loaded model. It is
// built once at model load time and validated on construction; a malformed
// catalog is fatal to startup.
type Catalog struct {
	vars   []Variable
	byName map[string]int
}

func New(vars []Variable) (*Catalog, error) {
	if len(vars) == 0 {
		return nil, ErrEmpty
	}
	byName := make(map[string]int, len(vars))
	for i, v := range vars {
		if _, dup := byName[v.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, v.Name)
		}
		byName[v.Name] = i
	}
	for _, v := range vars {
		if v.DerivativeOf == "" {
			continue
		}
		if _, ok := byName[v.DerivativeOf]; !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrBadDerivative, v.Name, v.DerivativeOf)
		}
	}
	return &Catalog{vars: vars, byName: byName}, nil
}

// Lookup returns the variable with the given name.
func (c *Catalog) Lookup(name string) (*Variable, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return &c.vars[i], true
}

// Len returns the number of catalogued variables.
func (c *Catalog) Len() int { return len(c.vars) }

// Variables returns the catalog in declaration order. The returned slice
// is shared; callers must not mutate it.
func (c *Catalog) Variables() []Variable { return c.vars }

// Locals returns every variable with local causality.
func (c *Catalog) Locals() []Variable {
	var out []Variable
	for _, v := range c.vars {
		if v.Causality == CausalityLocal {
			out = append(out, v)
		}
	}
	return out
}

// Describe returns the description and unit for a location, serving the
// descriptive-metadata lookups behind describe().
func (c *Catalog) Describe(location string) (description, unit string, err error) {
	v, ok := c.Lookup(location)
	if !ok {
		return "", "", fmt.Errorf("catalog: unknown location %s", location)
	}
	return v.Description, v.Unit, nil
}

// Components returns the sorted unique leading name segments of the
// catalog, skipping derivative variables and generated helper names.
func (c *Catalog) Components() []string {
	seen := make(map[string]bool)
	for _, v := range c.vars {
		name := v.Name
		if name == "" || name[0] == '_' {
			continue
		}
		end := len(name)
		for i := 0; i < len(name); i++ {
			if name[i] == '.' || name[i] == '(' {
				end = i
				break
			}
		}
		comp := name[:end]
		if comp == "" || comp == "der" || strings.HasPrefix(comp, "temp_") {
			continue
		}
		seen[comp] = true
	}
	out := make([]string, 0, len(seen))
	for comp := range seen {
		out = append(out, comp)
	}
	sort.Strings(out)
	return out
}
