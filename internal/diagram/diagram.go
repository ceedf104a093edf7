// Package diagram defines plot layouts as data: each diagram is a
// (source column, style) tuple consumed by a fixed renderer, with a
// line-style cursor advancing once per rendered run so overlaid runs stay
// distinguishable.
package diagram

// Spec describes one curve. X empty or "time" plots Y against the time
// axis; otherwise the diagram is a phase plot of Y against X.
type Spec struct {
	Title string `yaml:"title"`
	X     string `yaml:"x,omitempty"`
	Y     string `yaml:"y"`
	Unit  string `yaml:"unit,omitempty"`
}

// TimeAxis reports whether the spec plots against time.
func (s Spec) TimeAxis() bool { return s.X == "" || s.X == "time" }

// References returns the result columns the spec reads.
func (s Spec) References() []string {
	if s.TimeAxis() {
		return []string{s.Y}
	}
	return []string{s.X, s.Y}
}

// StyleCycle is the line-style cursor shared across renders. Styles echo
// the dash patterns of conventional plotting and are cycled, one style
// per rendered run.
type StyleCycle struct {
	styles []string
	next   int
}

func NewStyleCycle() *StyleCycle {
	return &StyleCycle{styles: []string{"-", "--", ":", "-."}}
}

// Next returns the current style and advances the cursor.
func (c *StyleCycle) Next() string {
	s := c.styles[c.next%len(c.styles)]
	c.next++
	return s
}

// Reset rewinds the cursor, as a fresh plot window would.
func (c *StyleCycle) Reset() { c.next = 0 }
