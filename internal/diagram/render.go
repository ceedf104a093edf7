package diagram

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kvarnsen/fmex/internal/model"
)

const (
	graphHeight = 10
	graphWidth  = 80
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Renderer draws diagram specs from a simulation result as terminal
// graphs. It is the plot-rendering collaborator: visual side effects
// only, no feedback into the run state.
type Renderer struct {
	w      io.Writer
	styles *StyleCycle
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w, styles: NewStyleCycle()}
}

// Render draws every spec against the result, consuming one line style
// for the whole batch.
func (r *Renderer) Render(res *model.Result, specs []Spec) error {
	if len(specs) == 0 {
		return nil
	}
	style := r.styles.Next()

	for _, spec := range specs {
		if spec.TimeAxis() {
			if err := r.renderSeries(res, spec, style); err != nil {
				return err
			}
			continue
		}
		if err := r.renderPhase(res, spec); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderSeries(res *model.Result, spec Spec, style string) error {
	col, err := res.Column(spec.Y)
	if err != nil {
		return err
	}
	caption := spec.Y
	if spec.Unit != "" {
		caption = fmt.Sprintf("%s [%s]", spec.Y, spec.Unit)
	}
	fmt.Fprintln(r.w, titleStyle.Render(spec.Title))
	graph := asciigraph.Plot(col,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption(fmt.Sprintf("%s  (%s)", caption, style)),
	)
	fmt.Fprintln(r.w, graph)
	fmt.Fprintln(r.w)
	return nil
}

// renderPhase draws an ASCII scatter of Y against X. Point density marks
// trajectory age: early samples dots, late samples solid.
func (r *Renderer) renderPhase(res *model.Result, spec Spec) error {
	xData, err := res.Column(spec.X)
	if err != nil {
		return err
	}
	yData, err := res.Column(spec.Y)
	if err != nil {
		return err
	}
	if len(xData) == 0 || len(xData) != len(yData) {
		return fmt.Errorf("diagram: phase plot %s vs %s has mismatched data", spec.Y, spec.X)
	}

	xMin, xMax := bounds(xData)
	yMin, yMax := bounds(yData)
	xRange := xMax - xMin
	yRange := yMax - yMin
	if xRange == 0 {
		xRange = 1
	}
	if yRange == 0 {
		yRange = 1
	}

	const w, h = 70, 20
	canvas := make([][]rune, h)
	for i := range canvas {
		canvas[i] = make([]rune, w)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for i := range xData {
		px := int(float64(w-1) * (xData[i] - xMin) / xRange)
		py := int(float64(h-1) * (yData[i] - yMin) / yRange)
		py = h - 1 - py
		if px < 0 || px >= w || py < 0 || py >= h {
			continue
		}
		switch {
		case i < len(xData)/3:
			canvas[py][px] = '.'
		case i < 2*len(xData)/3:
			canvas[py][px] = 'o'
		default:
			canvas[py][px] = '●'
		}
	}

	fmt.Fprintln(r.w, titleStyle.Render(spec.Title))
	fmt.Fprintf(r.w, "  %.2f ┌%s┐\n", yMax, strings.Repeat("─", w))
	for i := range canvas {
		if i == h/2 {
			fmt.Fprintf(r.w, "  %.2f │", (yMax+yMin)/2)
		} else {
			fmt.Fprint(r.w, "       │")
		}
		fmt.Fprint(r.w, string(canvas[i]))
		fmt.Fprintln(r.w, "│")
	}
	fmt.Fprintf(r.w, "  %.2f └%s┘\n", yMin, strings.Repeat("─", w))
	fmt.Fprintf(r.w, "       %.2f%s%.2f\n", xMin, strings.Repeat(" ", w-20), xMax)
	fmt.Fprintln(r.w, captionStyle.Render(fmt.Sprintf("%s vs %s  (. early, o middle, ● late)", spec.Y, spec.X)))
	fmt.Fprintln(r.w)
	return nil
}

func bounds(data []float64) (min, max float64) {
	min, max = data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
