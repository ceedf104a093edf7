// Package tui replays a recorded trajectory in the terminal: one column
// at a time, scrubbing or playing through the samples.
package tui

import (
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kvarnsen/fmex/internal/model"
)

const (
	graphWidth  = 80
	graphHeight = 14
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model is the bubbletea state for trajectory replay.
type Model struct {
	title    string
	res      *model.Result
	columns  []string
	selected int
	playhead int
	playing  bool
}

func New(title string, res *model.Result) Model {
	columns := make([]string, 0, len(res.Columns))
	for c := range res.Columns {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return Model{
		title:    title,
		res:      res,
		columns:  columns,
		playhead: res.Len(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.selected > 0 {
				m.selected--
			}
		case "right", "l":
			if m.selected < len(m.columns)-1 {
				m.selected++
			}
		case " ":
			m.playing = !m.playing
			if m.playing {
				if m.playhead >= m.res.Len() {
					m.playhead = 2
				}
				return m, tick()
			}
		case "r":
			m.playhead = 2
			m.playing = true
			return m, tick()
		case "end":
			m.playhead = m.res.Len()
			m.playing = false
		}
	case TickMsg:
		if m.playing {
			m.playhead += 4
			if m.playhead >= m.res.Len() {
				m.playhead = m.res.Len()
				m.playing = false
				return m, nil
			}
			return m, tick()
		}
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.columns) == 0 || m.res.Len() == 0 {
		return "no recorded columns\n"
	}
	col := m.columns[m.selected]
	data := m.res.Columns[col]

	head := m.playhead
	if head < 2 {
		head = 2
	}
	if head > len(data) {
		head = len(data)
	}

	t := m.res.Times[head-1]
	v := data[head-1]

	s := headerStyle.Render(m.title) + "\n"
	s += fmt.Sprintf("%s %s   %s %s   %s %s\n\n",
		labelStyle.Render("column:"), valueStyle.Render(col),
		labelStyle.Render("t:"), valueStyle.Render(fmt.Sprintf("%.3f", t)),
		labelStyle.Render("value:"), valueStyle.Render(fmt.Sprintf("%.4f", v)),
	)
	s += asciigraph.Plot(data[:head],
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption(col),
	)
	s += helpStyle.Render("\n←/→ column   space play/pause   r replay   end jump to end   q quit")
	return s + "\n"
}

// Run starts the replay program over one result.
func Run(title string, res *model.Result) error {
	p := tea.NewProgram(New(title, res))
	_, err := p.Run()
	return err
}
