package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/k8zenv/internal/transaction"
)

// Unit is the display state of one chart.
type Unit struct {
	Name   string
	Active bool
	Done   bool
	Err    error
}

// Model is the Bubble Tea model for the install and destroy dashboard.
type Model struct {
	ClusterName string
	Action      string // "install", "destroy"

	Step   transaction.StepName
	Levels [][]Unit

	StartTime    time.Time
	SpinnerFrame int

	// UI state
	Width       int
	Height      int
	Err         error
	Done        bool
	Interrupted bool
}

// NewModel creates a dashboard model. names pre-populates the levels when the
// plan is known up front; units reported later are appended.
func NewModel(clusterName, action string, names [][]string) Model {
	levels := make([][]Unit, len(names))
	for i, level := range names {
		for _, name := range level {
			levels[i] = append(levels[i], Unit{Name: name})
		}
	}
	return Model{
		ClusterName: clusterName,
		Action:      action,
		Step:        transaction.StepWaiting,
		Levels:      levels,
		StartTime:   time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Interrupted = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StepMsg:
		m.Step = msg.Step

	case UnitMsg:
		m.updateUnit(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updateUnit(msg UnitMsg) {
	if msg.Level < 0 {
		return
	}
	for len(m.Levels) <= msg.Level {
		m.Levels = append(m.Levels, nil)
	}

	level := m.Levels[msg.Level]
	idx := -1
	for i, u := range level {
		if u.Name == msg.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		level = append(level, Unit{Name: msg.Name})
		idx = len(level) - 1
	}

	u := &level[idx]
	u.Active = !msg.Done
	u.Done = msg.Done && msg.Err == nil
	u.Err = msg.Err
	m.Levels[msg.Level] = level
}

// progress returns the share of units that finished, failed ones included.
func (m Model) progress() float64 {
	if m.Done {
		return 1.0
	}
	total, finished := 0, 0
	for _, level := range m.Levels {
		for _, u := range level {
			total++
			if u.Done || u.Err != nil {
				finished++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(finished) / float64(total)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
