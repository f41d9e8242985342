// Package models provides the per-model usage tab for the Genboard TUI.
package models

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/a-linden/genboard-tui/internal/app"
	domain "github.com/a-linden/genboard-tui/internal/models"
	"github.com/a-linden/genboard-tui/internal/stats"
	"github.com/a-linden/genboard-tui/internal/ui/components"
	"github.com/a-linden/genboard-tui/internal/ui/styles"
)

// keyMap defines the key bindings specific to the models tab.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
}

// defaultKeyMap returns the default key bindings for the models tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model represents the models tab state.
type Model struct {
	state          *app.State
	spinner        components.LoadingSpinner
	table          table.Model
	rateBar        components.RateBar
	keys           keyMap
	width          int
	height         int
	animationFrame int
}

// New creates a new models tab model.
func New(state *app.State) *Model {
	t := table.New(
		table.WithColumns(defaultColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		Bold(true).
		Foreground(styles.Primary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(styles.Subtle)
	s.Selected = styles.TableSelectedStyle
	t.SetStyles(s)

	return &Model{
		state:   state,
		spinner: components.NewSpinner("Loading models usage..."),
		table:   t,
		rateBar: components.NewRateBar(),
		keys:    defaultKeyMap(),
	}
}

func defaultColumns(width int) []table.Column {
	nameWidth := max(width-52, 16)
	return []table.Column{
		{Title: "Model", Width: nameWidth},
		{Title: "Requests", Width: 12},
		{Title: "Failures", Width: 10},
		{Title: "Success", Width: 9},
		{Title: "Avg", Width: 9},
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.TickMsg:
		m.animationFrame++

	case app.ModelsUsageUpdatedMsg:
		m.reloadRows()

	case tea.KeyMsg:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// reloadRows rebuilds the table rows from the current usage snapshot,
// busiest models first.
func (m *Model) reloadRows() {
	records := m.sortedRecords()

	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			r.Model,
			stats.FormatCount(r.Requests),
			stats.FormatCount(r.Failures),
			stats.FormatPercent(r.SuccessRate),
			stats.FormatMillis(r.AvgDuration),
		})
	}

	m.table.SetRows(rows)
}

// sortedRecords returns the usage records busiest-first for rendering.
func (m *Model) sortedRecords() []domain.ModelUsageRecord {
	records := slices.Clone(m.state.GetModelsUsage().Data)
	slices.SortFunc(records, func(a, b domain.ModelUsageRecord) int {
		switch {
		case a.Requests > b.Requests:
			return -1
		case a.Requests < b.Requests:
			return 1
		default:
			return 0
		}
	})
	return records
}

// SetSize sets the available size for the models tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(defaultColumns(max(width-10, 56)))
	m.table.SetHeight(max(min(height-14, 12), 4))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Up,
		m.keys.Down,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Refresh},
	}
}
