// Package overview provides the generation volume tab for the Genboard TUI.
package overview

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/a-linden/genboard-tui/internal/app"
	"github.com/a-linden/genboard-tui/internal/models"
	"github.com/a-linden/genboard-tui/internal/services"
	"github.com/a-linden/genboard-tui/internal/ui/components"
)

// keyMap defines the key bindings specific to the overview tab.
type keyMap struct {
	NextTier key.Binding
	PrevTier key.Binding
	Refresh  key.Binding
}

// defaultKeyMap returns the default key bindings for the overview tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextTier: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "next tier"),
		),
		PrevTier: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "prev tier"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model represents the overview tab state.
//
// The tab is the only writer of the tier filter: cycling keys re-key the
// generations channel and everything else follows the resulting events.
type Model struct {
	state          *app.State
	services       *services.Manager
	spinner        components.LoadingSpinner
	keys           keyMap
	viewport       viewport.Model
	width          int
	height         int
	animationFrame int
}

// New creates a new overview model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:    state,
		services: svc,
		spinner:  components.NewSpinner("Loading generation data..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
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

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.NextTier):
		return m.cycleTier(m.state.GetSelectedTier().Next())
	case key.Matches(msg, m.keys.PrevTier):
		return m.cycleTier(m.state.GetSelectedTier().Prev())
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

// cycleTier applies the new tier to shared state before re-keying the
// poller. Done in the other order, a fetch for the new tier can resolve
// while the state still holds the old tier and be dropped as stale.
func (m *Model) cycleTier(tier models.Tier) tea.Cmd {
	m.state.SetSelectedTier(tier)
	return func() tea.Msg {
		if m.services != nil {
			m.services.SetTier(tier)
		}
		return app.TierChangedMsg{Tier: tier}
	}
}

// SetSize sets the available size for the overview tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextTier,
		m.keys.PrevTier,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextTier, m.keys.PrevTier},
		{m.keys.Refresh},
	}
}
