package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/a-linden/genboard-tui/internal/services/analytics"
	"github.com/a-linden/genboard-tui/internal/ui/styles"
	"github.com/a-linden/genboard-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderConfigCard())
	sections = append(sections, m.renderEndpointsCard())
	sections = append(sections, m.renderAboutCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	w := m.width - 6
	if w < 50 {
		w = 50
	}
	if w > 80 {
		w = 80
	}
	return w
}

// renderConfigCard renders the effective configuration card. The token is
// never shown in full.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if m.config != nil {
		envPath := m.config.EnvPath
		if envPath == "" {
			envPath = "(environment only)"
		}
		rows = append(rows, m.renderConfigRow("Base URL", m.config.AnalyticsBaseURL))
		rows = append(rows, m.renderConfigRow("Token", m.config.RedactedToken()))
		rows = append(rows, m.renderConfigRow("Env File", envPath))
		rows = append(rows, m.renderConfigRow("Generations", m.config.GenerationsRefreshInterval.String()))
		rows = append(rows, m.renderConfigRow("Models Usage", m.config.ModelsRefreshInterval.String()))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderEndpointsCard renders the polled analytics endpoints.
func (m *Model) renderEndpointsCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Endpoints"))
	rows = append(rows, "")

	rows = append(rows, m.renderConfigRow("Generations", analytics.GenerationsEndpoint))
	rows = append(rows, m.renderConfigRow("Models Usage", analytics.ModelsUsageEndpoint))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About Genboard"))
	rows = append(rows, "")

	rows = append(rows, m.renderConfigRow("Version", version.GetVersion()))
	rows = append(rows, m.renderConfigRow("Build Date", version.GetDate()))
	rows = append(rows, m.renderConfigRow("Git Commit", version.GetCommit()))
	rows = append(rows, m.renderConfigRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	rows = append(rows, "")

	updated := m.state.GetLastUpdated()
	if updated.IsZero() {
		rows = append(rows, styles.HelpStyle.Render("No data received yet"))
	} else {
		rows = append(rows, fmt.Sprintf("Last update: %s",
			styles.InfoTextStyle.Render(updated.Format("15:04:05"))))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
