package overview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/a-linden/genboard-tui/internal/models"
	"github.com/a-linden/genboard-tui/internal/stats"
	"github.com/a-linden/genboard-tui/internal/ui/components"
	"github.com/a-linden/genboard-tui/internal/ui/styles"
)

// View renders the overview tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderTierSelector())
	sections = append(sections, m.renderChartCard())
	sections = append(sections, m.renderSummaryCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the overview title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Generation Volume")
	subtitle := styles.HelpStyle.Render("Generations over time by subscription tier")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderTierSelector renders the tier filter with the active tier highlighted.
func (m *Model) renderTierSelector() string {
	selected := m.state.GetSelectedTier()

	var parts []string
	for _, tier := range models.Tiers() {
		name := tier.String()
		if tier == selected {
			parts = append(parts, styles.GetTierStyle(name).Render("▸ "+name))
		} else {
			parts = append(parts, styles.HelpStyle.Render("  "+name))
		}
	}

	selector := strings.Join(parts, "  ")
	hint := styles.HelpStyle.Render("  [t/T] cycle")

	return selector + hint + "\n"
}

// renderChartCard renders the generation count chart.
func (m *Model) renderChartCard() string {
	cardWidth := max(m.width-6, 40)

	gens := m.state.GetGenerations()

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	tierLabel := styles.GetTierStyle(m.state.GetSelectedTier().String()).
		Render(m.state.GetSelectedTier().String())
	rows = append(rows, fmt.Sprintf("%s %s  %s",
		titleIcon, styles.CardTitleStyle.Render("Generations"), tierLabel))
	rows = append(rows, "")

	switch {
	case gens.IsLoading && gens.Data == nil:
		rows = append(rows, "  "+components.RenderLoadingBar(max(cardWidth-12, 20), m.animationFrame))

	case gens.Err != nil && gens.Data == nil:
		rows = append(rows, "  "+styles.ErrorTextStyle.Render("Failed to load generations data"))
		rows = append(rows, "  "+styles.HelpStyle.Render(gens.Err.Error()))

	case len(gens.Data) == 0:
		rows = append(rows, "  "+styles.HelpStyle.Render("No generations in this window"))

	default:
		rows = append(rows, m.renderChart(gens.Data, cardWidth)...)
		if gens.Err != nil {
			rows = append(rows, "")
			rows = append(rows, "  "+styles.WarningTextStyle.Render("Refresh failed, showing last good data"))
		}
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderChart(records []models.GenerationRecord, cardWidth int) []string {
	var rows []string

	points := stats.TimeSeries(records)
	series := stats.CountSeries(points)

	chartWidth := max(cardWidth-12, 30)
	chartHeight := 8

	caption := ""
	if len(points) > 0 {
		caption = fmt.Sprintf("%s → %s (%d points)",
			points[0].Time, points[len(points)-1].Time, len(points))
	}

	chart := components.RenderLineChart(series, chartWidth, chartHeight, caption)

	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	var total int64
	for _, p := range points {
		total += p.Count
	}

	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  %s %s   %s",
		styles.HelpStyle.Render("Total:"),
		lipgloss.NewStyle().Bold(true).Render(stats.FormatCount(total)),
		components.RenderSparkline(series, min(len(series), 30)),
	))

	return rows
}

// renderSummaryCard renders aggregate usage metrics from the models channel.
func (m *Model) renderSummaryCard() string {
	cardWidth := max(m.width-6, 40)

	usage := m.state.GetModelsUsage()

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Secondary).Render("Σ")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Usage Summary")))
	rows = append(rows, "")

	switch {
	case usage.IsLoading && usage.Data == nil:
		rows = append(rows, "  "+components.RenderLoadingBar(max(cardWidth-12, 20), m.animationFrame))

	case usage.Err != nil && usage.Data == nil:
		rows = append(rows, "  "+styles.ErrorTextStyle.Render("Failed to load models usage data"))

	default:
		summary := stats.Summarize(usage.Data)
		rows = append(rows, m.renderSummaryRow("Total Requests", stats.FormatCount(summary.TotalRequests)))
		rows = append(rows, m.renderSummaryRow("Total Failures", stats.FormatCount(summary.TotalFailures)))
		rows = append(rows, m.renderSummaryRow("Success Rate",
			styles.GetRateStyle(summary.OverallSuccessRate).Render(stats.FormatPercent(summary.OverallSuccessRate))))
		rows = append(rows, m.renderSummaryRow("Avg Duration", stats.FormatMillis(summary.AvgDuration)))
	}

	if updated := m.state.GetLastUpdated(); !updated.IsZero() {
		rows = append(rows, "")
		rows = append(rows, "  "+styles.HelpStyle.Render("Updated "+updated.Format("15:04:05")))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderSummaryRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	return "  " + labelStyle.Render(label+":") + " " + value
}
