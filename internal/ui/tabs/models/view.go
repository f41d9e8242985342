package models

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	domain "github.com/a-linden/genboard-tui/internal/models"
	"github.com/a-linden/genboard-tui/internal/stats"
	"github.com/a-linden/genboard-tui/internal/ui/components"
	"github.com/a-linden/genboard-tui/internal/ui/styles"
)

// View renders the models tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	// The usage snapshot may have resolved while another tab was active,
	// in which case no update message reached this tab.
	m.reloadRows()

	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderTableCard())
	sections = append(sections, m.renderVolumeCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

// renderTitle renders the models tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Model Usage")
	subtitle := styles.HelpStyle.Render("Requests and performance per model")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderTableCard renders the per-model usage table with the selected
// model's success rate below it.
func (m *Model) renderTableCard() string {
	cardWidth := max(m.width-6, 56)

	usage := m.state.GetModelsUsage()

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Models")))
	rows = append(rows, "")

	switch {
	case usage.IsLoading && usage.Data == nil:
		rows = append(rows, "  "+components.RenderLoadingBar(max(cardWidth-12, 20), m.animationFrame))

	case usage.Err != nil && usage.Data == nil:
		rows = append(rows, "  "+styles.ErrorTextStyle.Render("Failed to load models usage data"))
		rows = append(rows, "  "+styles.HelpStyle.Render(usage.Err.Error()))

	case len(usage.Data) == 0:
		rows = append(rows, "  "+styles.HelpStyle.Render("No model activity in this window"))

	default:
		rows = append(rows, m.table.View())
		rows = append(rows, "")
		rows = append(rows, m.renderSelectedRate(cardWidth))
		if usage.Err != nil {
			rows = append(rows, "")
			rows = append(rows, "  "+styles.WarningTextStyle.Render("Refresh failed, showing last good data"))
		}
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderSelectedRate renders a gradient success-rate bar for the model
// under the table cursor.
func (m *Model) renderSelectedRate(cardWidth int) string {
	records := m.sortedRecords()
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(records) {
		return ""
	}

	rec := records[cursor]
	return "  " + m.rateBar.View(rec.SuccessRate, rec.Model, max(cardWidth-36, 20))
}

// renderVolumeCard renders a bar chart of request volume per model.
func (m *Model) renderVolumeCard() string {
	cardWidth := max(m.width-6, 56)

	usage := m.state.GetModelsUsage()
	if len(usage.Data) == 0 {
		return ""
	}

	records := m.sortedRecords()

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Secondary).Render("▥")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Request Volume")))
	rows = append(rows, "")
	rows = append(rows, components.RenderBarChart(requestValues(records), modelLabels(records), max(cardWidth-8, 40)))
	rows = append(rows, "")
	rows = append(rows, m.renderTotals(records))
	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderTotals(records []domain.ModelUsageRecord) string {
	summary := stats.Summarize(records)

	total := styles.HelpDescStyle.Render("Total: ") + stats.FormatCount(summary.TotalRequests)
	rate := styles.HelpDescStyle.Render("Success: ") +
		styles.GetRateStyle(summary.OverallSuccessRate).Render(stats.FormatPercent(summary.OverallSuccessRate))
	avg := styles.HelpDescStyle.Render("Avg: ") + stats.FormatMillis(summary.AvgDuration)

	return "  " + total + "   " + rate + "   " + avg
}

func requestValues(records []domain.ModelUsageRecord) []float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = float64(r.Requests)
	}
	return values
}

func modelLabels(records []domain.ModelUsageRecord) []string {
	labels := make([]string, len(records))
	for i, r := range records {
		labels[i] = r.Model
	}
	return labels
}
