package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/a-linden/genboard-tui/internal/logger"
	"github.com/a-linden/genboard-tui/internal/ui/styles"
)

// RateBar renders a success-rate progress bar with label and percentage.
type RateBar struct {
	progress progress.Model
}

// NewRateBar creates a new rate bar with gradient colors.
func NewRateBar() RateBar {
	p := progress.New(
		progress.WithScaledGradient("#ff6b6b", "#51cf66"),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	return RateBar{progress: p}
}

// SetWidth sets the progress bar width.
func (r *RateBar) SetWidth(width int) {
	r.progress.Width = width
}

// View renders the rate bar with percentage and label.
func (r RateBar) View(percent float64, label string, width int) string {
	barWidth := width - 30 // Reserve space for label and percentage
	if barWidth < 10 {
		barWidth = 10
	}
	r.progress.Width = barWidth

	bar := r.progress.ViewAs(percent / 100)

	percentStyle := styles.GetRateStyle(percent)
	percentStr := percentStyle.Width(6).Align(lipgloss.Right).Render(fmt.Sprintf("%.1f%%", percent))

	labelStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
	labelStr := labelStyle.Width(20).Render(label)

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		labelStr,
		bar,
		" ",
		percentStr,
	)
}

// ViewCompact renders a compact version without label.
func (r RateBar) ViewCompact(percent float64, width int) string {
	barWidth := width - 8
	if barWidth < 5 {
		barWidth = 5
	}
	r.progress.Width = barWidth

	bar := r.progress.ViewAs(percent / 100)
	percentStyle := styles.GetRateStyle(percent)
	percentStr := percentStyle.Render(fmt.Sprintf("%.1f%%", percent))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

// RenderGradientBar renders just the bar part with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#ff6b6b", "#51cf66", t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// SimpleRateBar renders a simple ASCII progress bar with gradient colors.
func SimpleRateBar(percent float64, label string, width int) string {
	labelWidth := len(label) + 1
	percentWidth := 6
	barWidth := width - labelWidth - percentWidth - 4

	if barWidth < 5 {
		barWidth = 5
	}

	bar := RenderGradientBar(percent, barWidth)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	percentStr := styles.GetRateStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f%%", percent))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, percentStr)
}

// RenderLoadingBar renders a shimmering placeholder bar while data loads.
func RenderLoadingBar(width int, frame int) string {
	if width < 10 {
		width = 10
	}

	cycle := 120

	t := float64(frame%cycle) / float64(cycle)
	var p float64
	if t < 0.5 {
		p = t * 2
	} else {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(width))

	var barChars []string
	for i := 0; i < width; i++ {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}

		var char string
		var style lipgloss.Style

		if dist < 3 {
			char = "▓"
			style = lipgloss.NewStyle().Foreground(styles.Primary)
		} else if dist < 5 {
			char = "▒"
			style = lipgloss.NewStyle().Foreground(styles.TextSecondary)
		} else {
			char = "░"
			style = lipgloss.NewStyle().Foreground(styles.BgLight)
		}

		barChars = append(barChars, style.Render(char))
	}

	return strings.Join(barChars, "")
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
