package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	if s.label != "Loading" {
		t.Error("Spinner label mismatch")
	}
}

func TestSpinner_Methods(t *testing.T) {
	s := NewSpinner("Init")

	s.SetLabel("Loading")
	if s.Label() != "Loading" {
		t.Errorf("Label = %s, want Loading", s.Label())
	}

	if s.View() == "" {
		t.Error("View returned empty")
	}

	if s.ViewWithLabel() == "" {
		t.Error("ViewWithLabel returned empty")
	}

	if s.Init() == nil {
		t.Error("Init should return command")
	}

	_, cmd := s.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Update should return command for tick")
	}

	if s.Tick() == nil {
		t.Error("Tick should return command")
	}

	if s.Spinner().Spinner.Frames == nil {
		t.Error("Spinner accessor failed")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	view := RenderSpinnerCentered(s, 20, 5)
	if view == "" {
		t.Error("RenderSpinnerCentered returned empty")
	}
}

func TestRenderLineChart(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	s := RenderLineChart(data, 20, 5, "Test")
	if s == "" {
		t.Error("RenderLineChart returned empty")
	}
}

func TestRenderLineChart_Empty(t *testing.T) {
	s := RenderLineChart(nil, 20, 5, "Test")
	if !strings.Contains(s, "No data") {
		t.Error("Empty chart should show no-data message")
	}
}

func TestRenderBarChart(t *testing.T) {
	values := []float64{10, 20}
	labels := []string{"gpt-a", "gpt-b"}
	s := RenderBarChart(values, labels, 40)
	if s == "" {
		t.Error("RenderBarChart returned empty")
	}
	if !strings.Contains(s, "gpt-a") {
		t.Error("Bar chart should include labels")
	}
}

func TestRenderSparkline(t *testing.T) {
	data := []float64{1, 2, 3}
	s := RenderSparkline(data, 10)
	if s == "" {
		t.Error("RenderSparkline returned empty")
	}
}

func TestRenderLegend(t *testing.T) {
	items := []LegendItem{
		{Label: "generations", Color: lipgloss.Color("#ffffff")},
	}
	s := RenderLegend(items)
	if !strings.Contains(s, "generations") {
		t.Error("RenderLegend should include labels")
	}
}

func TestNewRateBar(t *testing.T) {
	r := NewRateBar()
	view := r.View(99.5, "gpt-a", 60)
	if view == "" {
		t.Error("RateBar view returned empty")
	}

	compact := r.ViewCompact(85.0, 30)
	if compact == "" {
		t.Error("RateBar compact view returned empty")
	}
}

func TestRenderGradientBar(t *testing.T) {
	bar := RenderGradientBar(50, 20)
	if bar == "" {
		t.Error("RenderGradientBar returned empty")
	}
	if RenderGradientBar(50, 0) != "" {
		t.Error("zero width should render empty")
	}
}

func TestSimpleRateBar(t *testing.T) {
	s := SimpleRateBar(90, "gpt-a", 40)
	if !strings.Contains(s, "90.0%") {
		t.Errorf("SimpleRateBar should include percentage, got %q", s)
	}
}

func TestRenderLoadingBar(t *testing.T) {
	for frame := range 5 {
		if RenderLoadingBar(20, frame) == "" {
			t.Fatal("RenderLoadingBar returned empty")
		}
	}
}
