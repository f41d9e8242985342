package stats

import (
	"testing"
	"time"

	"github.com/a-linden/genboard-tui/internal/models"
)

func TestSummarize(t *testing.T) {
	records := []models.ModelUsageRecord{
		{Model: "gpt-a", Requests: 100, Failures: 5, SuccessRate: 95.0, AvgDuration: 250},
		{Model: "gpt-b", Requests: 50, Failures: 10, SuccessRate: 80.0, AvgDuration: 400},
	}

	s := Summarize(records)

	if s.TotalRequests != 150 {
		t.Errorf("TotalRequests = %d, want 150", s.TotalRequests)
	}
	if s.TotalFailures != 15 {
		t.Errorf("TotalFailures = %d, want 15", s.TotalFailures)
	}
	if s.OverallSuccessRate != 90.0 {
		t.Errorf("OverallSuccessRate = %v, want 90.0", s.OverallSuccessRate)
	}
	if s.AvgDuration != 325 {
		t.Errorf("AvgDuration = %v, want 325", s.AvgDuration)
	}
}

func TestSummarize_Empty(t *testing.T) {
	for name, records := range map[string][]models.ModelUsageRecord{
		"nil":   nil,
		"empty": {},
	} {
		s := Summarize(records)
		if s.TotalRequests != 0 || s.TotalFailures != 0 {
			t.Errorf("%s: totals = %d/%d, want 0/0", name, s.TotalRequests, s.TotalFailures)
		}
		if s.OverallSuccessRate != 0 {
			t.Errorf("%s: OverallSuccessRate = %v, want 0 (not NaN)", name, s.OverallSuccessRate)
		}
		if s.AvgDuration != 0 {
			t.Errorf("%s: AvgDuration = %v, want 0 (not NaN)", name, s.AvgDuration)
		}
	}
}

func TestSummarize_Bounds(t *testing.T) {
	// For any well-formed input (failures <= requests per record), the
	// derived totals keep the same invariant and the rate stays in [0,100].
	cases := [][]models.ModelUsageRecord{
		{{Model: "m1", Requests: 1, Failures: 0}},
		{{Model: "m1", Requests: 10, Failures: 10}},
		{{Model: "m1", Requests: 7, Failures: 3}, {Model: "m2", Requests: 0, Failures: 0}},
		{{Model: "m1", Requests: 1000000, Failures: 999999}, {Model: "m2", Requests: 5, Failures: 5}},
	}

	for i, records := range cases {
		s := Summarize(records)
		if s.TotalFailures > s.TotalRequests {
			t.Errorf("case %d: TotalFailures %d > TotalRequests %d", i, s.TotalFailures, s.TotalRequests)
		}
		if s.OverallSuccessRate < 0 || s.OverallSuccessRate > 100 {
			t.Errorf("case %d: OverallSuccessRate %v outside [0,100]", i, s.OverallSuccessRate)
		}
	}
}

func TestSummarize_MissingDurationTreatedAsZero(t *testing.T) {
	// A record without avg_duration decodes to zero and still counts
	// toward the average's denominator.
	records := []models.ModelUsageRecord{
		{Model: "m1", Requests: 10, Failures: 0, AvgDuration: 300},
		{Model: "m2", Requests: 10, Failures: 0},
	}
	s := Summarize(records)
	if s.AvgDuration != 150 {
		t.Errorf("AvgDuration = %v, want 150", s.AvgDuration)
	}
}

func TestTimeSeries(t *testing.T) {
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local)
	records := []models.GenerationRecord{
		{Timestamp: base, UserTier: models.TierPro, Count: 12},
		{Timestamp: base.Add(5 * time.Minute), UserTier: models.TierPro, Count: 7},
		{Timestamp: base.Add(10 * time.Minute), UserTier: models.TierPro, Count: 31},
	}

	points := TimeSeries(records)
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}

	// Order preserved, not re-sorted.
	wantTimes := []string{"09:00", "09:05", "09:10"}
	for i, want := range wantTimes {
		if points[i].Time != want {
			t.Errorf("points[%d].Time = %q, want %q", i, points[i].Time, want)
		}
	}
	if points[2].Count != 31 || points[2].Tier != models.TierPro {
		t.Errorf("unexpected last point: %+v", points[2])
	}
}

func TestTimeSeries_Empty(t *testing.T) {
	if points := TimeSeries(nil); len(points) != 0 {
		t.Errorf("TimeSeries(nil) returned %d points", len(points))
	}
}

func TestCountSeries(t *testing.T) {
	points := []TimePoint{{Count: 3}, {Count: 0}, {Count: 12}}
	series := CountSeries(points)
	want := []float64{3, 0, 12}
	if len(series) != len(want) {
		t.Fatalf("got %d values, want %d", len(series), len(want))
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("series[%d] = %v, want %v", i, series[i], want[i])
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{83.333, "83.3%"},
		{90.0, "90.0%"},
		{0, "0.0%"},
		{100, "100.0%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMillis(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{123.6, "124ms"},
		{250, "250ms"},
		{0, "0ms"},
		{325.2, "325ms"},
	}
	for _, tt := range tests {
		if got := FormatMillis(tt.in); got != tt.want {
			t.Errorf("FormatMillis(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{950, "950"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.in); got != tt.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
