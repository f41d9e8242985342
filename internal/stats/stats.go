// Package stats derives summary values and display series from raw metric
// records. Everything here is pure and synchronous; absent input is treated
// as empty.
package stats

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/a-linden/genboard-tui/internal/models"
)

// Summary holds the scalar values shown on the overview cards.
type Summary struct {
	TotalRequests      int64
	TotalFailures      int64
	OverallSuccessRate float64
	AvgDuration        float64
}

// Summarize aggregates per-model usage records. Empty input yields all
// zeroes; the success-rate and average guards keep NaN out of the UI.
func Summarize(records []models.ModelUsageRecord) Summary {
	s := Summary{
		TotalRequests: lo.SumBy(records, func(r models.ModelUsageRecord) int64 { return r.Requests }),
		TotalFailures: lo.SumBy(records, func(r models.ModelUsageRecord) int64 { return r.Failures }),
	}

	if s.TotalRequests > 0 {
		s.OverallSuccessRate = float64(s.TotalRequests-s.TotalFailures) / float64(s.TotalRequests) * 100
	}

	if len(records) > 0 {
		total := lo.SumBy(records, func(r models.ModelUsageRecord) float64 { return r.AvgDuration })
		s.AvgDuration = total / float64(len(records))
	}

	return s
}

// TimePoint is one chart-ready sample of generation volume.
type TimePoint struct {
	Time  string
	Count int64
	Tier  models.Tier
}

// TimeSeries converts generation records into display points, formatting the
// timestamp as a local hour:minute label. Input order is preserved; the
// backend already delivers chronological data.
func TimeSeries(records []models.GenerationRecord) []TimePoint {
	return lo.Map(records, func(r models.GenerationRecord, _ int) TimePoint {
		return TimePoint{
			Time:  r.Timestamp.Local().Format("15:04"),
			Count: r.Count,
			Tier:  r.UserTier,
		}
	})
}

// CountSeries extracts the raw counts for plotting.
func CountSeries(points []TimePoint) []float64 {
	return lo.Map(points, func(p TimePoint, _ int) float64 {
		return float64(p.Count)
	})
}

// FormatPercent renders a success rate to 1 decimal place.
func FormatPercent(v float64) string {
	if math.IsNaN(v) {
		v = 0
	}
	return fmt.Sprintf("%.1f%%", v)
}

// FormatMillis renders a duration in milliseconds with no decimals.
func FormatMillis(v float64) string {
	if math.IsNaN(v) {
		v = 0
	}
	return fmt.Sprintf("%.0fms", v)
}

// FormatCount renders a count with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
