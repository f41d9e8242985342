package models

// ModelUsageRecord represents aggregate performance for one model over the
// backend's own reporting window.
type ModelUsageRecord struct {
	Model       string  `json:"model"`
	Requests    int64   `json:"requests"`
	Failures    int64   `json:"failures"`
	SuccessRate float64 `json:"success_rate"`
	AvgDuration float64 `json:"avg_duration"`
}
