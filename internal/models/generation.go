package models

import "time"

// GenerationRecord represents generation-request volume for a tier at a
// point in time, as reported by the analytics backend.
type GenerationRecord struct {
	Timestamp time.Time `json:"timestamp"`
	UserTier  Tier      `json:"user_tier"`
	Count     int64     `json:"count"`
}
