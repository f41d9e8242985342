// Package models defines data structures and domain types.
package models

import "fmt"

// Tier is a user-plan category used to filter generation volume.
type Tier string

const (
	// TierAll selects generation volume across every plan.
	TierAll Tier = "all"
	// TierFree selects free-plan generation volume.
	TierFree Tier = "free"
	// TierPro selects pro-plan generation volume.
	TierPro Tier = "pro"
	// TierEnterprise selects enterprise-plan generation volume.
	TierEnterprise Tier = "enterprise"
)

// Tiers returns all tiers in display order.
func Tiers() []Tier {
	return []Tier{TierAll, TierFree, TierPro, TierEnterprise}
}

// ParseTier validates a tier string.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

// Valid reports whether the tier is one of the allowed values.
func (t Tier) Valid() bool {
	switch t {
	case TierAll, TierFree, TierPro, TierEnterprise:
		return true
	}
	return false
}

// String returns the tier as sent on the wire.
func (t Tier) String() string {
	return string(t)
}

// Next returns the tier following t in display order, wrapping around.
func (t Tier) Next() Tier {
	tiers := Tiers()
	for i, candidate := range tiers {
		if candidate == t {
			return tiers[(i+1)%len(tiers)]
		}
	}
	return TierAll
}

// Prev returns the tier preceding t in display order, wrapping around.
func (t Tier) Prev() Tier {
	tiers := Tiers()
	for i, candidate := range tiers {
		if candidate == t {
			return tiers[(i-1+len(tiers))%len(tiers)]
		}
	}
	return TierAll
}
