// Package risk derives a case's risk tier from its incident category and
// maps tiers to approver response windows.
package risk

import "time"

type Tier string

const (
	TierLow      Tier = "low"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
	TierUnknown  Tier = "unknown"
)

// Category labels match the reporting form enum exactly, including the
// en dash in the Schedule 1 entries. Lookup is case-sensitive.
var tierByCategory = map[string]Tier{
	"First aid": TierLow,
	"Near Miss": TierLow,

	"Lost Time Injury (Other than Bodily Injury – Schedule 1)": TierHigh,
	"Environmental Incident":                                   TierHigh,
	"Occupational Illness":                                     TierHigh,
	"Security Impact":                                          TierHigh,
	"Property Damage":                                          TierHigh,

	"Fatal": TierCritical,
	"Lost Time Injury (Bodily Injury – Schedule 1)": TierCritical,
	"Dangerous Occurrence":                          TierCritical,
}

// Classify maps an incident category to its risk tier. Categories outside
// the catalogue, including free-text "Other", classify as TierUnknown;
// unknown is terminal and needs a manual override, never a guess.
func Classify(category string) Tier {
	if tier, ok := tierByCategory[category]; ok {
		return tier
	}
	return TierUnknown
}

func (t Tier) String() string { return string(t) }

// SLA returns the advisory approver response window for the tier. The
// second return is false when the tier carries no firm window.
func (t Tier) SLA() (time.Duration, bool) {
	switch t {
	case TierHigh:
		return 24 * time.Hour, true
	case TierCritical:
		return 12 * time.Hour, true
	default:
		return 0, false
	}
}

// ResponseDeadline computes the advisory deadline from the case creation
// time, in the creation time's own location. Nil when the tier has no SLA.
func (t Tier) ResponseDeadline(createdAt time.Time) *time.Time {
	window, ok := t.SLA()
	if !ok {
		return nil
	}
	deadline := createdAt.Add(window)
	return &deadline
}
