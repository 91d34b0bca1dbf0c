package compliance

import "math"

type Standing string

const (
	GoodStanding Standing = "Good Standing"
	AtRisk       Standing = "At Risk"
	NonCompliant Standing = "Non-Compliant"
)

const (
	GoodStandingThreshold = 75
	AtRiskThreshold       = 65
)

// OverallStatus classifies a monthly completion percentage. Thresholds are
// inclusive: 75 is Good Standing, 65 is At Risk.
func OverallStatus(monthlyCompletion int) Standing {
	switch {
	case monthlyCompletion >= GoodStandingThreshold:
		return GoodStanding
	case monthlyCompletion >= AtRiskThreshold:
		return AtRisk
	default:
		return NonCompliant
	}
}

// Percent converts a ratio to a whole percentage, halves rounding up.
func Percent(ratio float64) int {
	return int(math.Floor(ratio*100 + 0.5))
}

// Snapshot is the derived compliance view of one user.
type Snapshot struct {
	DailyCompletion   int      `json:"dailyCompletion"`
	MonthlyCompletion int      `json:"monthlyCompletion"`
	OverallStatus     Standing `json:"overallStatus"`
}
