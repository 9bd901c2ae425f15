package insight

import "github.com/shopspring/decimal"

// SavingsStatus classifies a savings goal projection.
type SavingsStatus string

const (
	SavingsNoGoal      SavingsStatus = "no_goal"
	SavingsAchieved    SavingsStatus = "achieved"
	SavingsOnTrack     SavingsStatus = "on_track"
	SavingsUnreachable SavingsStatus = "unreachable"
)

// SavingsProjection estimates progress toward a savings goal.
// MonthsToGoal is nil when the goal cannot be reached at the current rate
// or there is no goal.
type SavingsProjection struct {
	Goal                decimal.Decimal `json:"goal"`
	Current             decimal.Decimal `json:"current"`
	MonthlyContribution decimal.Decimal `json:"monthlyContribution"`
	ProgressPercent     float64         `json:"progressPercent"`
	MonthsToGoal        *int64          `json:"monthsToGoal"`
	Status              SavingsStatus   `json:"status"`
}

// ProjectSavings computes progress and the months needed to close the gap.
func ProjectSavings(goal, current, contribution decimal.Decimal) SavingsProjection {
	p := SavingsProjection{
		Goal:                goal,
		Current:             current,
		MonthlyContribution: contribution,
	}

	if !goal.IsPositive() {
		p.Status = SavingsNoGoal
		return p
	}

	p.ProgressPercent = current.Mul(decimal.NewFromInt(100)).Div(goal).InexactFloat64()

	switch {
	case current.GreaterThanOrEqual(goal):
		p.Status = SavingsAchieved
		zero := int64(0)
		p.MonthsToGoal = &zero
	case !contribution.IsPositive():
		p.Status = SavingsUnreachable
	default:
		p.Status = SavingsOnTrack
		months := goal.Sub(current).Div(contribution).Ceil().IntPart()
		p.MonthsToGoal = &months
	}
	return p
}
