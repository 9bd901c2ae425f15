package insight

import "github.com/shopspring/decimal"

const (
	scoreBase = 50
	scoreMin  = 0
	scoreMax  = 100
)

// band awards points when a value clears a threshold. Bands are checked in
// order and the first match wins.
type band struct {
	threshold float64
	points    int
}

var (
	savingsRateBands = []band{{0.20, 40}, {0.10, 20}, {0.05, 10}}
	savingsRateLoss  = -20

	diversityBands = []band{{5, 20}, {3, 10}}

	incomeBands = []band{{50000, 20}, {20000, 10}}

	expenseRatioBands = []band{{0.7, 20}, {0.8, 10}}
	expenseRatioLimit = 1.0
	expenseRatioLoss  = -10
)

// HealthScore rates the ledger from 0 to 100. Ratio terms are skipped when
// there is no income.
func HealthScore(t Totals, expenseCategories int) int {
	score := scoreBase

	if t.HasIncome() {
		score += atLeast(savingsRateBands, t.SavingsRate)
		if t.SavingsRate < 0 {
			score += savingsRateLoss
		}

		score += atMost(expenseRatioBands, t.ExpenseRatio)
		if t.ExpenseRatio >= expenseRatioLimit {
			score += expenseRatioLoss
		}
	}

	score += atLeast(diversityBands, float64(expenseCategories))
	score += above(incomeBands, t.Income)

	return clamp(score, scoreMin, scoreMax)
}

func atLeast(bands []band, v float64) int {
	for _, b := range bands {
		if v >= b.threshold {
			return b.points
		}
	}
	return 0
}

func atMost(bands []band, v float64) int {
	for _, b := range bands {
		if v <= b.threshold {
			return b.points
		}
	}
	return 0
}

func above(bands []band, v decimal.Decimal) int {
	for _, b := range bands {
		if v.GreaterThan(decimal.NewFromFloat(b.threshold)) {
			return b.points
		}
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
