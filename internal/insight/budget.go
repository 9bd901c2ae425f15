package insight

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/model"
)

// BudgetLine is a category ceiling as the engine sees it.
type BudgetLine struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// BudgetUtilization reports spending against one ceiling.
type BudgetUtilization struct {
	Category    string          `json:"category"`
	Ceiling     decimal.Decimal `json:"ceiling"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed float64         `json:"percentUsed"`
	Exceeded    bool            `json:"exceeded"`
}

// CollapseBudgets turns stored budgets into one line per category. When a
// category appears more than once the most recently updated row wins, ties
// going to the greater id. Lines are sorted by category.
func CollapseBudgets(budgets []model.Budget) []BudgetLine {
	ordered := make([]model.Budget, len(budgets))
	copy(ordered, budgets)
	sort.SliceStable(ordered, func(a, b int) bool {
		if !ordered[a].UpdatedAt.Equal(ordered[b].UpdatedAt) {
			return ordered[a].UpdatedAt.Before(ordered[b].UpdatedAt)
		}
		return ordered[a].ID < ordered[b].ID
	})

	latest := make(map[string]decimal.Decimal, len(ordered))
	for _, b := range ordered {
		latest[b.Category] = b.Amount
	}
	return linesFromMap(latest)
}

func linesFromMap(m map[string]decimal.Decimal) []BudgetLine {
	lines := make([]BudgetLine, 0, len(m))
	for category, amount := range m {
		lines = append(lines, BudgetLine{Category: category, Amount: amount})
	}
	sort.Slice(lines, func(a, b int) bool {
		return lines[a].Category < lines[b].Category
	})
	return lines
}

// Utilization measures expense spending against each budget line.
// Categories without a line get no entry. PercentUsed is capped at 100 and
// is 0 for a ceiling that is not positive.
func Utilization(txs []model.Transaction, lines []BudgetLine) []BudgetUtilization {
	spent := make(map[string]decimal.Decimal)
	for i := range txs {
		if txs[i].IsExpense() {
			spent[txs[i].Category] = spent[txs[i].Category].Add(txs[i].Amount)
		}
	}

	hundred := decimal.NewFromInt(100)
	out := make([]BudgetUtilization, 0, len(lines))
	for _, line := range lines {
		s := spent[line.Category]
		u := BudgetUtilization{
			Category:  line.Category,
			Ceiling:   line.Amount,
			Spent:     s,
			Remaining: line.Amount.Sub(s),
		}
		if line.Amount.IsPositive() {
			pct := s.Mul(hundred).Div(line.Amount)
			if pct.GreaterThan(hundred) {
				pct = hundred
			}
			u.PercentUsed = pct.InexactFloat64()
			u.Exceeded = s.GreaterThan(line.Amount)
		}
		out = append(out, u)
	}
	return out
}
