package insight

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/model"
)

// CategorySpend is one row of the expense breakdown.
type CategorySpend struct {
	Category         string          `json:"category"`
	Sum              decimal.Decimal `json:"sum"`
	TransactionCount int             `json:"transactionCount"`
	Percentage       float64         `json:"percentage"`
}

// Breakdown groups expenses by exact category label. Rows are ordered by
// sum descending; equal sums keep first-encounter order. Percentages are 0
// when there are no expenses.
func Breakdown(txs []model.Transaction) []CategorySpend {
	index := make(map[string]int)
	rows := make([]CategorySpend, 0)
	total := decimal.Zero

	for i := range txs {
		if !txs[i].IsExpense() {
			continue
		}
		pos, ok := index[txs[i].Category]
		if !ok {
			pos = len(rows)
			index[txs[i].Category] = pos
			rows = append(rows, CategorySpend{Category: txs[i].Category})
		}
		rows[pos].Sum = rows[pos].Sum.Add(txs[i].Amount)
		rows[pos].TransactionCount++
		total = total.Add(txs[i].Amount)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Sum.GreaterThan(rows[b].Sum)
	})

	if total.IsPositive() {
		hundred := decimal.NewFromInt(100)
		for i := range rows {
			rows[i].Percentage = rows[i].Sum.Mul(hundred).Div(total).InexactFloat64()
		}
	}
	return rows
}

// SpendMap is the breakdown keyed by category.
func SpendMap(rows []CategorySpend) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[r.Category] = r.Sum
	}
	return out
}
