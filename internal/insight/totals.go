package insight

import (
	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/model"
)

// Totals are the ledger-wide sums. Money stays exact; ratios are floats.
type Totals struct {
	Income           decimal.Decimal `json:"totalIncome"`
	Expenses         decimal.Decimal `json:"totalExpenses"`
	NetSavings       decimal.Decimal `json:"netSavings"`
	SavingsRate      float64         `json:"savingsRate"`
	ExpenseRatio     float64         `json:"expenseRatio"`
	TransactionCount int             `json:"transactionCount"`
}

// HasIncome reports whether any income was recorded. Ratio terms are
// meaningless without it.
func (t Totals) HasIncome() bool {
	return t.Income.IsPositive()
}

// ComputeTotals sums income and expenses. NetSavings is always exactly
// Income minus Expenses.
func ComputeTotals(txs []model.Transaction) Totals {
	var out Totals
	for i := range txs {
		switch txs[i].Type {
		case model.TransactionIncome:
			out.Income = out.Income.Add(txs[i].Amount)
		case model.TransactionExpense:
			out.Expenses = out.Expenses.Add(txs[i].Amount)
		}
	}
	out.NetSavings = out.Income.Sub(out.Expenses)
	out.TransactionCount = len(txs)

	if out.HasIncome() {
		out.SavingsRate = out.NetSavings.Div(out.Income).InexactFloat64()
		out.ExpenseRatio = out.Expenses.Div(out.Income).InexactFloat64()
	}
	return out
}
