// Package insight derives financial reports from a snapshot of a user's
// ledger. Everything here is a pure computation over its inputs: no I/O,
// no shared state, safe for concurrent use.
package insight

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/model"
)

// InvalidInputError reports a structurally malformed engine input.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// Snapshot is the immutable input to one report.
type Snapshot struct {
	Transactions   []model.Transaction
	Budgets        []BudgetLine
	SavingsGoal    *decimal.Decimal
	MonthlyBudget  *decimal.Decimal
	CurrentSavings *decimal.Decimal
}

// Options controls how a report is computed.
type Options struct {
	Now         time.Time
	Granularity Granularity
	Window      int
	// MonthlyContribution overrides the observed mean monthly net savings.
	MonthlyContribution *decimal.Decimal
	// WholeHistory compares the monthly budget against all expenses instead
	// of the current month's.
	WholeHistory bool
	Thresholds   *Thresholds
	Rules        []Rule
}

// DefaultOptions returns a 30 day daily trend ending now.
func DefaultOptions() Options {
	return Options{
		Now:         time.Now().UTC(),
		Granularity: Daily,
		Window:      30,
	}
}

// Report is the derived view of a ledger. It is never persisted.
type Report struct {
	GeneratedAt        time.Time                  `json:"generatedAt"`
	Totals             Totals                     `json:"totals"`
	Categories         []CategorySpend            `json:"categories"`
	CategorySpend      map[string]decimal.Decimal `json:"categorySpend"`
	Budgets            []BudgetUtilization        `json:"budgets"`
	Trend              Trend                      `json:"trend"`
	HealthScore        int                        `json:"healthScore"`
	Insights           []Insight                  `json:"insights"`
	Savings            *SavingsProjection         `json:"savings,omitempty"`
	PeriodExpenses     decimal.Decimal            `json:"periodExpenses"`
	PredictedNextMonth decimal.Decimal            `json:"predictedNextMonth"`
}

// Compute builds the full report. It returns either a complete report or an
// error, never a partial one.
func Compute(s Snapshot, opts Options) (*Report, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	thresholds := DefaultThresholds()
	if opts.Thresholds != nil {
		thresholds = *opts.Thresholds
	}
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules
	}

	for i := range s.Transactions {
		if !s.Transactions[i].Type.IsValid() {
			return nil, &InvalidInputError{
				Field:  fmt.Sprintf("transactions[%d].type", i),
				Reason: "must be income or expense",
			}
		}
	}

	trend, err := BuildTrend(s.Transactions, opts.Granularity, opts.Now, opts.Window)
	if err != nil {
		return nil, err
	}

	week, err := BuildTrend(s.Transactions, Daily, opts.Now, 7)
	if err != nil {
		return nil, err
	}

	totals := ComputeTotals(s.Transactions)
	categories := Breakdown(s.Transactions)
	budgets := Utilization(s.Transactions, s.Budgets)
	score := HealthScore(totals, len(categories))
	avgExpense, avgNet := monthlyAverages(s.Transactions)

	current := totals.NetSavings
	if s.CurrentSavings != nil {
		current = *s.CurrentSavings
	}

	var projection *SavingsProjection
	if s.SavingsGoal != nil {
		contribution := avgNet
		if opts.MonthlyContribution != nil {
			contribution = *opts.MonthlyContribution
		}
		p := ProjectSavings(*s.SavingsGoal, current, contribution)
		projection = &p
	}

	period := totals.Expenses
	if !opts.WholeHistory {
		period = monthExpenses(s.Transactions, opts.Now)
	}

	facts := Facts{
		Totals:            totals,
		Score:             score,
		Categories:        categories,
		Budgets:           budgets,
		MonthlyBudget:     s.MonthlyBudget,
		PeriodExpenses:    period,
		CurrentSavings:    current,
		Savings:           projection,
		AvgMonthlyExpense: avgExpense,
	}
	weekNet := decimal.Zero
	for _, b := range week.Buckets {
		weekNet = weekNet.Add(b.Net)
	}
	facts.WeeklyNetAverage = weekNet.Div(decimal.NewFromInt(int64(len(week.Buckets))))

	return &Report{
		GeneratedAt:        opts.Now,
		Totals:             totals,
		Categories:         categories,
		CategorySpend:      SpendMap(categories),
		Budgets:            budgets,
		Trend:              trend,
		HealthScore:        score,
		Insights:           Evaluate(rules, facts, thresholds),
		Savings:            projection,
		PeriodExpenses:     period,
		PredictedNextMonth: avgExpense,
	}, nil
}

func monthExpenses(txs []model.Transaction, now time.Time) decimal.Decimal {
	start := periodStart(Monthly, now)
	sum := decimal.Zero
	for i := range txs {
		if txs[i].IsExpense() && periodStart(Monthly, txs[i].Date).Equal(start) {
			sum = sum.Add(txs[i].Amount)
		}
	}
	return sum
}
