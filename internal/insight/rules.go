package insight

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Severity of an insight message.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Insight is one piece of commentary on a report.
type Insight struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Thresholds holds the tunable limits the rule table checks against.
type Thresholds struct {
	HealthExcellent  int
	HealthGood       int
	TopCategoryShare float64 // percent of expenses
	SavingsTarget    float64 // savings rate
	NeedsShare       float64 // top category as a share of income
	EmergencyMonths  int64
	EmergencyFloor   int64
	HighExpenseRatio float64
	LowSavingsRate   float64
	BudgetSavings    float64 // savings as a share of the monthly budget
}

// DefaultThresholds returns the stock limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HealthExcellent:  80,
		HealthGood:       60,
		TopCategoryShare: 40,
		SavingsTarget:    0.20,
		NeedsShare:       0.50,
		EmergencyMonths:  6,
		EmergencyFloor:   3,
		HighExpenseRatio: 0.90,
		LowSavingsRate:   0.05,
		BudgetSavings:    0.20,
	}
}

// Facts are the computed values rules are evaluated against.
type Facts struct {
	Totals            Totals
	Score             int
	Categories        []CategorySpend
	Budgets           []BudgetUtilization
	MonthlyBudget     *decimal.Decimal
	PeriodExpenses    decimal.Decimal
	CurrentSavings    decimal.Decimal
	Savings           *SavingsProjection
	AvgMonthlyExpense decimal.Decimal
	WeeklyNetAverage  decimal.Decimal
}

// Top returns the largest expense category, or nil.
func (f Facts) Top() *CategorySpend {
	if len(f.Categories) == 0 {
		return nil
	}
	return &f.Categories[0]
}

func (f Facts) exceededBudgets() []string {
	var names []string
	for _, b := range f.Budgets {
		if b.Exceeded {
			names = append(names, b.Category)
		}
	}
	return names
}

// fundMonths is how many months of average spending current savings cover.
func (f Facts) fundMonths() decimal.Decimal {
	if !f.AvgMonthlyExpense.IsPositive() {
		return decimal.Zero
	}
	return f.CurrentSavings.Div(f.AvgMonthlyExpense)
}

// Rule emits an insight when its condition holds. Message is a fmt format
// filled from Args.
type Rule struct {
	ID       string
	Severity Severity
	Title    string
	Message  string
	When     func(Facts, Thresholds) bool
	Args     func(Facts, Thresholds) []any
}

// DefaultRules is the stock rule table. Order is the emission order.
var DefaultRules = []Rule{
	{
		ID:       "health_excellent",
		Severity: SeveritySuccess,
		Title:    "Excellent financial health",
		Message:  "Your financial health score is %d/100. Keep it up.",
		When:     func(f Facts, t Thresholds) bool { return f.Score >= t.HealthExcellent },
		Args:     func(f Facts, _ Thresholds) []any { return []any{f.Score} },
	},
	{
		ID:       "health_good",
		Severity: SeverityInfo,
		Title:    "Good financial health",
		Message:  "Your financial health score is %d/100. A few changes could lift it above %d.",
		When: func(f Facts, t Thresholds) bool {
			return f.Score >= t.HealthGood && f.Score < t.HealthExcellent
		},
		Args: func(f Facts, t Thresholds) []any { return []any{f.Score, t.HealthExcellent} },
	},
	{
		ID:       "health_low",
		Severity: SeverityWarning,
		Title:    "Financial health needs attention",
		Message:  "Your financial health score is %d/100. Review your spending and savings.",
		When:     func(f Facts, t Thresholds) bool { return f.Score < t.HealthGood },
		Args:     func(f Facts, _ Thresholds) []any { return []any{f.Score} },
	},
	{
		ID:       "no_income",
		Severity: SeverityInfo,
		Title:    "No income recorded",
		Message:  "Add income transactions to see insights.",
		When:     func(f Facts, _ Thresholds) bool { return !f.Totals.HasIncome() },
	},
	{
		ID:       "cash_flow_positive",
		Severity: SeveritySuccess,
		Title:    "Positive cash flow",
		Message:  "You are saving %.1f%% of your income.",
		When: func(f Facts, _ Thresholds) bool {
			return f.Totals.HasIncome() && f.Totals.NetSavings.IsPositive()
		},
		Args: func(f Facts, _ Thresholds) []any { return []any{f.Totals.SavingsRate * 100} },
	},
	{
		ID:       "cash_flow_negative",
		Severity: SeverityCritical,
		Title:    "Spending exceeds income",
		Message:  "You spent %s more than you earned.",
		When: func(f Facts, _ Thresholds) bool {
			return f.Totals.HasIncome() && f.Totals.NetSavings.IsNegative()
		},
		Args: func(f Facts, _ Thresholds) []any { return []any{f.Totals.NetSavings.Neg().StringFixed(2)} },
	},
	{
		ID:       "top_category_dominant",
		Severity: SeverityWarning,
		Title:    "One category dominates spending",
		Message:  "%s takes %.1f%% of your expenses. Consider trimming it.",
		When: func(f Facts, t Thresholds) bool {
			top := f.Top()
			return top != nil && top.Percentage > t.TopCategoryShare
		},
		Args: func(f Facts, _ Thresholds) []any { return []any{f.Top().Category, f.Top().Percentage} },
	},
	{
		ID:       "top_category",
		Severity: SeverityInfo,
		Title:    "Top spending category",
		Message:  "You spend the most on %s (%s).",
		When:     func(f Facts, _ Thresholds) bool { return f.Top() != nil },
		Args: func(f Facts, _ Thresholds) []any {
			return []any{f.Top().Category, f.Top().Sum.StringFixed(2)}
		},
	},
	{
		ID:       "spending_forecast",
		Severity: SeverityInfo,
		Title:    "Next month's spending",
		Message:  "Predicted next month spending: %s.",
		When:     func(f Facts, _ Thresholds) bool { return f.AvgMonthlyExpense.IsPositive() },
		Args:     func(f Facts, _ Thresholds) []any { return []any{f.AvgMonthlyExpense.StringFixed(2)} },
	},
	{
		ID:       "fifty_thirty_twenty_met",
		Severity: SeveritySuccess,
		Title:    "50/30/20 rule met",
		Message:  "You save at least %.0f%% of income and no single category takes more than %.0f%% of it.",
		When: func(f Facts, t Thresholds) bool {
			return f.Totals.HasIncome() && f.Totals.SavingsRate >= t.SavingsTarget && topIncomeShare(f) <= t.NeedsShare
		},
		Args: func(_ Facts, t Thresholds) []any { return []any{t.SavingsTarget * 100, t.NeedsShare * 100} },
	},
	{
		ID:       "fifty_thirty_twenty_missed",
		Severity: SeverityInfo,
		Title:    "50/30/20 rule",
		Message:  "Aim for %.0f%% needs, 30%% wants and %.0f%% savings. You currently save %.1f%%.",
		When: func(f Facts, t Thresholds) bool {
			return f.Totals.HasIncome() && (f.Totals.SavingsRate < t.SavingsTarget || topIncomeShare(f) > t.NeedsShare)
		},
		Args: func(f Facts, t Thresholds) []any {
			return []any{t.NeedsShare * 100, t.SavingsTarget * 100, f.Totals.SavingsRate * 100}
		},
	},
	{
		ID:       "monthly_budget_over",
		Severity: SeverityWarning,
		Title:    "Over monthly budget",
		Message:  "You spent %s against a monthly budget of %s. Cut down on non-essentials.",
		When: func(f Facts, _ Thresholds) bool {
			return f.MonthlyBudget != nil && f.MonthlyBudget.IsPositive() && f.PeriodExpenses.GreaterThan(*f.MonthlyBudget)
		},
		Args: func(f Facts, _ Thresholds) []any {
			return []any{f.PeriodExpenses.StringFixed(2), f.MonthlyBudget.StringFixed(2)}
		},
	},
	{
		ID:       "monthly_budget_within",
		Severity: SeveritySuccess,
		Title:    "Within monthly budget",
		Message:  "You spent %s of your %s monthly budget.",
		When: func(f Facts, _ Thresholds) bool {
			return f.MonthlyBudget != nil && f.MonthlyBudget.IsPositive() && !f.PeriodExpenses.GreaterThan(*f.MonthlyBudget)
		},
		Args: func(f Facts, _ Thresholds) []any {
			return []any{f.PeriodExpenses.StringFixed(2), f.MonthlyBudget.StringFixed(2)}
		},
	},
	{
		ID:       "savings_below_budget_share",
		Severity: SeverityInfo,
		Title:    "Save more of your budget",
		Message:  "Try saving at least %.0f%% of your monthly budget.",
		When: func(f Facts, t Thresholds) bool {
			return f.MonthlyBudget != nil && f.MonthlyBudget.IsPositive() &&
				f.CurrentSavings.LessThan(f.MonthlyBudget.Mul(decimal.NewFromFloat(t.BudgetSavings)))
		},
		Args: func(_ Facts, t Thresholds) []any { return []any{t.BudgetSavings * 100} },
	},
	{
		ID:       "savings_on_track",
		Severity: SeveritySuccess,
		Title:    "Savings are on track",
		Message:  "Your savings of %s are at least %.0f%% of your monthly budget.",
		When: func(f Facts, t Thresholds) bool {
			return f.MonthlyBudget != nil && f.MonthlyBudget.IsPositive() &&
				f.CurrentSavings.GreaterThanOrEqual(f.MonthlyBudget.Mul(decimal.NewFromFloat(t.BudgetSavings)))
		},
		Args: func(f Facts, t Thresholds) []any { return []any{f.CurrentSavings.StringFixed(2), t.BudgetSavings * 100} },
	},
	{
		ID:       "budgets_exceeded",
		Severity: SeverityWarning,
		Title:    "Category budgets exceeded",
		Message:  "You went over budget on %s.",
		When:     func(f Facts, _ Thresholds) bool { return len(f.exceededBudgets()) > 0 },
		Args: func(f Facts, _ Thresholds) []any {
			return []any{strings.Join(f.exceededBudgets(), ", ")}
		},
	},
	{
		ID:       "savings_goal_achieved",
		Severity: SeveritySuccess,
		Title:    "Savings goal reached",
		Message:  "You have saved %s, reaching your goal of %s.",
		When: func(f Facts, _ Thresholds) bool {
			return f.Savings != nil && f.Savings.Status == SavingsAchieved
		},
		Args: func(f Facts, _ Thresholds) []any {
			return []any{f.Savings.Current.StringFixed(2), f.Savings.Goal.StringFixed(2)}
		},
	},
	{
		ID:       "savings_goal_progress",
		Severity: SeverityInfo,
		Title:    "Savings goal progress",
		Message:  "You are %.1f%% of the way to your savings goal%s.",
		When: func(f Facts, _ Thresholds) bool {
			return f.Savings != nil && (f.Savings.Status == SavingsOnTrack || f.Savings.Status == SavingsUnreachable)
		},
		Args: func(f Facts, _ Thresholds) []any {
			eta := ". Increase your monthly savings to get there"
			if f.Savings.MonthsToGoal != nil {
				eta = fmt.Sprintf(" and could reach it in %d months", *f.Savings.MonthsToGoal)
			}
			return []any{f.Savings.ProgressPercent, eta}
		},
	},
	{
		ID:       "emergency_fund_low",
		Severity: SeverityWarning,
		Title:    "Emergency fund is thin",
		Message:  "Your savings cover %s months of expenses. Build toward %d months.",
		When: func(f Facts, t Thresholds) bool {
			return f.AvgMonthlyExpense.IsPositive() && f.fundMonths().LessThan(decimal.NewFromInt(t.EmergencyFloor))
		},
		Args: func(f Facts, t Thresholds) []any { return []any{f.fundMonths().StringFixed(1), t.EmergencyMonths} },
	},
	{
		ID:       "emergency_fund_building",
		Severity: SeverityInfo,
		Title:    "Emergency fund is growing",
		Message:  "Your savings cover %s months of expenses. The usual target is %d months.",
		When: func(f Facts, t Thresholds) bool {
			m := f.fundMonths()
			return f.AvgMonthlyExpense.IsPositive() &&
				m.GreaterThanOrEqual(decimal.NewFromInt(t.EmergencyFloor)) &&
				m.LessThan(decimal.NewFromInt(t.EmergencyMonths))
		},
		Args: func(f Facts, t Thresholds) []any { return []any{f.fundMonths().StringFixed(1), t.EmergencyMonths} },
	},
	{
		ID:       "emergency_fund_ok",
		Severity: SeveritySuccess,
		Title:    "Emergency fund in place",
		Message:  "Your savings cover at least %d months of expenses.",
		When: func(f Facts, t Thresholds) bool {
			return f.AvgMonthlyExpense.IsPositive() && f.fundMonths().GreaterThanOrEqual(decimal.NewFromInt(t.EmergencyMonths))
		},
		Args: func(_ Facts, t Thresholds) []any { return []any{t.EmergencyMonths} },
	},
	{
		ID:       "investment_opportunity",
		Severity: SeverityInfo,
		Title:    "Consider investing your surplus",
		Message:  "With a %.1f%% savings rate and an emergency fund in place, surplus funds could earn more invested.",
		When: func(f Facts, t Thresholds) bool {
			return f.Totals.HasIncome() && f.Totals.SavingsRate >= t.SavingsTarget &&
				f.AvgMonthlyExpense.IsPositive() && f.fundMonths().GreaterThanOrEqual(decimal.NewFromInt(t.EmergencyMonths))
		},
		Args: func(f Facts, _ Thresholds) []any { return []any{f.Totals.SavingsRate * 100} },
	},
	{
		ID:       "weekly_trend_positive",
		Severity: SeveritySuccess,
		Title:    "Weekly trend is positive",
		Message:  "Over the last 7 days you netted %s per day on average.",
		When:     func(f Facts, _ Thresholds) bool { return f.WeeklyNetAverage.IsPositive() },
		Args:     func(f Facts, _ Thresholds) []any { return []any{f.WeeklyNetAverage.StringFixed(2)} },
	},
	{
		ID:       "alert_high_expense_ratio",
		Severity: SeverityCritical,
		Title:    "Expenses near income",
		Message:  "Expenses are %.1f%% of income, above the %.0f%% alert level.",
		When: func(f Facts, t Thresholds) bool {
			return f.Totals.HasIncome() && f.Totals.ExpenseRatio > t.HighExpenseRatio
		},
		Args: func(f Facts, t Thresholds) []any {
			return []any{f.Totals.ExpenseRatio * 100, t.HighExpenseRatio * 100}
		},
	},
	{
		ID:       "alert_low_savings_rate",
		Severity: SeverityCritical,
		Title:    "Savings rate is low",
		Message:  "You save %.1f%% of income, below the %.0f%% alert level.",
		When: func(f Facts, t Thresholds) bool {
			return f.Totals.HasIncome() && f.Totals.SavingsRate < t.LowSavingsRate
		},
		Args: func(f Facts, t Thresholds) []any {
			return []any{f.Totals.SavingsRate * 100, t.LowSavingsRate * 100}
		},
	},
}

func topIncomeShare(f Facts) float64 {
	top := f.Top()
	if top == nil || !f.Totals.HasIncome() {
		return 0
	}
	return top.Sum.Div(f.Totals.Income).InexactFloat64()
}

// Evaluate runs every rule independently and returns the messages of those
// that fire, in table order.
func Evaluate(rules []Rule, f Facts, t Thresholds) []Insight {
	out := make([]Insight, 0, len(rules))
	for _, r := range rules {
		if !r.When(f, t) {
			continue
		}
		msg := r.Message
		if r.Args != nil {
			msg = fmt.Sprintf(r.Message, r.Args(f, t)...)
		}
		out = append(out, Insight{
			ID:       r.ID,
			Title:    r.Title,
			Message:  msg,
			Severity: r.Severity,
		})
	}
	return out
}
