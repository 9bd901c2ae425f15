package insight

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/model"
)

// Granularity is the calendar unit of a trend bucket.
type Granularity string

const (
	Daily   Granularity = "day"
	Monthly Granularity = "month"
)

// Window limits per granularity.
const (
	MaxDailyWindow   = 366
	MaxMonthlyWindow = 120
)

// IsValid checks if the granularity is supported.
func (g Granularity) IsValid() bool {
	return g == Daily || g == Monthly
}

// Bucket aggregates one calendar period.
type Bucket struct {
	Period   string          `json:"period"`
	Start    time.Time       `json:"start"`
	Income   decimal.Decimal `json:"incomeSum"`
	Expenses decimal.Decimal `json:"expenseSum"`
	Net      decimal.Decimal `json:"netSum"`
}

// Trend is a fixed-length trailing series of buckets.
type Trend struct {
	Granularity Granularity `json:"granularity"`
	Buckets     []Bucket    `json:"buckets"`
}

// ValidateWindow checks a caller-requested granularity and window length.
func ValidateWindow(g Granularity, n int) error {
	if !g.IsValid() {
		return &InvalidInputError{Field: "granularity", Reason: "must be day or month"}
	}
	limit := MaxDailyWindow
	if g == Monthly {
		limit = MaxMonthlyWindow
	}
	if n < 1 || n > limit {
		return &InvalidInputError{Field: "window", Reason: fmt.Sprintf("must be between 1 and %d", limit)}
	}
	return nil
}

// BuildTrend buckets transactions into exactly n chronological periods
// ending with the period that contains now. Periods follow the UTC calendar
// and empty periods are zero-filled. Transactions outside the window are
// ignored.
func BuildTrend(txs []model.Transaction, g Granularity, now time.Time, n int) (Trend, error) {
	if err := ValidateWindow(g, n); err != nil {
		return Trend{}, err
	}

	end := periodStart(g, now)
	first := shift(g, end, -(n - 1))

	buckets := make([]Bucket, n)
	for i := range buckets {
		start := shift(g, first, i)
		buckets[i] = Bucket{Period: periodLabel(g, start), Start: start}
	}

	for i := range txs {
		idx := periodIndex(g, first, periodStart(g, txs[i].Date))
		if idx < 0 || idx >= n {
			continue
		}
		switch txs[i].Type {
		case model.TransactionIncome:
			buckets[idx].Income = buckets[idx].Income.Add(txs[i].Amount)
		case model.TransactionExpense:
			buckets[idx].Expenses = buckets[idx].Expenses.Add(txs[i].Amount)
		}
	}

	for i := range buckets {
		buckets[i].Net = buckets[i].Income.Sub(buckets[i].Expenses)
	}
	return Trend{Granularity: g, Buckets: buckets}, nil
}

func periodStart(g Granularity, t time.Time) time.Time {
	t = t.UTC()
	if g == Monthly {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func shift(g Granularity, t time.Time, n int) time.Time {
	if g == Monthly {
		return t.AddDate(0, n, 0)
	}
	return t.AddDate(0, 0, n)
}

func periodIndex(g Granularity, first, start time.Time) int {
	if g == Monthly {
		return (start.Year()-first.Year())*12 + int(start.Month()) - int(first.Month())
	}
	if start.Before(first) {
		return -1
	}
	return int(start.Sub(first) / (24 * time.Hour))
}

func periodLabel(g Granularity, start time.Time) string {
	if g == Monthly {
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}

// monthlyAverages returns the mean expense over months that contain an
// expense, and the mean net over months that contain any transaction.
func monthlyAverages(txs []model.Transaction) (expense, net decimal.Decimal) {
	expenses := make(map[string]decimal.Decimal)
	nets := make(map[string]decimal.Decimal)
	for i := range txs {
		key := periodLabel(Monthly, periodStart(Monthly, txs[i].Date))
		switch txs[i].Type {
		case model.TransactionIncome:
			nets[key] = nets[key].Add(txs[i].Amount)
		case model.TransactionExpense:
			expenses[key] = expenses[key].Add(txs[i].Amount)
			nets[key] = nets[key].Sub(txs[i].Amount)
		}
	}
	return mean(expenses), mean(nets)
}

func mean(m map[string]decimal.Decimal) decimal.Decimal {
	if len(m) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range m {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(m))))
}
