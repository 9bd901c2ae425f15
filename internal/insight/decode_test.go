package insight

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestDecodeSnapshot_Valid(t *testing.T) {
	t.Parallel()

	raw := `{
		"transactions": [
			{"amount": 1000, "type": "income", "category": "Salary", "date": "2024-03-01"},
			{"amount": "300", "category": " Food ", "date": "2024-03-02T10:00:00Z"},
			{"amount": 200, "type": "expense", "category": "Transport"}
		],
		"budgets": {"Food": 250, "Transport": "100"},
		"budget": 1000,
		"savings": 400,
		"savingsGoal": 5000
	}`

	s, err := DecodeSnapshot([]byte(raw), discardLogger())
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}

	if len(s.Transactions) != 3 {
		t.Fatalf("transactions = %d, want 3", len(s.Transactions))
	}
	if s.Transactions[1].Type != "expense" {
		t.Errorf("missing type should default to expense, got %q", s.Transactions[1].Type)
	}
	if s.Transactions[1].Category != "Food" {
		t.Errorf("category should be trimmed, got %q", s.Transactions[1].Category)
	}
	if s.Transactions[2].Date.IsZero() {
		t.Error("missing date should default to now")
	}
	if got := s.Transactions[0].Date.Format("2006-01-02"); got != "2024-03-01" {
		t.Errorf("date = %s, want 2024-03-01", got)
	}

	if len(s.Budgets) != 2 || s.Budgets[0].Category != "Food" || !s.Budgets[1].Amount.Equal(dec("100")) {
		t.Errorf("budgets = %+v", s.Budgets)
	}
	if s.MonthlyBudget == nil || !s.MonthlyBudget.Equal(dec("1000")) {
		t.Errorf("MonthlyBudget = %v, want 1000", s.MonthlyBudget)
	}
	if s.CurrentSavings == nil || !s.CurrentSavings.Equal(dec("400")) {
		t.Errorf("CurrentSavings = %v, want 400", s.CurrentSavings)
	}
	if s.SavingsGoal == nil || !s.SavingsGoal.Equal(dec("5000")) {
		t.Errorf("SavingsGoal = %v, want 5000", s.SavingsGoal)
	}
}

func TestDecodeSnapshot_CoercesBadAmounts(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	raw := `{"transactions": [
		{"amount": "lots", "category": "a"},
		{"amount": -5, "category": "b"},
		{"category": "c"},
		{"amount": true, "category": "d"}
	]}`

	s, err := DecodeSnapshot([]byte(raw), logger)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	for i, tx := range s.Transactions {
		if !tx.Amount.IsZero() {
			t.Errorf("transactions[%d].Amount = %s, want 0", i, tx.Amount)
		}
	}
	if n := strings.Count(logs.String(), "level=WARN"); n != 4 {
		t.Errorf("expected 4 warnings, got %d:\n%s", n, logs.String())
	}
}

func TestDecodeSnapshot_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"not json", `nope`, "body"},
		{"array body", `[]`, "body"},
		{"transactions object", `{"transactions": {"a": 1}}`, "transactions"},
		{"transactions string", `{"transactions": "x"}`, "transactions"},
		{"element not object", `{"transactions": [1, 2]}`, "transactions[0]"},
		{"unknown type", `{"transactions": [{"amount": 1, "type": "gift"}]}`, "transactions[0].type"},
		{"budgets array", `{"budgets": [{"category": "Food"}]}`, "budgets"},
		{"budgets number", `{"budgets": 5}`, "budgets"},
		{"budget keys collide", `{"budgets": {"Food": 100, " Food": 200}}`, "budgets.Food"},
		{"budget keys collide trailing", `{"budgets": {"Rent ": 1, "Rent": 2}}`, "budgets.Rent"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeSnapshot([]byte(tt.raw), discardLogger())
			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Fatalf("error = %v, want InvalidInputError", err)
			}
			if invalid.Field != tt.field {
				t.Errorf("Field = %q, want %q", invalid.Field, tt.field)
			}
		})
	}
}

func TestDecodeSnapshot_NullsAreAbsent(t *testing.T) {
	t.Parallel()

	s, err := DecodeSnapshot([]byte(`{"transactions": null, "budgets": null, "budget": null}`), discardLogger())
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if len(s.Transactions) != 0 || len(s.Budgets) != 0 || s.MonthlyBudget != nil {
		t.Errorf("expected empty snapshot, got %+v", s)
	}
}

func TestDecodeSnapshot_OutOfRangeAmounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"huge exponent string", `"1e5000000"`, "0"},
		{"huge exponent number", `1e5000000`, "0"},
		{"tiny exponent", `"1e-5000000"`, "0"},
		{"negative huge", `"-1e5000000"`, "0"},
		{"just above max", `"1000000000000"`, "0"},
		{"max plus a cent", `"999999999999.999"`, "0"},
		{"max", `"999999999999.99"`, "999999999999.99"},
		{"exponent within range", `"2.5e3"`, "2500"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := `{"transactions": [{"amount": ` + tt.value + `, "type": "income"}], "savingsGoal": ` + tt.value + `}`
			s, err := DecodeSnapshot([]byte(raw), discardLogger())
			if err != nil {
				t.Fatalf("DecodeSnapshot: %v", err)
			}
			if got := s.Transactions[0].Amount; !got.Equal(dec(tt.want)) {
				t.Errorf("Amount = %s, want %s", got, tt.want)
			}
			if s.SavingsGoal == nil || !s.SavingsGoal.Equal(dec(tt.want)) {
				t.Errorf("SavingsGoal = %v, want %s", s.SavingsGoal, tt.want)
			}
		})
	}
}

func TestDecodeSnapshot_HugeAmountStaysCheap(t *testing.T) {
	t.Parallel()

	raw := `{"transactions": [
		{"amount": "1e5000000", "type": "income"},
		{"amount": 1, "type": "expense", "category": "x"}
	], "savingsGoal": 5, "budgets": {"x": "9e999999"}}`

	start := time.Now()
	s, err := DecodeSnapshot([]byte(raw), discardLogger())
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	report, err := Compute(s, Options{Now: refNow, Granularity: Monthly, Window: 12, WholeHistory: true})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	out, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if len(out) > 64<<10 {
		t.Errorf("report is %d bytes, want a small document", len(out))
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("decode and compute took %v", elapsed)
	}
	if !report.Totals.Income.IsZero() {
		t.Errorf("Income = %s, want 0", report.Totals.Income)
	}
}
