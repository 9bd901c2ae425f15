package insight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/model"
)

// UncategorizedLabel is used for ad-hoc transactions without a category.
const UncategorizedLabel = "uncategorized"

// DecodeSnapshot parses a caller-supplied ledger of the form
//
//	{"transactions": [...], "budgets": {"Food": 250}, "budget": 1000,
//	 "savings": 400, "savingsGoal": 5000}
//
// Structural problems yield *InvalidInputError, as do budget categories
// that collide once trimmed. Amounts that are not positive numbers, or that
// exceed model.MaxAmount, are coerced to 0 and logged. A missing type means
// expense.
func DecodeSnapshot(raw []byte, logger *slog.Logger) (Snapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var body map[string]json.RawMessage
	if err := unmarshalNumber(raw, &body); err != nil || body == nil {
		return Snapshot{}, &InvalidInputError{Field: "body", Reason: "must be a JSON object"}
	}

	var s Snapshot

	if data, ok := present(body, "transactions"); ok {
		var items []json.RawMessage
		if err := unmarshalNumber(data, &items); err != nil {
			return Snapshot{}, &InvalidInputError{Field: "transactions", Reason: "must be an array"}
		}
		s.Transactions = make([]model.Transaction, 0, len(items))
		for i, item := range items {
			tx, err := decodeTransaction(item, i, logger)
			if err != nil {
				return Snapshot{}, err
			}
			s.Transactions = append(s.Transactions, tx)
		}
	}

	if data, ok := present(body, "budgets"); ok {
		var m map[string]any
		if err := unmarshalNumber(data, &m); err != nil {
			return Snapshot{}, &InvalidInputError{Field: "budgets", Reason: "must be an object of category to amount"}
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		lines := make(map[string]decimal.Decimal, len(m))
		for _, k := range keys {
			category := strings.TrimSpace(k)
			if _, dup := lines[category]; dup {
				return Snapshot{}, &InvalidInputError{
					Field:  "budgets." + category,
					Reason: "category is listed more than once",
				}
			}
			lines[category] = coerceAmount(m[k], "budgets."+k, logger)
		}
		s.Budgets = linesFromMap(lines)
	}

	s.MonthlyBudget = optionalAmount(body, "budget", logger)
	s.CurrentSavings = optionalAmount(body, "savings", logger)
	s.SavingsGoal = optionalAmount(body, "savingsGoal", logger)

	return s, nil
}

func decodeTransaction(data json.RawMessage, i int, logger *slog.Logger) (model.Transaction, error) {
	var fields map[string]any
	if err := unmarshalNumber(data, &fields); err != nil || fields == nil {
		return model.Transaction{}, &InvalidInputError{
			Field:  fmt.Sprintf("transactions[%d]", i),
			Reason: "must be an object",
		}
	}

	field := fmt.Sprintf("transactions[%d]", i)
	tx := model.Transaction{
		Amount:   coerceAmount(fields["amount"], field+".amount", logger),
		Type:     model.TransactionExpense,
		Category: UncategorizedLabel,
	}

	if v, ok := fields["type"].(string); ok && v != "" {
		t := model.TransactionType(strings.ToLower(strings.TrimSpace(v)))
		if !t.IsValid() {
			return model.Transaction{}, &InvalidInputError{Field: field + ".type", Reason: "must be income or expense"}
		}
		tx.Type = t
	}

	if v, ok := fields["category"].(string); ok && strings.TrimSpace(v) != "" {
		tx.Category = strings.TrimSpace(v)
	}

	if v, ok := fields["date"].(string); ok && v != "" {
		d, err := parseDate(v)
		if err != nil {
			logger.Warn("ignoring unparseable transaction date",
				slog.String("field", field+".date"),
				slog.String("value", v),
			)
		} else {
			tx.Date = d
		}
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now().UTC()
	}

	return tx, nil
}

// coerceAmount turns a JSON number or numeric string into a non-negative
// amount no larger than model.MaxAmount. Anything else becomes 0 with a
// warning.
func coerceAmount(v any, field string, logger *slog.Logger) decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)
	switch x := v.(type) {
	case json.Number:
		d, err = decimal.NewFromString(x.String())
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(x))
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}

	if err != nil {
		logger.Warn("coercing non-numeric amount to zero",
			slog.String("field", field),
			slog.Any("value", v),
		)
		return decimal.Zero
	}
	if err := model.CheckAmountBounds(d); err != nil {
		logger.Warn("coercing out-of-range amount to zero",
			slog.String("field", field),
			slog.String("reason", err.Error()),
		)
		return decimal.Zero
	}
	if d.IsNegative() {
		logger.Warn("coercing negative amount to zero",
			slog.String("field", field),
			slog.String("value", d.String()),
		)
		return decimal.Zero
	}
	return d
}

func optionalAmount(body map[string]json.RawMessage, key string, logger *slog.Logger) *decimal.Decimal {
	data, ok := present(body, key)
	if !ok {
		return nil
	}
	var v any
	if err := unmarshalNumber(data, &v); err != nil {
		v = string(data)
	}
	d := coerceAmount(v, key, logger)
	return &d
}

func present(body map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	data, ok := body[key]
	if !ok || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, false
	}
	return data, true
}

func unmarshalNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", v)
}
