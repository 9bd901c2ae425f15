package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionType_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   TransactionType
		want bool
	}{
		{TransactionIncome, true},
		{TransactionExpense, true},
		{"", false},
		{"Income", false},
		{"transfer", false},
	}

	for _, tt := range tests {
		if got := tt.in.IsValid(); got != tt.want {
			t.Errorf("TransactionType(%q).IsValid() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPaymentMethod_IsValid(t *testing.T) {
	t.Parallel()

	for _, p := range []PaymentMethod{PaymentCash, PaymentCard, PaymentUPI, PaymentBankTransfer, PaymentOther} {
		if !p.IsValid() {
			t.Errorf("PaymentMethod(%q) should be valid", p)
		}
	}
	for _, p := range []PaymentMethod{"", "cheque", "CARD"} {
		if p.IsValid() {
			t.Errorf("PaymentMethod(%q) should be invalid", p)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"trims", []string{"  rent ", "food"}, []string{"rent", "food"}},
		{"drops empty", []string{"", "   ", "x"}, []string{"x"}},
		{"dedupes keeping order", []string{"b", "a", "b", " a"}, []string{"b", "a"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizeTags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransaction_AmountMarshalsAsNumber(t *testing.T) {
	t.Parallel()

	tx := Transaction{Amount: decimal.RequireFromString("12.50")}
	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"amount":12.5`) {
		t.Errorf("amount should be a bare JSON number, got %s", data)
	}
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	t.Parallel()

	u := User{ID: "u1", Email: "a@b.c", PasswordHash: "$argon2id$secret"}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "argon2id") {
		t.Errorf("password hash leaked into JSON: %s", data)
	}
}
