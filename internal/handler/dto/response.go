package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/insight"
	"github.com/paisa/paisa/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// ListResponse wraps a collection.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// NewListResponse never serializes a nil slice as null.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Data: items, Count: len(items)}
}

// TrendPoint is one entry of the web client's spending chart.
type TrendPoint struct {
	Period string          `json:"period"`
	Value  decimal.Decimal `json:"value"`
}

// AnalyzeResponse is the body of POST /api/v1/insights. The flat fields are
// what the web client renders; Report carries everything else.
type AnalyzeResponse struct {
	Insights           []string                   `json:"insights"`
	Messages           []insight.Insight          `json:"messages"`
	CategorySpend      map[string]decimal.Decimal `json:"categorySpend"`
	TotalSpent         decimal.Decimal            `json:"totalSpent"`
	PredictedNextMonth decimal.Decimal            `json:"predictedNextMonth"`
	TrendData          []TrendPoint               `json:"trendData"`
	HealthScore        int                        `json:"healthScore"`
	Report             *insight.Report            `json:"report"`
}

// ToAnalyzeResponse flattens a report for the web client. TrendData plots
// expenses per bucket.
func ToAnalyzeResponse(r *insight.Report) *AnalyzeResponse {
	messages := make([]string, len(r.Insights))
	for i, in := range r.Insights {
		messages[i] = in.Message
	}
	points := make([]TrendPoint, len(r.Trend.Buckets))
	for i, b := range r.Trend.Buckets {
		points[i] = TrendPoint{Period: b.Period, Value: b.Expenses}
	}
	records := r.Insights
	if records == nil {
		records = []insight.Insight{}
	}
	return &AnalyzeResponse{
		Insights:           messages,
		Messages:           records,
		CategorySpend:      r.CategorySpend,
		TotalSpent:         r.Totals.Expenses,
		PredictedNextMonth: r.PredictedNextMonth,
		TrendData:          points,
		HealthScore:        r.HealthScore,
		Report:             r,
	}
}
