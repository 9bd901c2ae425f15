package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/auth"
	"github.com/paisa/paisa/internal/handler/dto"
	"github.com/paisa/paisa/internal/metrics"
	"github.com/paisa/paisa/internal/middleware"
	"github.com/paisa/paisa/internal/model"
	"github.com/paisa/paisa/internal/repository/memory"
	"github.com/paisa/paisa/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T, adminEmails ...string) *testAPI {
	t.Helper()

	logger := discardLogger()
	store := memory.New()
	recorder := metrics.NewInMemory()

	issuer, err := auth.NewTokenIssuer("test-secret-test-secret-test-secret!", "paisa-test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	authSvc := service.NewAuthService(store, issuer, nil, nil, recorder, logger)
	authSvc.SetAdminEmails(adminEmails)

	router := NewRouter(RouterConfig{
		Logger:        logger,
		Authenticator: authSvc,
		CORS:          middleware.DefaultCORSConfig(),
		Security:      middleware.SecurityConfig{IsDevelopment: true},
		Root:          New(),
		Health:        NewHealthHandler(store, nil, logger),
		Metrics:       NewMetricsHandler(recorder),
		Auth:          NewAuthHandler(authSvc, logger),
		Users:         NewUserHandler(service.NewUserService(store), logger),
		Transactions:  NewTransactionHandler(service.NewTransactionService(store, nil, recorder), logger),
		Budgets:       NewBudgetHandler(service.NewBudgetService(store, nil, recorder), logger),
		Insights:      NewInsightHandler(service.NewInsightService(store, service.ReportOptions{}, recorder, logger), logger),
	})

	return &testAPI{t: t, handler: router}
}

func (a *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) signup(email string) dto.AuthResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/signup", "",
		`{"name":"Test User","email":"`+email+`","password":"password123","savingsGoal":10000}`)
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("signup %s: status %d: %s", email, rec.Code, rec.Body.String())
	}
	var resp dto.AuthResponse
	decodeBody(a.t, rec, &resp)
	return resp
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.ErrorResponse
	decodeBody(t, rec, &resp)
	return resp.Code
}

func TestAPI_SignupLoginLogout(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	session := api.signup("asha@example.com")
	if session.Token == "" || session.User == nil || session.User.Email != "asha@example.com" {
		t.Fatalf("unexpected signup response: %+v", session)
	}

	if rec := api.do(http.MethodPost, "/api/v1/signup", "", `{"name":"Dup","email":"ASHA@example.com","password":"password123"}`); rec.Code != http.StatusConflict || errorCode(t, rec) != "EMAIL_TAKEN" {
		t.Errorf("duplicate signup: %d %s", rec.Code, rec.Body.String())
	}

	if rec := api.do(http.MethodPost, "/api/v1/login", "", `{"email":"asha@example.com","password":"nope-nope"}`); rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "INVALID_CREDENTIALS" {
		t.Errorf("bad login: %d %s", rec.Code, rec.Body.String())
	}

	rec := api.do(http.MethodPost, "/api/v1/login", "", `{"email":"Asha@Example.com","password":"password123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not expose the password hash")
	}

	if rec := api.do(http.MethodPost, "/api/v1/logout", session.Token, ""); rec.Code != http.StatusNoContent {
		t.Errorf("logout: %d", rec.Code)
	}
}

func TestAPI_RequestValidation(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.signup("val@example.com").Token

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed json", http.MethodPost, "/api/v1/transactions", `{"amount":`, http.StatusBadRequest, "INVALID_JSON"},
		{"unknown field", http.MethodPost, "/api/v1/transactions", `{"amount":5,"type":"expense","category":"Food","userId":"someone-else"}`, http.StatusBadRequest, "INVALID_JSON"},
		{"missing amount", http.MethodPost, "/api/v1/transactions", `{"type":"expense","category":"Food"}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"missing type", http.MethodPost, "/api/v1/transactions", `{"amount":5,"category":"Food"}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"missing category", http.MethodPost, "/api/v1/transactions", `{"amount":5,"type":"expense"}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad date", http.MethodPost, "/api/v1/transactions", `{"amount":5,"type":"expense","category":"Food","date":"yesterday"}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad list filter", http.MethodGet, "/api/v1/transactions?type=gift", "", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad window", http.MethodGet, "/api/v1/insights?window=abc", "", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad granularity", http.MethodGet, "/api/v1/insights?granularity=week", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown budget", http.MethodDelete, "/api/v1/budgets/nope", "", http.StatusNotFound, "BUDGET_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(tt.method, tt.path, token, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := errorCode(t, rec); got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestAPI_RequiresAuth(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	for _, path := range []string{"/api/v1/transactions", "/api/v1/budgets", "/api/v1/insights", "/api/v1/users/me"} {
		rec := api.do(http.MethodGet, path, "", "")
		if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "UNAUTHORIZED" {
			t.Errorf("GET %s without token: %d %s", path, rec.Code, rec.Body.String())
		}
	}
	if rec := api.do(http.MethodGet, "/api/v1/transactions", "not-a-jwt", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: %d", rec.Code)
	}
}

func TestAPI_TransactionLifecycleAndOwnership(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	alice := api.signup("alice@example.com").Token
	bob := api.signup("bob@example.com").Token

	rec := api.do(http.MethodPost, "/api/v1/transactions", alice,
		`{"amount":"250.50","type":"expense","category":"Food","date":"2024-03-10","paymentMethod":"upi","tags":["groceries"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var tx model.Transaction
	decodeBody(t, rec, &tx)
	if !tx.Amount.Equal(decimal.RequireFromString("250.5")) || tx.PaymentMethod != model.PaymentUPI {
		t.Errorf("created = %+v", tx)
	}

	var list dto.ListResponse[model.Transaction]
	decodeBody(t, api.do(http.MethodGet, "/api/v1/transactions", alice, ""), &list)
	if list.Count != 1 || list.Data[0].ID != tx.ID {
		t.Errorf("owner list = %+v", list)
	}

	decodeBody(t, api.do(http.MethodGet, "/api/v1/transactions", bob, ""), &list)
	if list.Count != 0 || list.Data == nil {
		t.Errorf("other user must see an empty list, got %+v", list)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		if rec := api.do(method, "/api/v1/transactions/"+tx.ID, bob, ""); rec.Code != http.StatusNotFound {
			t.Errorf("%s foreign transaction: %d", method, rec.Code)
		}
	}

	decodeBody(t, api.do(http.MethodGet, "/api/v1/transactions?from=2024-03-10&to=2024-03-10", alice, ""), &list)
	if list.Count != 1 {
		t.Errorf("date-only range should include the whole day, got %d", list.Count)
	}
	decodeBody(t, api.do(http.MethodGet, "/api/v1/transactions?category=Rent", alice, ""), &list)
	if list.Count != 0 {
		t.Errorf("category filter, got %d", list.Count)
	}

	rec = api.do(http.MethodPut, "/api/v1/transactions/"+tx.ID, alice, `{"description":"weekly shop"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	var updated model.Transaction
	decodeBody(t, rec, &updated)
	if updated.Description != "weekly shop" || updated.Category != "Food" {
		t.Errorf("partial update = %+v", updated)
	}

	if rec := api.do(http.MethodDelete, "/api/v1/transactions/"+tx.ID, alice, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete: %d", rec.Code)
	}
	if rec := api.do(http.MethodGet, "/api/v1/transactions/"+tx.ID, alice, ""); rec.Code != http.StatusNotFound || errorCode(t, rec) != "TRANSACTION_NOT_FOUND" {
		t.Errorf("get after delete: %d", rec.Code)
	}
}

func TestAPI_ProfileAndAdmin(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t, "root@example.com")
	user := api.signup("user@example.com").Token
	admin := api.signup("root@example.com").Token

	rec := api.do(http.MethodPut, "/api/v1/users/me", user, `{"monthlyBudget":20000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile: %d %s", rec.Code, rec.Body.String())
	}
	var me model.User
	decodeBody(t, api.do(http.MethodGet, "/api/v1/users/me", user, ""), &me)
	if me.MonthlyBudget == nil || !me.MonthlyBudget.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("profile = %+v", me)
	}

	if rec := api.do(http.MethodGet, "/api/v1/users", user, ""); rec.Code != http.StatusForbidden {
		t.Errorf("non-admin list users: %d", rec.Code)
	}
	var users dto.ListResponse[model.User]
	rec = api.do(http.MethodGet, "/api/v1/users", admin, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list users: %d", rec.Code)
	}
	decodeBody(t, rec, &users)
	if users.Count != 2 {
		t.Errorf("users = %d, want 2", users.Count)
	}
}

func TestAPI_BudgetsAndReport(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.signup("report@example.com").Token

	today := time.Now().UTC().Format(dto.DateOnly)
	for _, body := range []string{
		`{"amount":50000,"type":"income","category":"Salary","date":"` + today + `"}`,
		`{"amount":12000,"type":"expense","category":"Rent","date":"` + today + `"}`,
		`{"amount":3000,"type":"expense","category":"Food","date":"` + today + `"}`,
	} {
		if rec := api.do(http.MethodPost, "/api/v1/transactions", token, body); rec.Code != http.StatusCreated {
			t.Fatalf("seed: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := api.do(http.MethodPost, "/api/v1/budgets", token, `{"category":"Food","amount":2000}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("budget: %d %s", rec.Code, rec.Body.String())
	}
	var b model.Budget
	decodeBody(t, rec, &b)
	if rec := api.do(http.MethodPut, "/api/v1/budgets/"+b.ID, token, `{"amount":2500}`); rec.Code != http.StatusOK {
		t.Errorf("update budget: %d", rec.Code)
	}

	rec = api.do(http.MethodGet, "/api/v1/insights?granularity=month&window=3", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("report: %d %s", rec.Code, rec.Body.String())
	}

	var report struct {
		Totals struct {
			Income     decimal.Decimal `json:"totalIncome"`
			Expenses   decimal.Decimal `json:"totalExpenses"`
			NetSavings decimal.Decimal `json:"netSavings"`
		} `json:"totals"`
		Budgets []struct {
			Category    string  `json:"category"`
			PercentUsed float64 `json:"percentUsed"`
			Exceeded    bool    `json:"exceeded"`
		} `json:"budgets"`
		Trend struct {
			Buckets []json.RawMessage `json:"buckets"`
		} `json:"trend"`
		HealthScore int `json:"healthScore"`
	}
	decodeBody(t, rec, &report)

	if !report.Totals.Income.Sub(report.Totals.Expenses).Equal(report.Totals.NetSavings) {
		t.Errorf("totals do not balance: %+v", report.Totals)
	}
	if !report.Totals.NetSavings.Equal(decimal.NewFromInt(35000)) {
		t.Errorf("net savings = %s", report.Totals.NetSavings)
	}
	if len(report.Trend.Buckets) != 3 {
		t.Errorf("trend buckets = %d, want 3", len(report.Trend.Buckets))
	}
	if len(report.Budgets) != 1 || report.Budgets[0].PercentUsed != 100 || !report.Budgets[0].Exceeded {
		t.Errorf("budget utilization = %+v", report.Budgets)
	}
	if report.HealthScore < 0 || report.HealthScore > 100 {
		t.Errorf("health score out of range: %d", report.HealthScore)
	}
}

func TestAPI_AnalyzeAdhoc(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.signup("adhoc@example.com").Token

	body := `{
		"transactions": [
			{"amount": 400, "category": "Food"},
			{"amount": "600", "category": "Travel"}
		],
		"savings": 100,
		"budget": 800
	}`
	rec := api.do(http.MethodPost, "/api/v1/insights?granularity=month&window=1", token, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze: %d %s", rec.Code, rec.Body.String())
	}

	var resp dto.AnalyzeResponse
	decodeBody(t, rec, &resp)
	if !resp.TotalSpent.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("totalSpent = %s", resp.TotalSpent)
	}
	if len(resp.Insights) == 0 || len(resp.Insights) != len(resp.Messages) {
		t.Errorf("insights = %v, messages = %d", resp.Insights, len(resp.Messages))
	}
	if !resp.CategorySpend["Travel"].Equal(decimal.NewFromInt(600)) {
		t.Errorf("categorySpend = %v", resp.CategorySpend)
	}
	if len(resp.TrendData) != 1 {
		t.Errorf("trendData = %v", resp.TrendData)
	}
	if !hasMessage(resp.Insights, "Predicted next month spending: 1000.00.") {
		t.Errorf("insights = %v, want a spending forecast", resp.Insights)
	}
	if !hasMessage(resp.Insights, "Try saving at least 20% of your monthly budget.") {
		t.Errorf("insights = %v, want a budget share nudge", resp.Insights)
	}

	onTrack := strings.Replace(body, `"savings": 100`, `"savings": 500`, 1)
	rec = api.do(http.MethodPost, "/api/v1/insights", token, onTrack)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze on track: %d %s", rec.Code, rec.Body.String())
	}
	var tracked dto.AnalyzeResponse
	decodeBody(t, rec, &tracked)
	if !hasMessage(tracked.Insights, "Your savings of 500.00 are at least 20% of your monthly budget.") {
		t.Errorf("insights = %v, want savings on track", tracked.Insights)
	}

	huge := `{"transactions": [{"amount": "1e5000000", "type": "income"}, {"amount": 1, "category": "x"}], "savingsGoal": 5}`
	rec = api.do(http.MethodPost, "/api/v1/insights", token, huge)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze huge amount: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() > 64<<10 {
		t.Errorf("huge amount produced a %d byte response", rec.Body.Len())
	}

	if rec := api.do(http.MethodPost, "/api/v1/insights", token, `{"transactions": "nope"}`); rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_INPUT" {
		t.Errorf("malformed analyze: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAPI_BodyLimit(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.signup("big@example.com").Token

	big := bytes.Repeat([]byte("x"), int(middleware.DefaultMaxRequestBodySize)+1)
	rec := api.do(http.MethodPost, "/api/v1/insights", token, string(big))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func hasMessage(messages []string, want string) bool {
	for _, m := range messages {
		if m == want {
			return true
		}
	}
	return false
}
