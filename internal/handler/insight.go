package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/handler/dto"
	"github.com/paisa/paisa/internal/insight"
	"github.com/paisa/paisa/internal/service"
)

// InsightHandler serves insight reports.
type InsightHandler struct {
	svc    *service.InsightService
	logger *slog.Logger
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(svc *service.InsightService, logger *slog.Logger) *InsightHandler {
	return &InsightHandler{svc: svc, logger: logger}
}

// Report handles GET /api/v1/insights. It builds the full report from the
// caller's own ledger.
// Query: granularity (day|month), window, contribution.
func (h *InsightHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	opts, ok := reportOptions(w, r)
	if !ok {
		return
	}

	report, err := h.svc.Report(r.Context(), userID, opts)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Analyze handles POST /api/v1/insights. It computes a report from the
// ledger in the request body without touching stored data.
func (h *InsightHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	opts, ok := reportOptions(w, r)
	if !ok {
		return
	}

	raw, ok := readBody(w, r)
	if !ok {
		return
	}

	report, err := h.svc.Analyze(r.Context(), raw, opts)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAnalyzeResponse(report))
}

func reportOptions(w http.ResponseWriter, r *http.Request) (service.ReportOptions, bool) {
	query := r.URL.Query()
	var opts service.ReportOptions

	if v := strings.TrimSpace(query.Get("granularity")); v != "" {
		opts.Granularity = insight.Granularity(strings.ToLower(v))
	}
	if v := query.Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "window must be a positive integer", Code: "VALIDATION_FAILED", Field: "window"})
			return opts, false
		}
		opts.Window = n
	}
	if v := query.Get("contribution"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "contribution must be a number", Code: "VALIDATION_FAILED", Field: "contribution"})
			return opts, false
		}
		opts.MonthlyContribution = &d
	}
	return opts, true
}
