package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/paisa/paisa/internal/handler/dto"
	"github.com/paisa/paisa/internal/model"
	"github.com/paisa/paisa/internal/repository"
	"github.com/paisa/paisa/internal/service"
)

// TransactionHandler handles HTTP requests for transaction operations.
type TransactionHandler struct {
	svc    *service.TransactionService
	logger *slog.Logger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc *service.TransactionService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/transactions.
// Query: type, category, from, to. A date-only "to" includes that whole day.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := repository.TransactionFilter{
		Type:     model.TransactionType(strings.ToLower(strings.TrimSpace(query.Get("type")))),
		Category: strings.TrimSpace(query.Get("category")),
	}

	if v := query.Get("from"); v != "" {
		from, _, err := dto.ParseDate(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "VALIDATION_FAILED", Field: "from"})
			return
		}
		filter.From = &from
	}
	if v := query.Get("to"); v != "" {
		to, dateOnly, err := dto.ParseDate(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "VALIDATION_FAILED", Field: "to"})
			return
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = &to
	}

	txs, err := h.svc.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(txs))
}

// Get handles GET /api/v1/transactions/{id}.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.GetTransaction(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := service.CreateTransactionInput{
		Amount:        req.Amount,
		Type:          req.Type,
		Category:      req.Category,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Recurring:     req.Recurring,
		Tags:          req.Tags,
	}
	if req.Date != "" {
		date, _, err := dto.ParseDate(req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "VALIDATION_FAILED", Field: "date"})
			return
		}
		input.Date = &date
	}

	tx, err := h.svc.CreateTransaction(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("transaction_created",
		"transaction_id", tx.ID,
		"user_id", userID,
		"type", tx.Type,
	)

	writeJSON(w, http.StatusCreated, tx)
}

// Update handles PUT /api/v1/transactions/{id}.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := service.UpdateTransactionInput{
		Amount:        req.Amount,
		Type:          req.Type,
		Category:      req.Category,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Recurring:     req.Recurring,
		Tags:          req.Tags,
	}
	if req.Date != nil {
		date, _, err := dto.ParseDate(*req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "VALIDATION_FAILED", Field: "date"})
			return
		}
		input.Date = &date
	}

	tx, err := h.svc.UpdateTransaction(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("transaction_updated", "transaction_id", tx.ID, "user_id", userID)

	writeJSON(w, http.StatusOK, tx)
}

// Delete handles DELETE /api/v1/transactions/{id}.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteTransaction(r.Context(), userID, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("transaction_deleted", "transaction_id", id, "user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}
