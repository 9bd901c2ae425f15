package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paisa/paisa/internal/handler/dto"
	"github.com/paisa/paisa/internal/service"
)

// BudgetHandler handles HTTP requests for budget operations.
type BudgetHandler struct {
	svc    *service.BudgetService
	logger *slog.Logger
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(svc *service.BudgetService, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/budgets.
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	budgets, err := h.svc.ListBudgets(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(budgets))
}

// Get handles GET /api/v1/budgets/{id}.
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	b, err := h.svc.GetBudget(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

// Create handles POST /api/v1/budgets.
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req dto.BudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := h.svc.CreateBudget(r.Context(), userID, service.BudgetInput{
		Category: req.Category,
		Amount:   req.Amount,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("budget_created", "budget_id", b.ID, "user_id", userID)

	writeJSON(w, http.StatusCreated, b)
}

// Update handles PUT /api/v1/budgets/{id}.
func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateBudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := h.svc.UpdateBudget(r.Context(), userID, chi.URLParam(r, "id"), service.UpdateBudgetInput{
		Category: req.Category,
		Amount:   req.Amount,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

// Delete handles DELETE /api/v1/budgets/{id}.
func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteBudget(r.Context(), userID, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("budget_deleted", "budget_id", id, "user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}
