// Package handler exposes the /api/budgets endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"smartsave/internal/budget/models"
	"smartsave/internal/budget/service"
	"smartsave/internal/platform/middleware"
	"smartsave/internal/transport/shared"
	dErrors "smartsave/pkg/domain-errors"
)

// Service defines the budget operations the handler needs.
type Service interface {
	Create(ctx context.Context, userID int64, params service.CreateParams) (*models.Budget, error)
	List(ctx context.Context, userID int64) ([]*models.Budget, error)
	Current(ctx context.Context, userID int64) (*models.Budget, string, error)
	Update(ctx context.Context, userID, budgetID int64, params service.UpdateParams) (*models.Budget, error)
	Delete(ctx context.Context, userID, budgetID int64) error
}

// Handler exposes the budget routes.
type Handler struct {
	budgets Service
	logger  *slog.Logger
}

func New(budgets Service, logger *slog.Logger) *Handler {
	return &Handler{budgets: budgets, logger: logger}
}

// Register mounts the budget routes behind authentication.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/budgets", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/current", h.handleCurrent)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

type createRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Month  int             `json:"month"`
	Year   int             `json:"year"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	budget, err := h.budgets.Create(r.Context(), middleware.GetUserID(r.Context()), service.CreateParams{
		Amount: req.Amount,
		Month:  req.Month,
		Year:   req.Year,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "budget creation failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, shared.Envelope{
		"message": "budget created successfully",
		"budget":  budget.View(),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.budgets.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	views := make([]models.View, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, b.View())
	}
	shared.WriteJSON(w, http.StatusOK, shared.Envelope{
		"budgets": views,
		"count":   len(views),
	})
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	budget, monthYear, err := h.budgets.Current(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if budget == nil {
		shared.WriteJSON(w, http.StatusOK, shared.Envelope{
			"budget": models.EmptyView{MonthYear: monthYear},
			"exists": false,
		})
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.Envelope{
		"budget": budget.View(),
		"exists": true,
	})
}

type updateRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	TotalIncome   *decimal.Decimal `json:"total_income"`
	TotalExpenses *decimal.Decimal `json:"total_expenses"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	budgetID, err := shared.IDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	budget, err := h.budgets.Update(r.Context(), middleware.GetUserID(r.Context()), budgetID, service.UpdateParams{
		Amount:        req.Amount,
		TotalIncome:   req.TotalIncome,
		TotalExpenses: req.TotalExpenses,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, shared.Envelope{
		"message": "budget updated successfully",
		"budget":  budget.View(),
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	budgetID, err := shared.IDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.budgets.Delete(r.Context(), middleware.GetUserID(r.Context()), budgetID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.Envelope{"message": "budget deleted successfully"})
}
