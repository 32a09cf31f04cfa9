// Package handler exposes the /api/goals endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"smartsave/internal/goal/models"
	"smartsave/internal/goal/service"
	"smartsave/internal/platform/middleware"
	"smartsave/internal/transport/shared"
	dErrors "smartsave/pkg/domain-errors"
)

// Service defines the goal operations the handler needs.
type Service interface {
	Create(ctx context.Context, userID int64, params service.CreateParams) (*models.Goal, error)
	List(ctx context.Context, userID int64) ([]*models.Goal, error)
	Get(ctx context.Context, userID, goalID int64) (*models.Goal, error)
	Update(ctx context.Context, userID, goalID int64, params service.CreateParams, status models.Status) (*models.Goal, error)
	Delete(ctx context.Context, userID, goalID int64) error
}

// Handler exposes the goal routes.
type Handler struct {
	goals  Service
	logger *slog.Logger
}

func New(goals Service, logger *slog.Logger) *Handler {
	return &Handler{goals: goals, logger: logger}
}

// Register mounts the goal routes behind authentication.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/goals", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

type goalRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	TargetDate   string          `json:"target_date"`
	Category     string          `json:"category"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
}

func (req goalRequest) params() (service.CreateParams, error) {
	params := service.CreateParams{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		Category:     req.Category,
		Currency:     req.Currency,
	}
	if req.TargetDate != "" {
		date, err := time.Parse("2006-01-02", req.TargetDate)
		if err != nil {
			return params, dErrors.New(dErrors.CodeValidation, "target_date must be formatted YYYY-MM-DD")
		}
		params.TargetDate = date
	}
	return params, nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	params, err := req.params()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	goal, err := h.goals.Create(r.Context(), middleware.GetUserID(r.Context()), params)
	if err != nil {
		h.logger.WarnContext(r.Context(), "goal creation failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, shared.Envelope{
		"message": "goal created successfully",
		"goal":    goal.View(),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goals.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	views := make([]models.View, 0, len(goals))
	for _, g := range goals {
		views = append(views, g.View())
	}
	shared.WriteJSON(w, http.StatusOK, shared.Envelope{
		"goals": views,
		"count": len(views),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	goalID, err := shared.IDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	goal, err := h.goals.Get(r.Context(), middleware.GetUserID(r.Context()), goalID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.Envelope{"goal": goal.View()})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	goalID, err := shared.IDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	params, err := req.params()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	goal, err := h.goals.Update(r.Context(), middleware.GetUserID(r.Context()), goalID, params, models.Status(req.Status))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, shared.Envelope{
		"message": "goal updated successfully",
		"goal":    goal.View(),
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	goalID, err := shared.IDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.goals.Delete(r.Context(), middleware.GetUserID(r.Context()), goalID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.Envelope{"message": "goal deleted successfully"})
}
