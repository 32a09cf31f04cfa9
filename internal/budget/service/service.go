// Package service implements the monthly budget ledger.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"smartsave/internal/budget/models"
	"smartsave/internal/budget/store"
	"smartsave/internal/platform/events"
	"smartsave/internal/platform/metrics"
	dErrors "smartsave/pkg/domain-errors"
	"smartsave/pkg/platform/sentinel"
)

var tracer = otel.Tracer("smartsave/budget")

// Service orchestrates budget operations on top of a BudgetStore.
type Service struct {
	budgets store.BudgetStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	events  events.Publisher
	now     func() time.Time
}

func New(budgets store.BudgetStore, logger *slog.Logger, m *metrics.Metrics, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{budgets: budgets, logger: logger, metrics: m, events: publisher, now: time.Now}
}

// CreateParams carries the typed budget payload. Amount becomes the month's
// total income; expenses start at zero.
type CreateParams struct {
	Amount decimal.Decimal
	Month  int
	Year   int
}

// Create persists a budget for the given calendar month. Each user holds at
// most one budget per month.
func (s *Service) Create(ctx context.Context, userID int64, params CreateParams) (*models.Budget, error) {
	ctx, span := tracer.Start(ctx, "budget.Create")
	defer span.End()

	if !params.Amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
	}
	if params.Month < 1 || params.Month > 12 {
		return nil, dErrors.New(dErrors.CodeValidation, "month must be between 1 and 12")
	}
	if params.Year < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "year is required")
	}

	budget := &models.Budget{
		UserID:        userID,
		MonthYear:     models.MonthKey(params.Month, params.Year),
		TotalIncome:   params.Amount,
		TotalExpenses: decimal.Zero,
	}
	if err := s.budgets.Create(ctx, budget); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a budget already exists for this month")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create budget")
	}

	s.metrics.IncBudgetsCreated()
	s.events.Publish(ctx, events.Event{Type: "budget.created", UserID: userID, EntityID: budget.ID})
	s.logger.InfoContext(ctx, "budget created", "user_id", userID, "month_year", budget.MonthYear)
	return budget, nil
}

// List returns the user's budgets, most recent month first.
func (s *Service) List(ctx context.Context, userID int64) ([]*models.Budget, error) {
	ctx, span := tracer.Start(ctx, "budget.List")
	defer span.End()

	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list budgets")
	}
	return budgets, nil
}

// Current returns the budget for the current calendar month, or nil when
// none exists. Callers render the nil case as a synthetic empty record.
func (s *Service) Current(ctx context.Context, userID int64) (*models.Budget, string, error) {
	ctx, span := tracer.Start(ctx, "budget.Current")
	defer span.End()

	monthYear := models.CurrentMonthKey(s.now())
	budget, err := s.budgets.FindByMonth(ctx, userID, monthYear)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, monthYear, nil
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load budget")
	}
	return budget, monthYear, nil
}

// UpdateParams is the partial budget patch. Amount and TotalIncome write the
// same column; when both are supplied TotalIncome is applied last and wins.
type UpdateParams struct {
	Amount        *decimal.Decimal
	TotalIncome   *decimal.Decimal
	TotalExpenses *decimal.Decimal
}

// Update applies a partial patch and returns the updated budget.
func (s *Service) Update(ctx context.Context, userID, budgetID int64, params UpdateParams) (*models.Budget, error) {
	ctx, span := tracer.Start(ctx, "budget.Update")
	defer span.End()

	patch := models.Patch{TotalExpenses: params.TotalExpenses}
	if params.Amount != nil {
		patch.TotalIncome = params.Amount
	}
	if params.TotalIncome != nil {
		patch.TotalIncome = params.TotalIncome
	}
	if patch.Empty() {
		return nil, dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	if patch.TotalIncome != nil && patch.TotalIncome.IsNegative() {
		return nil, dErrors.New(dErrors.CodeValidation, "total_income cannot be negative")
	}
	if patch.TotalExpenses != nil && patch.TotalExpenses.IsNegative() {
		return nil, dErrors.New(dErrors.CodeValidation, "total_expenses cannot be negative")
	}

	budget, err := s.budgets.Update(ctx, userID, budgetID, patch)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "budget not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update budget")
	}

	s.events.Publish(ctx, events.Event{Type: "budget.updated", UserID: userID, EntityID: budgetID})
	return budget, nil
}

// Delete removes the budget.
func (s *Service) Delete(ctx context.Context, userID, budgetID int64) error {
	ctx, span := tracer.Start(ctx, "budget.Delete")
	defer span.End()

	if err := s.budgets.Delete(ctx, userID, budgetID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "budget not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete budget")
	}

	s.events.Publish(ctx, events.Event{Type: "budget.deleted", UserID: userID, EntityID: budgetID})
	return nil
}
