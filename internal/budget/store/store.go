package store

import (
	"context"

	"smartsave/internal/budget/models"
)

// BudgetStore persists monthly budgets. The (user, month_year) pair is
// unique; Create returns sentinel.ErrConflict when it is taken.
type BudgetStore interface {
	// Create inserts the budget and fills in ID and timestamps.
	Create(ctx context.Context, budget *models.Budget) error
	// ListByUser returns the user's budgets ordered by month key descending.
	ListByUser(ctx context.Context, userID int64) ([]*models.Budget, error)
	// FindByMonth returns sentinel.ErrNotFound when no budget exists for
	// the month.
	FindByMonth(ctx context.Context, userID int64, monthYear string) (*models.Budget, error)
	// Update applies a typed partial patch and returns the updated record.
	// Returns sentinel.ErrNotFound when no row was affected.
	Update(ctx context.Context, userID, budgetID int64, patch models.Patch) (*models.Budget, error)
	Delete(ctx context.Context, userID, budgetID int64) error
}
