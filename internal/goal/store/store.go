package store

import (
	"context"

	"smartsave/internal/goal/models"
)

// GoalStore persists savings goals. Implementations return sentinel errors
// for factual failures; reads fill in the derived CurrentAmount.
type GoalStore interface {
	// Create inserts the goal and fills in ID and timestamps.
	Create(ctx context.Context, goal *models.Goal) error
	// ListByUser returns the user's goals ordered by creation time descending.
	ListByUser(ctx context.Context, userID int64) ([]*models.Goal, error)
	// FindByID returns sentinel.ErrNotFound when no goal with that id is
	// owned by the user.
	FindByID(ctx context.Context, userID, goalID int64) (*models.Goal, error)
	// Update overwrites the mutable fields of the goal identified by
	// goal.ID and goal.UserID. Returns sentinel.ErrNotFound when no row
	// was affected.
	Update(ctx context.Context, goal *models.Goal) error
	// Delete removes the goal. Entries referencing it are detached, not
	// deleted. Returns sentinel.ErrNotFound when no row was affected.
	Delete(ctx context.Context, userID, goalID int64) error
	// GetStatus returns the goal's status without the derived fields.
	GetStatus(ctx context.Context, userID, goalID int64) (models.Status, error)
}
