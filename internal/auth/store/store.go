package store

import (
	"context"
	"time"

	"smartsave/internal/auth/models"
)

// UserStore persists identity records. Implementations return sentinel
// errors (sentinel.ErrNotFound, sentinel.ErrConflict) for factual failures.
type UserStore interface {
	// Create inserts the user together with a default preferences row and
	// fills in ID and CreatedAt. Returns sentinel.ErrConflict when the
	// email is already registered.
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	RecordLogin(ctx context.Context, id int64, at time.Time) error
}
