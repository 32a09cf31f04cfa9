package store

import (
	"context"
	"time"

	"smartsave/internal/entry/models"
)

// Filter narrows an entry listing. A nil GoalID with Unallocated=false means
// no goal filter; Unallocated=true matches only entries with no goal.
type Filter struct {
	GoalID      *int64
	Unallocated bool
	StartDate   *time.Time
	EndDate     *time.Time
	Limit       int
	Offset      int
}

// EntryStore persists savings entries and serves the aggregation queries.
// Implementations return sentinel errors for factual failures.
type EntryStore interface {
	// Create inserts the entry and fills in ID and timestamps. Returns
	// sentinel.ErrForeignKey when the referenced goal does not exist.
	Create(ctx context.Context, entry *models.Entry) error
	// List returns matching entries sorted by entry_date DESC, id DESC,
	// with joined goal title/status/category, plus the total match count
	// ignoring limit/offset.
	List(ctx context.Context, userID int64, filter Filter) ([]*models.Entry, int, error)
	// FindByID also joins the goal's target and derived current amount.
	FindByID(ctx context.Context, userID, entryID int64) (*models.Entry, error)
	// Update applies a typed partial patch. Returns sentinel.ErrNotFound
	// when no row was affected.
	Update(ctx context.Context, userID, entryID int64, patch models.Patch) error
	Delete(ctx context.Context, userID, entryID int64) error

	// Summary aggregates the user's entire history (listing stats block).
	Summary(ctx context.Context, userID int64) (*models.Summary, error)
	// GeneralStats aggregates entries with entry_date >= since.
	GeneralStats(ctx context.Context, userID int64, since time.Time) (*models.GeneralStats, error)
	// CategoryStats groups entries with entry_date >= since by goal
	// category ("personal" when unallocated), ordered by total DESC.
	CategoryStats(ctx context.Context, userID int64, since time.Time) ([]*models.CategoryStat, error)
	// MonthlyTrend buckets entries with entry_date >= since by YYYY-MM,
	// newest first.
	MonthlyTrend(ctx context.Context, userID int64, since time.Time) ([]*models.MonthlyBucket, error)
}
