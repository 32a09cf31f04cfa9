// Package service implements savings-entry recording and the aggregate
// statistics served from them.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"smartsave/internal/entry/models"
	"smartsave/internal/entry/store"
	"smartsave/internal/platform/events"
	"smartsave/internal/platform/metrics"
	"smartsave/internal/platform/redis"
	dErrors "smartsave/pkg/domain-errors"
	"smartsave/pkg/platform/sentinel"
)

var tracer = otel.Tracer("smartsave/entry")

const defaultLimit = 50

// GoalGate is the slice of the goal service entries depend on: confirming a
// goal exists for the user and accepts new entries. It returns domain errors.
type GoalGate interface {
	AssertActive(ctx context.Context, userID, goalID int64) error
}

// Service orchestrates entry operations on top of an EntryStore.
type Service struct {
	entries store.EntryStore
	goals   GoalGate
	cache   *redis.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	events  events.Publisher
}

func New(entries store.EntryStore, goals GoalGate, cache *redis.Client, logger *slog.Logger, m *metrics.Metrics, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{entries: entries, goals: goals, cache: cache, logger: logger, metrics: m, events: publisher}
}

// CreateParams carries the typed entry payload. A nil GoalID records a
// personal, unallocated saving. A nil EntryDate defaults to today (UTC).
type CreateParams struct {
	Amount    decimal.Decimal
	GoalID    *int64
	Notes     *string
	EntryDate *time.Time
}

// Create validates and persists a new entry. Attaching a goal requires it to
// be active; writes invalidate the cached statistics.
func (s *Service) Create(ctx context.Context, userID int64, params CreateParams) (*models.Entry, error) {
	ctx, span := tracer.Start(ctx, "entry.Create")
	defer span.End()

	if !params.Amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
	}
	if params.GoalID != nil {
		if err := s.goals.AssertActive(ctx, userID, *params.GoalID); err != nil {
			return nil, err
		}
	}

	entryDate := today()
	if params.EntryDate != nil {
		entryDate = *params.EntryDate
	}

	entry := &models.Entry{
		UserID:    userID,
		GoalID:    params.GoalID,
		Amount:    params.Amount,
		Notes:     params.Notes,
		EntryDate: entryDate,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		if errors.Is(err, sentinel.ErrForeignKey) {
			// The goal vanished between the status check and the insert.
			return nil, dErrors.New(dErrors.CodeNotFound, "goal not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create entry")
	}

	s.invalidateStats(ctx, userID)
	s.metrics.IncEntriesCreated()
	s.events.Publish(ctx, events.Event{Type: "entry.created", UserID: userID, EntityID: entry.ID})
	return entry, nil
}

// ListParams narrows and pages an entry listing.
type ListParams struct {
	GoalID      *int64
	Unallocated bool
	StartDate   *time.Time
	EndDate     *time.Time
	Limit       int
	Offset      int
}

// ListResult is a page of entries plus the full-history summary block.
type ListResult struct {
	Entries []*models.Entry
	Summary *models.Summary
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// List returns matching entries, newest first, with pagination metadata. The
// summary block always covers the user's entire history, not the filters.
func (s *Service) List(ctx context.Context, userID int64, params ListParams) (*ListResult, error) {
	ctx, span := tracer.Start(ctx, "entry.List")
	defer span.End()

	if params.Limit <= 0 {
		params.Limit = defaultLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	filter := store.Filter{
		GoalID:      params.GoalID,
		Unallocated: params.Unallocated,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		Limit:       params.Limit,
		Offset:      params.Offset,
	}
	entries, total, err := s.entries.List(ctx, userID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list entries")
	}

	summary, err := s.entries.Summary(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to summarize entries")
	}

	return &ListResult{
		Entries: entries,
		Summary: summary,
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+len(entries) < total,
	}, nil
}

// Get returns a single entry with its joined goal fields.
func (s *Service) Get(ctx context.Context, userID, entryID int64) (*models.Entry, error) {
	ctx, span := tracer.Start(ctx, "entry.Get")
	defer span.End()

	entry, err := s.entries.FindByID(ctx, userID, entryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "entry not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load entry")
	}
	return entry, nil
}

// Update applies a partial patch and returns the updated entry. An empty
// patch is rejected; re-attaching a goal requires it to be active.
func (s *Service) Update(ctx context.Context, userID, entryID int64, patch models.Patch) (*models.Entry, error) {
	ctx, span := tracer.Start(ctx, "entry.Update")
	defer span.End()

	if patch.Empty() {
		return nil, dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	if patch.Amount != nil && !patch.Amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
	}
	if patch.GoalIDSet && patch.GoalID != nil {
		if err := s.goals.AssertActive(ctx, userID, *patch.GoalID); err != nil {
			return nil, err
		}
	}

	if err := s.entries.Update(ctx, userID, entryID, patch); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "entry not found")
		case errors.Is(err, sentinel.ErrForeignKey):
			return nil, dErrors.New(dErrors.CodeNotFound, "goal not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update entry")
	}

	entry, err := s.entries.FindByID(ctx, userID, entryID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load entry")
	}

	s.invalidateStats(ctx, userID)
	s.events.Publish(ctx, events.Event{Type: "entry.updated", UserID: userID, EntityID: entryID})
	return entry, nil
}

// Delete removes the entry.
func (s *Service) Delete(ctx context.Context, userID, entryID int64) error {
	ctx, span := tracer.Start(ctx, "entry.Delete")
	defer span.End()

	if err := s.entries.Delete(ctx, userID, entryID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "entry not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete entry")
	}

	s.invalidateStats(ctx, userID)
	s.events.Publish(ctx, events.Event{Type: "entry.deleted", UserID: userID, EntityID: entryID})
	return nil
}

// today is the current UTC date at midnight, matching the entry_date column.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
