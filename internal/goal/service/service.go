// Package service implements the savings-goal lifecycle.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"smartsave/internal/goal/models"
	"smartsave/internal/goal/store"
	"smartsave/internal/platform/events"
	"smartsave/internal/platform/metrics"
	dErrors "smartsave/pkg/domain-errors"
	"smartsave/pkg/platform/sentinel"
)

var tracer = otel.Tracer("smartsave/goal")

// Service orchestrates goal operations on top of a GoalStore.
type Service struct {
	goals   store.GoalStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	events  events.Publisher
}

func New(goals store.GoalStore, logger *slog.Logger, m *metrics.Metrics, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{goals: goals, logger: logger, metrics: m, events: publisher}
}

// CreateParams carries the typed goal payload. Update reuses it because goal
// updates overwrite the full record rather than patching fields.
type CreateParams struct {
	Title        string
	Description  string
	TargetAmount decimal.Decimal
	TargetDate   time.Time
	Category     string
	Currency     string
}

func (p CreateParams) validate() error {
	if p.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if !p.TargetAmount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "target_amount must be greater than zero")
	}
	if p.TargetDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "target_date is required")
	}
	return nil
}

// Create persists a new active goal and returns it with zero progress.
func (s *Service) Create(ctx context.Context, userID int64, params CreateParams) (*models.Goal, error) {
	ctx, span := tracer.Start(ctx, "goal.Create")
	defer span.End()

	if err := params.validate(); err != nil {
		return nil, err
	}
	if params.Category == "" {
		params.Category = "general"
	}
	if params.Currency == "" {
		params.Currency = "USD"
	}

	goal := &models.Goal{
		UserID:       userID,
		Title:        params.Title,
		Description:  params.Description,
		TargetAmount: params.TargetAmount,
		TargetDate:   params.TargetDate,
		Category:     params.Category,
		Currency:     params.Currency,
		Status:       models.StatusActive,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create goal")
	}

	s.metrics.IncGoalsCreated()
	s.events.Publish(ctx, events.Event{Type: "goal.created", UserID: userID, EntityID: goal.ID})
	s.logger.InfoContext(ctx, "goal created", "user_id", userID, "goal_id", goal.ID)
	return goal, nil
}

// List returns the user's goals, newest first, with derived current amounts.
func (s *Service) List(ctx context.Context, userID int64) ([]*models.Goal, error) {
	ctx, span := tracer.Start(ctx, "goal.List")
	defer span.End()

	goals, err := s.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list goals")
	}
	return goals, nil
}

// Get returns a single goal owned by the user.
func (s *Service) Get(ctx context.Context, userID, goalID int64) (*models.Goal, error) {
	ctx, span := tracer.Start(ctx, "goal.Get")
	defer span.End()

	goal, err := s.goals.FindByID(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "goal not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load goal")
	}
	return goal, nil
}

// Update overwrites all mutable fields of the goal and returns the updated
// record with its progress recomputed. Status may move between active,
// completed and deleted; the derived current amount is never writable.
func (s *Service) Update(ctx context.Context, userID, goalID int64, params CreateParams, status models.Status) (*models.Goal, error) {
	ctx, span := tracer.Start(ctx, "goal.Update")
	defer span.End()

	if err := params.validate(); err != nil {
		return nil, err
	}
	if status == "" {
		status = models.StatusActive
	}
	if !status.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "status must be active, completed or deleted")
	}
	if params.Category == "" {
		params.Category = "general"
	}

	goal := &models.Goal{
		ID:           goalID,
		UserID:       userID,
		Title:        params.Title,
		Description:  params.Description,
		TargetAmount: params.TargetAmount,
		TargetDate:   params.TargetDate,
		Category:     params.Category,
		Status:       status,
	}
	if err := s.goals.Update(ctx, goal); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "goal not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update goal")
	}

	updated, err := s.goals.FindByID(ctx, userID, goalID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load goal")
	}
	s.events.Publish(ctx, events.Event{Type: "goal.updated", UserID: userID, EntityID: goalID})
	return updated, nil
}

// Delete removes the goal. Entries attached to it become unallocated.
func (s *Service) Delete(ctx context.Context, userID, goalID int64) error {
	ctx, span := tracer.Start(ctx, "goal.Delete")
	defer span.End()

	if err := s.goals.Delete(ctx, userID, goalID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "goal not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete goal")
	}

	s.events.Publish(ctx, events.Event{Type: "goal.deleted", UserID: userID, EntityID: goalID})
	s.logger.InfoContext(ctx, "goal deleted", "user_id", userID, "goal_id", goalID)
	return nil
}

// AssertActive confirms the goal exists for the user and accepts new entries.
func (s *Service) AssertActive(ctx context.Context, userID, goalID int64) error {
	ctx, span := tracer.Start(ctx, "goal.AssertActive")
	defer span.End()

	status, err := s.goals.GetStatus(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "goal not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check goal")
	}
	if status != models.StatusActive {
		return dErrors.Newf(dErrors.CodeInvalidState, "goal is %s and cannot accept entries", status)
	}
	return nil
}
