//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	entrymodels "smartsave/internal/entry/models"
	entrystore "smartsave/internal/entry/store"
	"smartsave/internal/goal/models"
	"smartsave/internal/goal/store"
	"smartsave/pkg/platform/sentinel"
	"smartsave/pkg/testutil/containers"
)

type PostgresGoalStoreSuite struct {
	suite.Suite
	ctx      context.Context
	postgres *containers.PostgresContainer
	goals    *store.PostgresStore
	entries  *entrystore.PostgresStore
	userID   int64
}

func TestPostgresGoalStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresGoalStoreSuite))
}

func (s *PostgresGoalStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.goals = store.NewPostgres(s.postgres.Pool)
	s.entries = entrystore.NewPostgres(s.postgres.Pool)
}

func (s *PostgresGoalStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx,
		"savings_entries", "savings_goals", "user_preferences", "users"))

	err := s.postgres.Pool.QueryRow(s.ctx,
		`INSERT INTO users (email, password_hash, name) VALUES ($1, $2, $3) RETURNING id`,
		"goals@example.com", "x", "Goal Tester",
	).Scan(&s.userID)
	s.Require().NoError(err)
}

func (s *PostgresGoalStoreSuite) newGoal() *models.Goal {
	goal := &models.Goal{
		UserID:       s.userID,
		Title:        "vacation",
		TargetAmount: decimal.NewFromInt(1000),
		TargetDate:   time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
		Category:     "travel",
		Currency:     "USD",
		Status:       models.StatusActive,
	}
	s.Require().NoError(s.goals.Create(s.ctx, goal))
	return goal
}

func (s *PostgresGoalStoreSuite) TestCurrentAmountDerivedFromEntries() {
	goal := s.newGoal()

	for _, amount := range []string{"150.00", "100.00"} {
		s.Require().NoError(s.entries.Create(s.ctx, s.newEntry(goal.ID, amount)))
	}

	got, err := s.goals.FindByID(s.ctx, s.userID, goal.ID)
	s.Require().NoError(err)
	s.True(got.CurrentAmount.Equal(decimal.RequireFromString("250.00")))
	s.InDelta(25.0, got.Progress(), 0.0001)
}

func (s *PostgresGoalStoreSuite) TestDeleteDetachesEntries() {
	goal := s.newGoal()
	entry := s.newEntry(goal.ID, "50.00")
	s.Require().NoError(s.entries.Create(s.ctx, entry))

	s.Require().NoError(s.goals.Delete(s.ctx, s.userID, goal.ID))

	got, err := s.entries.FindByID(s.ctx, s.userID, entry.ID)
	s.Require().NoError(err)
	s.Nil(got.GoalID)
}

func (s *PostgresGoalStoreSuite) TestUpdateAndStatus() {
	goal := s.newGoal()

	goal.Title = "house"
	goal.Status = models.StatusCompleted
	s.Require().NoError(s.goals.Update(s.ctx, goal))

	status, err := s.goals.GetStatus(s.ctx, s.userID, goal.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, status)

	goal.ID = 404404
	s.ErrorIs(s.goals.Update(s.ctx, goal), sentinel.ErrNotFound)
}

func (s *PostgresGoalStoreSuite) TestListOrderAndScoping() {
	first := s.newGoal()
	second := s.newGoal()

	goals, err := s.goals.ListByUser(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Require().Len(goals, 2)
	s.Equal(second.ID, goals[0].ID)
	s.Equal(first.ID, goals[1].ID)

	_, err = s.goals.FindByID(s.ctx, s.userID+1, first.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresGoalStoreSuite) newEntry(goalID int64, amount string) *entrymodels.Entry {
	return &entrymodels.Entry{
		UserID:    s.userID,
		GoalID:    &goalID,
		Amount:    decimal.RequireFromString(amount),
		EntryDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}
