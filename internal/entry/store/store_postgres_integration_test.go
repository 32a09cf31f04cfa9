//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"smartsave/internal/entry/models"
	"smartsave/internal/entry/store"
	goalmodels "smartsave/internal/goal/models"
	goalstore "smartsave/internal/goal/store"
	"smartsave/pkg/platform/sentinel"
	"smartsave/pkg/testutil/containers"
)

type PostgresEntryStoreSuite struct {
	suite.Suite
	ctx      context.Context
	postgres *containers.PostgresContainer
	entries  *store.PostgresStore
	goals    *goalstore.PostgresStore
	userID   int64
	goalID   int64
}

func TestPostgresEntryStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresEntryStoreSuite))
}

func (s *PostgresEntryStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.entries = store.NewPostgres(s.postgres.Pool)
	s.goals = goalstore.NewPostgres(s.postgres.Pool)
}

func (s *PostgresEntryStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx,
		"savings_entries", "savings_goals", "user_preferences", "users"))

	err := s.postgres.Pool.QueryRow(s.ctx,
		`INSERT INTO users (email, password_hash, name) VALUES ($1, $2, $3) RETURNING id`,
		"entries@example.com", "x", "Entry Tester",
	).Scan(&s.userID)
	s.Require().NoError(err)

	goal := &goalmodels.Goal{
		UserID:       s.userID,
		Title:        "vacation",
		TargetAmount: decimal.NewFromInt(1000),
		TargetDate:   time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
		Category:     "travel",
		Currency:     "USD",
		Status:       goalmodels.StatusActive,
	}
	s.Require().NoError(s.goals.Create(s.ctx, goal))
	s.goalID = goal.ID
}

func (s *PostgresEntryStoreSuite) newEntry(goalID *int64, amount string, date time.Time) *models.Entry {
	entry := &models.Entry{
		UserID:    s.userID,
		GoalID:    goalID,
		Amount:    decimal.RequireFromString(amount),
		EntryDate: date,
	}
	s.Require().NoError(s.entries.Create(s.ctx, entry))
	return entry
}

func (s *PostgresEntryStoreSuite) TestCreateUnknownGoalFails() {
	missing := int64(404404)
	err := s.entries.Create(s.ctx, &models.Entry{
		UserID:    s.userID,
		GoalID:    &missing,
		Amount:    decimal.NewFromInt(10),
		EntryDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	s.ErrorIs(err, sentinel.ErrForeignKey)
}

func (s *PostgresEntryStoreSuite) TestListFiltersSortingPagination() {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		s.newEntry(&s.goalID, "10.00", base.AddDate(0, 0, i))
	}
	s.newEntry(nil, "20.00", base)

	entries, total, err := s.entries.List(s.ctx, s.userID, store.Filter{
		GoalID: &s.goalID,
		Limit:  4,
	})
	s.Require().NoError(err)
	s.Equal(6, total)
	s.Require().Len(entries, 4)
	s.True(entries[0].EntryDate.After(entries[1].EntryDate))
	s.Require().NotNil(entries[0].GoalTitle)
	s.Equal("vacation", *entries[0].GoalTitle)

	entries, total, err = s.entries.List(s.ctx, s.userID, store.Filter{
		GoalID: &s.goalID,
		Limit:  4,
		Offset: 4,
	})
	s.Require().NoError(err)
	s.Equal(6, total)
	s.Len(entries, 2)

	entries, total, err = s.entries.List(s.ctx, s.userID, store.Filter{Unallocated: true, Limit: 50})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(entries, 1)
	s.Nil(entries[0].GoalID)

	start := base.AddDate(0, 0, 1)
	end := base.AddDate(0, 0, 3)
	_, total, err = s.entries.List(s.ctx, s.userID, store.Filter{StartDate: &start, EndDate: &end, Limit: 50})
	s.Require().NoError(err)
	s.Equal(3, total)
}

func (s *PostgresEntryStoreSuite) TestFindByIDJoinsGoalAmounts() {
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entry := s.newEntry(&s.goalID, "75.00", day)
	s.newEntry(&s.goalID, "25.00", day)

	got, err := s.entries.FindByID(s.ctx, s.userID, entry.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.GoalTargetAmount)
	s.Require().NotNil(got.GoalCurrentAmount)
	s.True(got.GoalTargetAmount.Equal(decimal.NewFromInt(1000)))
	s.True(got.GoalCurrentAmount.Equal(decimal.NewFromInt(100)))
}

func (s *PostgresEntryStoreSuite) TestUpdatePatch() {
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entry := s.newEntry(&s.goalID, "75.00", day)

	amount := decimal.RequireFromString("80.50")
	notes := "bonus"
	s.Require().NoError(s.entries.Update(s.ctx, s.userID, entry.ID, models.Patch{
		Amount:   &amount,
		Notes:    &notes,
		NotesSet: true,
	}))

	got, err := s.entries.FindByID(s.ctx, s.userID, entry.ID)
	s.Require().NoError(err)
	s.True(got.Amount.Equal(amount))
	s.Require().NotNil(got.Notes)
	s.Equal("bonus", *got.Notes)
	s.Require().NotNil(got.GoalID)

	// Explicit null detaches the goal.
	s.Require().NoError(s.entries.Update(s.ctx, s.userID, entry.ID, models.Patch{GoalIDSet: true}))
	got, err = s.entries.FindByID(s.ctx, s.userID, entry.ID)
	s.Require().NoError(err)
	s.Nil(got.GoalID)

	missing := int64(404404)
	err = s.entries.Update(s.ctx, s.userID, entry.ID, models.Patch{GoalID: &missing, GoalIDSet: true})
	s.ErrorIs(err, sentinel.ErrForeignKey)

	err = s.entries.Update(s.ctx, s.userID, 404404, models.Patch{Amount: &amount})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresEntryStoreSuite) TestAggregations() {
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s.newEntry(&s.goalID, "100.00", since)
	s.newEntry(&s.goalID, "50.00", since.AddDate(0, 0, 5))
	s.newEntry(nil, "30.00", since.AddDate(0, 0, 10))
	s.newEntry(nil, "999.00", since.AddDate(0, 0, -1)) // outside window

	st, err := s.entries.GeneralStats(s.ctx, s.userID, since)
	s.Require().NoError(err)
	s.Equal(3, st.TotalEntries)
	s.True(st.TotalAmount.Equal(decimal.NewFromInt(180)))
	s.True(st.AvgAmount.Equal(decimal.NewFromInt(60)))
	s.True(st.MinAmount.Equal(decimal.NewFromInt(30)))
	s.True(st.MaxAmount.Equal(decimal.NewFromInt(100)))
	s.Equal(1, st.GoalsCount)
	s.True(st.PersonalSavings.Equal(decimal.NewFromInt(30)))
	s.True(st.GoalSavings.Equal(decimal.NewFromInt(150)))

	sum, err := s.entries.Summary(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(4, sum.TotalEntries) // the summary ignores windows entirely
	s.True(sum.TotalAmount.Equal(decimal.RequireFromString("1179.00")))

	cats, err := s.entries.CategoryStats(s.ctx, s.userID, since)
	s.Require().NoError(err)
	s.Require().Len(cats, 2)
	s.Equal("travel", cats[0].Category)
	s.True(cats[0].TotalAmount.Equal(decimal.NewFromInt(150)))
	s.Equal("personal", cats[1].Category)

	trend, err := s.entries.MonthlyTrend(s.ctx, s.userID, since)
	s.Require().NoError(err)
	s.Require().Len(trend, 1)
	s.Equal("2026-08", trend[0].Month)
	s.Equal(3, trend[0].EntriesCount)
}
