package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"smartsave/internal/entry/models"
	goalmodels "smartsave/internal/goal/models"
	goalservice "smartsave/internal/goal/service"
	"smartsave/internal/storage"
	dErrors "smartsave/pkg/domain-errors"
)

type EntryServiceSuite struct {
	suite.Suite
	ctx     context.Context
	mem     *storage.InMemory
	goals   *goalservice.Service
	service *Service
}

func TestEntryServiceSuite(t *testing.T) {
	suite.Run(t, new(EntryServiceSuite))
}

func (s *EntryServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.mem = storage.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.goals = goalservice.New(s.mem.Goals(), logger, nil, nil)
	s.service = New(s.mem.Entries(), s.goals, nil, logger, nil, nil)
}

func (s *EntryServiceSuite) newGoal(userID int64) *goalmodels.Goal {
	goal, err := s.goals.Create(s.ctx, userID, goalservice.CreateParams{
		Title:        "vacation",
		TargetAmount: decimal.NewFromInt(1000),
		TargetDate:   time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
		Category:     "travel",
	})
	s.Require().NoError(err)
	return goal
}

func (s *EntryServiceSuite) TestCreateDefaultsEntryDateToToday() {
	entry, err := s.service.Create(s.ctx, 1, CreateParams{
		Amount: decimal.RequireFromString("0.01"),
	})
	s.Require().NoError(err)
	s.NotZero(entry.ID)
	s.Nil(entry.GoalID)

	now := time.Now().UTC()
	s.Equal(now.Format("2006-01-02"), entry.EntryDate.Format("2006-01-02"))
	s.Zero(entry.EntryDate.Hour())
}

func (s *EntryServiceSuite) TestCreateRejectsNonPositiveAmount() {
	for _, amount := range []string{"0", "-10"} {
		_, err := s.service.Create(s.ctx, 1, CreateParams{Amount: decimal.RequireFromString(amount)})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	}
}

func (s *EntryServiceSuite) TestCreateAgainstActiveGoal() {
	goal := s.newGoal(1)

	entry, err := s.service.Create(s.ctx, 1, CreateParams{
		Amount: decimal.NewFromInt(250),
		GoalID: &goal.ID,
	})
	s.Require().NoError(err)
	s.Require().NotNil(entry.GoalID)

	got, err := s.goals.Get(s.ctx, 1, goal.ID)
	s.Require().NoError(err)
	s.InDelta(25.0, got.Progress(), 0.0001)
}

func (s *EntryServiceSuite) TestCreateAgainstInactiveGoal() {
	goal := s.newGoal(1)
	_, err := s.goals.Update(s.ctx, 1, goal.ID, goalservice.CreateParams{
		Title:        goal.Title,
		TargetAmount: goal.TargetAmount,
		TargetDate:   goal.TargetDate,
		Category:     goal.Category,
	}, goalmodels.StatusCompleted)
	s.Require().NoError(err)

	_, err = s.service.Create(s.ctx, 1, CreateParams{
		Amount: decimal.NewFromInt(10),
		GoalID: &goal.ID,
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *EntryServiceSuite) TestCreateAgainstMissingGoal() {
	missing := int64(404)
	_, err := s.service.Create(s.ctx, 1, CreateParams{
		Amount: decimal.NewFromInt(10),
		GoalID: &missing,
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *EntryServiceSuite) TestCreateAgainstForeignGoal() {
	goal := s.newGoal(2)
	_, err := s.service.Create(s.ctx, 1, CreateParams{
		Amount: decimal.NewFromInt(10),
		GoalID: &goal.ID,
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *EntryServiceSuite) TestListPaginationAndSummary() {
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	goal := s.newGoal(1)
	for i := 0; i < 60; i++ {
		params := CreateParams{Amount: decimal.NewFromInt(10)}
		if i%2 == 0 {
			params.GoalID = &goal.ID
		}
		date := day.AddDate(0, 0, i%20)
		params.EntryDate = &date
		_, err := s.service.Create(s.ctx, 1, params)
		s.Require().NoError(err)
	}

	result, err := s.service.List(s.ctx, 1, ListParams{})
	s.Require().NoError(err)
	s.Len(result.Entries, 50)
	s.Equal(60, result.Total)
	s.Equal(50, result.Limit)
	s.True(result.HasMore)
	s.Equal(60, result.Summary.TotalEntries)
	s.True(result.Summary.TotalAmount.Equal(decimal.NewFromInt(600)))
	s.True(result.Summary.GoalsAmount.Equal(decimal.NewFromInt(300)))

	result, err = s.service.List(s.ctx, 1, ListParams{Offset: 50})
	s.Require().NoError(err)
	s.Len(result.Entries, 10)
	s.False(result.HasMore)

	// The summary block ignores filters: it still spans the full history.
	result, err = s.service.List(s.ctx, 1, ListParams{Unallocated: true})
	s.Require().NoError(err)
	s.Equal(30, result.Total)
	s.Equal(60, result.Summary.TotalEntries)
}

func (s *EntryServiceSuite) TestGetNotFound() {
	_, err := s.service.Get(s.ctx, 1, 404)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *EntryServiceSuite) TestUpdateEmptyPatchRejected() {
	entry, err := s.service.Create(s.ctx, 1, CreateParams{Amount: decimal.NewFromInt(10)})
	s.Require().NoError(err)

	_, err = s.service.Update(s.ctx, 1, entry.ID, models.Patch{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *EntryServiceSuite) TestUpdateValidatesAmountAndGoal() {
	entry, err := s.service.Create(s.ctx, 1, CreateParams{Amount: decimal.NewFromInt(10)})
	s.Require().NoError(err)

	zero := decimal.Zero
	_, err = s.service.Update(s.ctx, 1, entry.ID, models.Patch{Amount: &zero})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	goal := s.newGoal(1)
	updated, err := s.service.Update(s.ctx, 1, entry.ID, models.Patch{GoalID: &goal.ID, GoalIDSet: true})
	s.Require().NoError(err)
	s.Require().NotNil(updated.GoalID)
	s.Equal(goal.ID, *updated.GoalID)
	s.Require().NotNil(updated.GoalTitle)
	s.Equal("vacation", *updated.GoalTitle)
}

func (s *EntryServiceSuite) TestUpdateNotFound() {
	notes := "x"
	_, err := s.service.Update(s.ctx, 1, 404, models.Patch{Notes: &notes, NotesSet: true})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *EntryServiceSuite) TestDelete() {
	entry, err := s.service.Create(s.ctx, 1, CreateParams{Amount: decimal.NewFromInt(10)})
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx, 1, entry.ID))
	s.True(dErrors.HasCode(s.service.Delete(s.ctx, 1, entry.ID), dErrors.CodeNotFound))
}

func (s *EntryServiceSuite) TestStatsGeneralAndTrend() {
	goal := s.newGoal(1)
	now := time.Now().UTC()
	recent := now.AddDate(0, 0, -2)
	older := now.AddDate(0, -2, 0)

	for _, e := range []struct {
		amount string
		goalID *int64
		date   time.Time
	}{
		{"100.00", &goal.ID, recent},
		{"50.00", nil, recent},
		{"75.00", &goal.ID, older}, // outside month window, inside trend
	} {
		_, err := s.service.Create(s.ctx, 1, CreateParams{
			Amount:    decimal.RequireFromString(e.amount),
			GoalID:    e.goalID,
			EntryDate: &e.date,
		})
		s.Require().NoError(err)
	}

	stats, err := s.service.Stats(s.ctx, 1, PeriodMonth)
	s.Require().NoError(err)
	s.Equal(PeriodMonth, stats.Period)
	s.Equal(2, stats.General.TotalEntries)
	s.InDelta(150.0, stats.General.TotalAmount, 0.0001)
	s.InDelta(75.0, stats.General.AvgAmount, 0.0001)
	s.InDelta(50.0, stats.General.MinAmount, 0.0001)
	s.InDelta(100.0, stats.General.MaxAmount, 0.0001)
	s.Equal(1, stats.General.GoalsCount)
	s.InDelta(50.0, stats.General.PersonalSavings, 0.0001)
	s.InDelta(100.0, stats.General.GoalSavings, 0.0001)

	s.Require().Len(stats.ByCategory, 2)
	s.Equal("travel", stats.ByCategory[0].Category)
	s.Equal("personal", stats.ByCategory[1].Category)

	// The six-month trend includes the entry outside the month window.
	total := 0
	for _, bucket := range stats.MonthlyTrend {
		total += bucket.EntriesCount
	}
	s.Equal(3, total)
}

func (s *EntryServiceSuite) TestStatsYearWindow() {
	now := time.Now().UTC()
	old := now.AddDate(0, -8, 0)
	_, err := s.service.Create(s.ctx, 1, CreateParams{
		Amount:    decimal.NewFromInt(40),
		EntryDate: &old,
	})
	s.Require().NoError(err)

	month, err := s.service.Stats(s.ctx, 1, PeriodMonth)
	s.Require().NoError(err)
	s.Zero(month.General.TotalEntries)

	year, err := s.service.Stats(s.ctx, 1, PeriodYear)
	s.Require().NoError(err)
	s.Equal(1, year.General.TotalEntries)
}

func TestParsePeriod(t *testing.T) {
	for raw, want := range map[string]Period{
		"":        PeriodMonth,
		"week":    PeriodWeek,
		"month":   PeriodMonth,
		"quarter": PeriodQuarter,
		"year":    PeriodYear,
	} {
		got, err := ParsePeriod(raw)
		if err != nil || got != want {
			t.Errorf("ParsePeriod(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := ParsePeriod("decade"); !dErrors.HasCode(err, dErrors.CodeValidation) {
		t.Errorf("ParsePeriod(decade) expected validation error, got %v", err)
	}
}
