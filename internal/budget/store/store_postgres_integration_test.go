//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"smartsave/internal/budget/models"
	"smartsave/internal/budget/store"
	"smartsave/pkg/platform/sentinel"
	"smartsave/pkg/testutil/containers"
)

type PostgresBudgetStoreSuite struct {
	suite.Suite
	ctx      context.Context
	postgres *containers.PostgresContainer
	budgets  *store.PostgresStore
	userID   int64
}

func TestPostgresBudgetStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresBudgetStoreSuite))
}

func (s *PostgresBudgetStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.budgets = store.NewPostgres(s.postgres.Pool)
}

func (s *PostgresBudgetStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx,
		"monthly_budgets", "user_preferences", "users"))

	err := s.postgres.Pool.QueryRow(s.ctx,
		`INSERT INTO users (email, password_hash, name) VALUES ($1, $2, $3) RETURNING id`,
		"budgets@example.com", "x", "Budget Tester",
	).Scan(&s.userID)
	s.Require().NoError(err)
}

func (s *PostgresBudgetStoreSuite) newBudget(monthYear string) *models.Budget {
	budget := &models.Budget{
		UserID:        s.userID,
		MonthYear:     monthYear,
		TotalIncome:   decimal.NewFromInt(1000),
		TotalExpenses: decimal.Zero,
	}
	s.Require().NoError(s.budgets.Create(s.ctx, budget))
	return budget
}

func (s *PostgresBudgetStoreSuite) TestDuplicateMonthConflicts() {
	s.newBudget("2024-03")

	err := s.budgets.Create(s.ctx, &models.Budget{
		UserID:      s.userID,
		MonthYear:   "2024-03",
		TotalIncome: decimal.NewFromInt(500),
	})
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresBudgetStoreSuite) TestListOrderAndMonthKeyRoundTrip() {
	s.newBudget("2026-01")
	s.newBudget("2026-03")
	s.newBudget("2025-12")

	budgets, err := s.budgets.ListByUser(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Require().Len(budgets, 3)
	// The char(7) column must come back unpadded.
	s.Equal("2026-03", budgets[0].MonthYear)
	s.Equal("2026-01", budgets[1].MonthYear)
	s.Equal("2025-12", budgets[2].MonthYear)
}

func (s *PostgresBudgetStoreSuite) TestFindByMonth() {
	created := s.newBudget("2026-03")

	got, err := s.budgets.FindByMonth(s.ctx, s.userID, "2026-03")
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)

	_, err = s.budgets.FindByMonth(s.ctx, s.userID, "2026-04")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresBudgetStoreSuite) TestUpdateReturnsFullRow() {
	budget := s.newBudget("2026-03")

	expenses := decimal.NewFromInt(300)
	updated, err := s.budgets.Update(s.ctx, s.userID, budget.ID, models.Patch{
		TotalExpenses: &expenses,
	})
	s.Require().NoError(err)
	s.True(updated.TotalIncome.Equal(decimal.NewFromInt(1000)))
	s.True(updated.TotalExpenses.Equal(expenses))
	s.True(updated.Available().Equal(decimal.NewFromInt(700)))
	s.Equal("2026-03", updated.MonthYear)

	_, err = s.budgets.Update(s.ctx, s.userID, 404404, models.Patch{TotalExpenses: &expenses})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresBudgetStoreSuite) TestDelete() {
	budget := s.newBudget("2026-03")

	s.Require().NoError(s.budgets.Delete(s.ctx, s.userID, budget.ID))
	s.ErrorIs(s.budgets.Delete(s.ctx, s.userID, budget.ID), sentinel.ErrNotFound)
}
