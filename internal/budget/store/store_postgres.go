package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartsave/internal/budget/models"
	"smartsave/internal/platform/postgres"
	"smartsave/pkg/platform/sentinel"
)

// PostgresStore persists budgets in PostgreSQL. The unique index on
// (user_id, month_year) is the authority on duplicates, so concurrent
// creates for the same month cannot both succeed.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, budget *models.Budget) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO monthly_budgets (user_id, month_year, total_income, total_expenses)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		budget.UserID, budget.MonthYear, budget.TotalIncome, budget.TotalExpenses,
	).Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID int64) ([]*models.Budget, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, month_year, total_income, total_expenses, created_at, updated_at
		 FROM monthly_budgets
		 WHERE user_id = $1
		 ORDER BY month_year DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := make([]*models.Budget, 0)
	for rows.Next() {
		var b models.Budget
		err := rows.Scan(&b.ID, &b.UserID, &b.MonthYear, &b.TotalIncome,
			&b.TotalExpenses, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.MonthYear = strings.TrimSpace(b.MonthYear)
		budgets = append(budgets, &b)
	}
	return budgets, rows.Err()
}

func (s *PostgresStore) FindByMonth(ctx context.Context, userID int64, monthYear string) (*models.Budget, error) {
	var b models.Budget
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, month_year, total_income, total_expenses, created_at, updated_at
		 FROM monthly_budgets
		 WHERE user_id = $1 AND month_year = $2`, userID, monthYear,
	).Scan(&b.ID, &b.UserID, &b.MonthYear, &b.TotalIncome,
		&b.TotalExpenses, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find budget: %w", err)
	}
	b.MonthYear = strings.TrimSpace(b.MonthYear)
	return &b, nil
}

func (s *PostgresStore) Update(ctx context.Context, userID, budgetID int64, patch models.Patch) (*models.Budget, error) {
	if patch.Empty() {
		return nil, sentinel.ErrNotFound
	}

	set := make([]string, 0, 2)
	args := []any{budgetID, userID}
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, column+" = $"+strconv.Itoa(len(args)))
	}
	if patch.TotalIncome != nil {
		add("total_income", *patch.TotalIncome)
	}
	if patch.TotalExpenses != nil {
		add("total_expenses", *patch.TotalExpenses)
	}
	set = append(set, "updated_at = now()")

	var b models.Budget
	err := s.pool.QueryRow(ctx,
		`UPDATE monthly_budgets SET `+strings.Join(set, ", ")+`
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, month_year, total_income, total_expenses, created_at, updated_at`,
		args...,
	).Scan(&b.ID, &b.UserID, &b.MonthYear, &b.TotalIncome,
		&b.TotalExpenses, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update budget: %w", err)
	}
	b.MonthYear = strings.TrimSpace(b.MonthYear)
	return &b, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, budgetID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM monthly_budgets WHERE id = $1 AND user_id = $2`, budgetID, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
