package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartsave/internal/goal/models"
	"smartsave/pkg/platform/sentinel"
)

// goalColumns selects a goal with its derived current amount.
const goalColumns = `
	g.id, g.user_id, g.title, g.description, g.target_amount, g.target_date,
	g.category, g.currency, g.status, g.created_at, g.updated_at,
	COALESCE(SUM(e.amount), 0) AS current_amount`

// PostgresStore persists goals in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, goal *models.Goal) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO savings_goals (user_id, title, description, target_amount, target_date, category, currency, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		goal.UserID, goal.Title, goal.Description, goal.TargetAmount,
		goal.TargetDate, goal.Category, goal.Currency, goal.Status,
	).Scan(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID int64) ([]*models.Goal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+goalColumns+`
		 FROM savings_goals g
		 LEFT JOIN savings_entries e ON e.goal_id = g.id
		 WHERE g.user_id = $1
		 GROUP BY g.id
		 ORDER BY g.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]*models.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, userID, goalID int64) (*models.Goal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+goalColumns+`
		 FROM savings_goals g
		 LEFT JOIN savings_entries e ON e.goal_id = g.id
		 WHERE g.id = $1 AND g.user_id = $2
		 GROUP BY g.id`, goalID, userID)
	if err != nil {
		return nil, fmt.Errorf("find goal: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("find goal: %w", err)
		}
		return nil, sentinel.ErrNotFound
	}
	return scanGoal(rows)
}

func (s *PostgresStore) Update(ctx context.Context, goal *models.Goal) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE savings_goals
		 SET title = $3, description = $4, target_amount = $5, target_date = $6,
		     category = $7, status = $8, updated_at = now()
		 WHERE id = $1 AND user_id = $2`,
		goal.ID, goal.UserID, goal.Title, goal.Description,
		goal.TargetAmount, goal.TargetDate, goal.Category, goal.Status,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, goalID int64) error {
	// The goal_id FK is ON DELETE SET NULL, so attached entries become
	// personal savings instead of dangling references.
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM savings_goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetStatus(ctx context.Context, userID, goalID int64) (models.Status, error) {
	var status models.Status
	err := s.pool.QueryRow(ctx,
		`SELECT status FROM savings_goals WHERE id = $1 AND user_id = $2`,
		goalID, userID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("get goal status: %w", err)
	}
	return status, nil
}

func scanGoal(rows pgx.Rows) (*models.Goal, error) {
	var g models.Goal
	err := rows.Scan(
		&g.ID, &g.UserID, &g.Title, &g.Description, &g.TargetAmount, &g.TargetDate,
		&g.Category, &g.Currency, &g.Status, &g.CreatedAt, &g.UpdatedAt,
		&g.CurrentAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("scan goal: %w", err)
	}
	return &g, nil
}
