package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartsave/internal/auth/models"
	"smartsave/internal/platform/postgres"
	"smartsave/pkg/platform/sentinel"
)

// PostgresUserStore persists users in PostgreSQL.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, name, preferred_currency, timezone)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		user.Email, user.PasswordHash, user.Name, user.PreferredCurrency, user.Timezone,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	prefs := models.DefaultPreferences(user.ID)
	_, err = tx.Exec(ctx,
		`INSERT INTO user_preferences (user_id, notifications_enabled, weekly_summary)
		 VALUES ($1, $2, $3)`,
		prefs.UserID, prefs.NotificationsEnabled, prefs.WeeklySummary,
	)
	if err != nil {
		return fmt.Errorf("insert preferences: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx,
		`SELECT id, email, password_hash, name, preferred_currency, timezone, created_at, last_login
		 FROM users WHERE lower(email) = lower($1)`, email)
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findOne(ctx,
		`SELECT id, email, password_hash, name, preferred_currency, timezone, created_at, last_login
		 FROM users WHERE id = $1`, id)
}

func (s *PostgresUserStore) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name,
		&u.PreferredCurrency, &u.Timezone, &u.CreatedAt, &u.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *PostgresUserStore) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
