package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartsave/internal/entry/models"
	"smartsave/internal/platform/postgres"
	"smartsave/pkg/platform/sentinel"
)

// PostgresStore persists entries in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, entry *models.Entry) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO savings_entries (user_id, goal_id, amount, notes, entry_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		entry.UserID, entry.GoalID, entry.Amount, entry.Notes, entry.EntryDate,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrForeignKey
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// buildFilter renders the filter into WHERE conditions. The user scope is
// always the first condition; args start at $2.
func buildFilter(filter Filter, args *[]any) string {
	var b strings.Builder
	if filter.Unallocated {
		b.WriteString(" AND se.goal_id IS NULL")
	} else if filter.GoalID != nil {
		*args = append(*args, *filter.GoalID)
		b.WriteString(" AND se.goal_id = $" + strconv.Itoa(len(*args)))
	}
	if filter.StartDate != nil {
		*args = append(*args, *filter.StartDate)
		b.WriteString(" AND se.entry_date >= $" + strconv.Itoa(len(*args)))
	}
	if filter.EndDate != nil {
		*args = append(*args, *filter.EndDate)
		b.WriteString(" AND se.entry_date <= $" + strconv.Itoa(len(*args)))
	}
	return b.String()
}

func (s *PostgresStore) List(ctx context.Context, userID int64, filter Filter) ([]*models.Entry, int, error) {
	args := []any{userID}
	where := buildFilter(filter, &args)

	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM savings_entries se WHERE se.user_id = $1`+where,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	listArgs := args
	listArgs = append(listArgs, filter.Limit)
	limitPos := len(listArgs)
	listArgs = append(listArgs, filter.Offset)
	offsetPos := len(listArgs)

	rows, err := s.pool.Query(ctx,
		`SELECT se.id, se.user_id, se.goal_id, se.amount, se.notes, se.entry_date,
		        se.created_at, se.updated_at,
		        sg.title, sg.status, sg.category
		 FROM savings_entries se
		 LEFT JOIN savings_goals sg ON se.goal_id = sg.id
		 WHERE se.user_id = $1`+where+`
		 ORDER BY se.entry_date DESC, se.id DESC
		 LIMIT $`+strconv.Itoa(limitPos)+` OFFSET $`+strconv.Itoa(offsetPos),
		listArgs...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		var e models.Entry
		err := rows.Scan(
			&e.ID, &e.UserID, &e.GoalID, &e.Amount, &e.Notes, &e.EntryDate,
			&e.CreatedAt, &e.UpdatedAt,
			&e.GoalTitle, &e.GoalStatus, &e.GoalCategory,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, userID, entryID int64) (*models.Entry, error) {
	var e models.Entry
	err := s.pool.QueryRow(ctx,
		`SELECT se.id, se.user_id, se.goal_id, se.amount, se.notes, se.entry_date,
		        se.created_at, se.updated_at,
		        sg.title, sg.status, sg.category, sg.target_amount,
		        CASE WHEN sg.id IS NULL THEN NULL
		             ELSE (SELECT COALESCE(SUM(amount), 0) FROM savings_entries WHERE goal_id = sg.id)
		        END AS goal_current_amount
		 FROM savings_entries se
		 LEFT JOIN savings_goals sg ON se.goal_id = sg.id
		 WHERE se.id = $1 AND se.user_id = $2`,
		entryID, userID,
	).Scan(
		&e.ID, &e.UserID, &e.GoalID, &e.Amount, &e.Notes, &e.EntryDate,
		&e.CreatedAt, &e.UpdatedAt,
		&e.GoalTitle, &e.GoalStatus, &e.GoalCategory, &e.GoalTargetAmount,
		&e.GoalCurrentAmount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find entry: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) Update(ctx context.Context, userID, entryID int64, patch models.Patch) error {
	if patch.Empty() {
		return nil
	}

	set := make([]string, 0, 4)
	args := []any{entryID, userID}
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Amount != nil {
		add("amount", *patch.Amount)
	}
	if patch.NotesSet {
		add("notes", patch.Notes)
	}
	if patch.GoalIDSet {
		add("goal_id", patch.GoalID)
	}
	if patch.EntryDate != nil {
		add("entry_date", *patch.EntryDate)
	}
	set = append(set, "updated_at = now()")

	tag, err := s.pool.Exec(ctx,
		`UPDATE savings_entries SET `+strings.Join(set, ", ")+` WHERE id = $1 AND user_id = $2`,
		args...,
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrForeignKey
		}
		return fmt.Errorf("update entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, entryID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM savings_entries WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Summary(ctx context.Context, userID int64) (*models.Summary, error) {
	var sum models.Summary
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(amount), 0),
		        COALESCE(SUM(CASE WHEN goal_id IS NULL THEN amount ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN goal_id IS NOT NULL THEN amount ELSE 0 END), 0)
		 FROM savings_entries
		 WHERE user_id = $1`, userID,
	).Scan(&sum.TotalEntries, &sum.TotalAmount, &sum.PersonalAmount, &sum.GoalsAmount)
	if err != nil {
		return nil, fmt.Errorf("entry summary: %w", err)
	}
	return &sum, nil
}

func (s *PostgresStore) GeneralStats(ctx context.Context, userID int64, since time.Time) (*models.GeneralStats, error) {
	var st models.GeneralStats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(amount), 0),
		        COALESCE(AVG(amount), 0),
		        COALESCE(MIN(amount), 0),
		        COALESCE(MAX(amount), 0),
		        COUNT(DISTINCT goal_id),
		        COALESCE(SUM(CASE WHEN goal_id IS NULL THEN amount ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN goal_id IS NOT NULL THEN amount ELSE 0 END), 0)
		 FROM savings_entries
		 WHERE user_id = $1 AND entry_date >= $2`, userID, since,
	).Scan(
		&st.TotalEntries, &st.TotalAmount, &st.AvgAmount, &st.MinAmount,
		&st.MaxAmount, &st.GoalsCount, &st.PersonalSavings, &st.GoalSavings,
	)
	if err != nil {
		return nil, fmt.Errorf("general stats: %w", err)
	}
	return &st, nil
}

func (s *PostgresStore) CategoryStats(ctx context.Context, userID int64, since time.Time) ([]*models.CategoryStat, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT COALESCE(sg.category, 'personal') AS category,
		        COUNT(se.id),
		        COALESCE(SUM(se.amount), 0)
		 FROM savings_entries se
		 LEFT JOIN savings_goals sg ON se.goal_id = sg.id
		 WHERE se.user_id = $1 AND se.entry_date >= $2
		 GROUP BY COALESCE(sg.category, 'personal')
		 ORDER BY SUM(se.amount) DESC`, userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	stats := make([]*models.CategoryStat, 0)
	for rows.Next() {
		var c models.CategoryStat
		if err := rows.Scan(&c.Category, &c.EntriesCount, &c.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		stats = append(stats, &c)
	}
	return stats, rows.Err()
}

func (s *PostgresStore) MonthlyTrend(ctx context.Context, userID int64, since time.Time) ([]*models.MonthlyBucket, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT to_char(entry_date, 'YYYY-MM') AS month,
		        COUNT(*),
		        COALESCE(SUM(amount), 0)
		 FROM savings_entries
		 WHERE user_id = $1 AND entry_date >= $2
		 GROUP BY to_char(entry_date, 'YYYY-MM')
		 ORDER BY month DESC`, userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	defer rows.Close()

	buckets := make([]*models.MonthlyBucket, 0)
	for rows.Next() {
		var b models.MonthlyBucket
		if err := rows.Scan(&b.Month, &b.EntriesCount, &b.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan monthly bucket: %w", err)
		}
		buckets = append(buckets, &b)
	}
	return buckets, rows.Err()
}
