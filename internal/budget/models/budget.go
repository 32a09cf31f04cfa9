package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Budget is the income/expense summary for one (user, calendar month) pair.
// Availability is always derived at read time; the store never persists it.
type Budget struct {
	ID            int64
	UserID        int64
	MonthYear     string // canonical YYYY-MM
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Available returns income minus expenses.
func (b *Budget) Available() decimal.Decimal {
	return b.TotalIncome.Sub(b.TotalExpenses)
}

// MonthKey composes the canonical zero-padded YYYY-MM key.
func MonthKey(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// CurrentMonthKey returns the key for the given wall-clock instant (UTC).
func CurrentMonthKey(now time.Time) string {
	return now.UTC().Format("2006-01")
}

// Patch is a typed partial update for a budget.
type Patch struct {
	TotalIncome   *decimal.Decimal
	TotalExpenses *decimal.Decimal
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.TotalIncome == nil && p.TotalExpenses == nil
}

// View is the response shape for a budget. Amounts are JSON numbers and
// availability is recomputed, never read from storage.
type View struct {
	ID                  int64   `json:"id"`
	Amount              float64 `json:"amount"`
	Month               int     `json:"month"`
	Year                int     `json:"year"`
	MonthYear           string  `json:"month_year"`
	TotalIncome         float64 `json:"total_income"`
	TotalExpenses       float64 `json:"total_expenses"`
	AvailableForSavings float64 `json:"available_for_savings"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at,omitempty"`
}

// View converts the budget to its response shape.
func (b *Budget) View() View {
	month, year := splitMonthKey(b.MonthYear)
	v := View{
		ID:                  b.ID,
		Amount:              b.TotalIncome.InexactFloat64(),
		Month:               month,
		Year:                year,
		MonthYear:           b.MonthYear,
		TotalIncome:         b.TotalIncome.InexactFloat64(),
		TotalExpenses:       b.TotalExpenses.InexactFloat64(),
		AvailableForSavings: b.Available().InexactFloat64(),
		CreatedAt:           b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !b.UpdatedAt.IsZero() {
		v.UpdatedAt = b.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return v
}

// EmptyView is the synthetic zero-valued record returned when no budget
// exists for the current month.
type EmptyView struct {
	MonthYear           string  `json:"month_year"`
	TotalIncome         float64 `json:"total_income"`
	TotalExpenses       float64 `json:"total_expenses"`
	AvailableForSavings float64 `json:"available_for_savings"`
	Exists              bool    `json:"exists"`
}

func splitMonthKey(key string) (month, year int) {
	if len(key) != 7 {
		return 0, 0
	}
	year, _ = strconv.Atoi(key[:4])
	month, _ = strconv.Atoi(key[5:])
	return month, year
}
