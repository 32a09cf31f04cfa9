package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a savings goal. Only active goals accept
// new entries.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDeleted   Status = "deleted"
)

// Valid reports whether s is a status a caller may set.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusCompleted || s == StatusDeleted
}

// Goal is a savings target owned by a single user.
//
// CurrentAmount is never stored: reads derive it as the sum of the amounts
// of entries attached to the goal, so it cannot drift from the entries.
type Goal struct {
	ID            int64
	UserID        int64
	Title         string
	Description   string
	TargetAmount  decimal.Decimal
	TargetDate    time.Time
	Category      string
	Currency      string
	Status        Status
	CurrentAmount decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive reports whether the goal accepts new entries.
func (g *Goal) IsActive() bool {
	return g.Status == StatusActive
}

// Progress returns the accumulated percentage of the target, rounded to two
// decimals. A zero target yields 0 rather than a division by zero.
func (g *Goal) Progress() float64 {
	if g.TargetAmount.IsZero() {
		return 0
	}
	return g.CurrentAmount.
		Div(g.TargetAmount).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// View is the response shape for a goal. Monetary values are JSON numbers.
type View struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Progress      float64 `json:"progress"`
	TargetDate    string  `json:"target_date"`
	Category      string  `json:"category"`
	Currency      string  `json:"currency"`
	Status        Status  `json:"status"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// View converts the goal to its response shape.
func (g *Goal) View() View {
	return View{
		ID:            g.ID,
		Title:         g.Title,
		Description:   g.Description,
		TargetAmount:  g.TargetAmount.InexactFloat64(),
		CurrentAmount: g.CurrentAmount.InexactFloat64(),
		Progress:      g.Progress(),
		TargetDate:    g.TargetDate.Format("2006-01-02"),
		Category:      g.Category,
		Currency:      g.Currency,
		Status:        g.Status,
		CreatedAt:     g.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     g.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
