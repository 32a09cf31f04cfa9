package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is a single savings contribution. A nil GoalID means a personal,
// unallocated saving. When a goal is attached it must belong to the same
// user and be active at attachment time.
type Entry struct {
	ID        int64
	UserID    int64
	GoalID    *int64
	Amount    decimal.Decimal
	Notes     *string
	EntryDate time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined goal fields, populated on reads when a goal is attached.
	GoalTitle    *string
	GoalStatus   *string
	GoalCategory *string
	// Populated by FindByID only.
	GoalTargetAmount  *decimal.Decimal
	GoalCurrentAmount *decimal.Decimal
}

// Patch is a typed partial update: nil/unset fields keep their stored value.
// Notes and GoalID distinguish "absent" from "set to null" with their Set flags.
type Patch struct {
	Amount    *decimal.Decimal
	Notes     *string
	NotesSet  bool
	GoalID    *int64
	GoalIDSet bool
	EntryDate *time.Time
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Amount == nil && !p.NotesSet && !p.GoalIDSet && p.EntryDate == nil
}

// View is the response shape for an entry. Amounts are JSON numbers.
type View struct {
	ID        int64   `json:"id"`
	GoalID    *int64  `json:"goal_id"`
	Amount    float64 `json:"amount"`
	Notes     *string `json:"notes"`
	EntryDate string  `json:"entry_date"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at,omitempty"`

	GoalTitle         *string  `json:"goal_title,omitempty"`
	GoalStatus        *string  `json:"goal_status,omitempty"`
	GoalCategory      *string  `json:"goal_category,omitempty"`
	GoalTargetAmount  *float64 `json:"target_amount,omitempty"`
	GoalCurrentAmount *float64 `json:"current_amount,omitempty"`
}

// View converts the entry to its response shape.
func (e *Entry) View() View {
	v := View{
		ID:           e.ID,
		GoalID:       e.GoalID,
		Amount:       e.Amount.InexactFloat64(),
		Notes:        e.Notes,
		EntryDate:    e.EntryDate.Format("2006-01-02"),
		CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
		GoalTitle:    e.GoalTitle,
		GoalStatus:   e.GoalStatus,
		GoalCategory: e.GoalCategory,
	}
	if !e.UpdatedAt.IsZero() {
		v.UpdatedAt = e.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if e.GoalTargetAmount != nil {
		f := e.GoalTargetAmount.InexactFloat64()
		v.GoalTargetAmount = &f
	}
	if e.GoalCurrentAmount != nil {
		f := e.GoalCurrentAmount.InexactFloat64()
		v.GoalCurrentAmount = &f
	}
	return v
}

// Summary is the aggregate block returned with entry listings. It always
// covers the user's full history, not the applied filters.
type Summary struct {
	TotalEntries   int             `json:"total_entries"`
	TotalAmount    decimal.Decimal `json:"-"`
	PersonalAmount decimal.Decimal `json:"-"`
	GoalsAmount    decimal.Decimal `json:"-"`
}

// SummaryView is the response shape for Summary.
type SummaryView struct {
	TotalEntries   int     `json:"total_entries"`
	TotalAmount    float64 `json:"total_amount"`
	PersonalAmount float64 `json:"personal_amount"`
	GoalsAmount    float64 `json:"goals_amount"`
}

func (s *Summary) View() SummaryView {
	return SummaryView{
		TotalEntries:   s.TotalEntries,
		TotalAmount:    s.TotalAmount.InexactFloat64(),
		PersonalAmount: s.PersonalAmount.InexactFloat64(),
		GoalsAmount:    s.GoalsAmount.InexactFloat64(),
	}
}

// GeneralStats aggregates entries inside a trailing period window.
type GeneralStats struct {
	TotalEntries    int
	TotalAmount     decimal.Decimal
	AvgAmount       decimal.Decimal
	MinAmount       decimal.Decimal
	MaxAmount       decimal.Decimal
	GoalsCount      int
	PersonalSavings decimal.Decimal
	GoalSavings     decimal.Decimal
}

// GeneralStatsView is the response shape for GeneralStats.
type GeneralStatsView struct {
	TotalEntries    int     `json:"total_entries"`
	TotalAmount     float64 `json:"total_amount"`
	AvgAmount       float64 `json:"avg_amount"`
	MinAmount       float64 `json:"min_amount"`
	MaxAmount       float64 `json:"max_amount"`
	GoalsCount      int     `json:"goals_count"`
	PersonalSavings float64 `json:"personal_savings"`
	GoalSavings     float64 `json:"goal_savings"`
}

func (g *GeneralStats) View() GeneralStatsView {
	return GeneralStatsView{
		TotalEntries:    g.TotalEntries,
		TotalAmount:     g.TotalAmount.InexactFloat64(),
		AvgAmount:       g.AvgAmount.InexactFloat64(),
		MinAmount:       g.MinAmount.InexactFloat64(),
		MaxAmount:       g.MaxAmount.InexactFloat64(),
		GoalsCount:      g.GoalsCount,
		PersonalSavings: g.PersonalSavings.InexactFloat64(),
		GoalSavings:     g.GoalSavings.InexactFloat64(),
	}
}

// CategoryStat is one row of the per-category breakdown. Category is the
// attached goal's category, or "personal" for unallocated entries.
type CategoryStat struct {
	Category     string
	EntriesCount int
	TotalAmount  decimal.Decimal
}

// CategoryStatView is the response shape for CategoryStat.
type CategoryStatView struct {
	Category     string  `json:"category"`
	EntriesCount int     `json:"entries_count"`
	TotalAmount  float64 `json:"total_amount"`
}

func (c *CategoryStat) View() CategoryStatView {
	return CategoryStatView{
		Category:     c.Category,
		EntriesCount: c.EntriesCount,
		TotalAmount:  c.TotalAmount.InexactFloat64(),
	}
}

// MonthlyBucket is one month of the trailing trend.
type MonthlyBucket struct {
	Month        string // YYYY-MM
	EntriesCount int
	TotalAmount  decimal.Decimal
}

// MonthlyBucketView is the response shape for MonthlyBucket.
type MonthlyBucketView struct {
	Month        string  `json:"month"`
	EntriesCount int     `json:"entries_count"`
	TotalAmount  float64 `json:"total_amount"`
}

func (m *MonthlyBucket) View() MonthlyBucketView {
	return MonthlyBucketView{
		Month:        m.Month,
		EntriesCount: m.EntriesCount,
		TotalAmount:  m.TotalAmount.InexactFloat64(),
	}
}
