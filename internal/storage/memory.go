// Package storage provides the in-memory implementation of the goal and
// entry stores. Goals and entries share one store because their reads are
// coupled: a goal's current amount is derived from its entries, and
// deleting a goal detaches its entries.
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	entrymodels "smartsave/internal/entry/models"
	entrystore "smartsave/internal/entry/store"
	goalmodels "smartsave/internal/goal/models"
	"smartsave/pkg/platform/sentinel"
)

// InMemory holds goals and entries behind one lock. Goals() and Entries()
// expose the two store interfaces over the shared state.
type InMemory struct {
	mu          sync.RWMutex
	goals       map[int64]*goalmodels.Goal
	entries     map[int64]*entrymodels.Entry
	nextGoalID  int64
	nextEntryID int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		goals:       make(map[int64]*goalmodels.Goal),
		entries:     make(map[int64]*entrymodels.Entry),
		nextGoalID:  1,
		nextEntryID: 1,
	}
}

func (s *InMemory) Goals() *GoalMemory    { return &GoalMemory{s} }
func (s *InMemory) Entries() *EntryMemory { return &EntryMemory{s} }

// GoalMemory is the goal-store view of an InMemory.
type GoalMemory struct {
	s *InMemory
}

func (m *GoalMemory) Create(_ context.Context, goal *goalmodels.Goal) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	goal.ID = m.s.nextGoalID
	m.s.nextGoalID++
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	copied := *goal
	copied.CurrentAmount = decimal.Zero
	m.s.goals[goal.ID] = &copied
	return nil
}

func (m *GoalMemory) ListByUser(_ context.Context, userID int64) ([]*goalmodels.Goal, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	goals := make([]*goalmodels.Goal, 0)
	for _, g := range m.s.goals {
		if g.UserID == userID {
			goals = append(goals, m.s.goalWithDerived(g))
		}
	}
	sort.Slice(goals, func(i, j int) bool {
		if goals[i].CreatedAt.Equal(goals[j].CreatedAt) {
			return goals[i].ID > goals[j].ID
		}
		return goals[i].CreatedAt.After(goals[j].CreatedAt)
	})
	return goals, nil
}

func (m *GoalMemory) FindByID(_ context.Context, userID, goalID int64) (*goalmodels.Goal, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	g, ok := m.s.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, sentinel.ErrNotFound
	}
	return m.s.goalWithDerived(g), nil
}

func (m *GoalMemory) Update(_ context.Context, goal *goalmodels.Goal) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	g, ok := m.s.goals[goal.ID]
	if !ok || g.UserID != goal.UserID {
		return sentinel.ErrNotFound
	}
	g.Title = goal.Title
	g.Description = goal.Description
	g.TargetAmount = goal.TargetAmount
	g.TargetDate = goal.TargetDate
	g.Category = goal.Category
	g.Status = goal.Status
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *GoalMemory) Delete(_ context.Context, userID, goalID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	g, ok := m.s.goals[goalID]
	if !ok || g.UserID != userID {
		return sentinel.ErrNotFound
	}
	delete(m.s.goals, goalID)
	// Detach entries, mirroring the ON DELETE SET NULL constraint.
	for _, e := range m.s.entries {
		if e.GoalID != nil && *e.GoalID == goalID {
			e.GoalID = nil
		}
	}
	return nil
}

func (m *GoalMemory) GetStatus(_ context.Context, userID, goalID int64) (goalmodels.Status, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	g, ok := m.s.goals[goalID]
	if !ok || g.UserID != userID {
		return "", sentinel.ErrNotFound
	}
	return g.Status, nil
}

// goalWithDerived copies the goal and fills in the summed current amount.
// Callers must hold at least the read lock.
func (s *InMemory) goalWithDerived(g *goalmodels.Goal) *goalmodels.Goal {
	copied := *g
	copied.CurrentAmount = s.sumForGoalLocked(g.ID)
	return &copied
}

func (s *InMemory) sumForGoalLocked(goalID int64) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range s.entries {
		if e.GoalID != nil && *e.GoalID == goalID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

// EntryMemory is the entry-store view of an InMemory.
type EntryMemory struct {
	s *InMemory
}

func (m *EntryMemory) Create(_ context.Context, entry *entrymodels.Entry) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if entry.GoalID != nil {
		if _, ok := m.s.goals[*entry.GoalID]; !ok {
			return sentinel.ErrForeignKey
		}
	}

	entry.ID = m.s.nextEntryID
	m.s.nextEntryID++
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	copied := *entry
	m.s.entries[entry.ID] = &copied
	return nil
}

func (m *EntryMemory) List(_ context.Context, userID int64, filter entrystore.Filter) ([]*entrymodels.Entry, int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	matched := make([]*entrymodels.Entry, 0)
	for _, e := range m.s.entries {
		if e.UserID != userID || !matches(e, filter) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].EntryDate.Equal(matched[j].EntryDate) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].EntryDate.After(matched[j].EntryDate)
	})

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > total {
		end = total
	}

	page := make([]*entrymodels.Entry, 0, end-start)
	for _, e := range matched[start:end] {
		page = append(page, m.s.entryWithGoalLocked(e, false))
	}
	return page, total, nil
}

func matches(e *entrymodels.Entry, filter entrystore.Filter) bool {
	if filter.Unallocated && e.GoalID != nil {
		return false
	}
	if !filter.Unallocated && filter.GoalID != nil &&
		(e.GoalID == nil || *e.GoalID != *filter.GoalID) {
		return false
	}
	if filter.StartDate != nil && e.EntryDate.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && e.EntryDate.After(*filter.EndDate) {
		return false
	}
	return true
}

func (m *EntryMemory) FindByID(_ context.Context, userID, entryID int64) (*entrymodels.Entry, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	e, ok := m.s.entries[entryID]
	if !ok || e.UserID != userID {
		return nil, sentinel.ErrNotFound
	}
	return m.s.entryWithGoalLocked(e, true), nil
}

func (m *EntryMemory) Update(_ context.Context, userID, entryID int64, patch entrymodels.Patch) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	e, ok := m.s.entries[entryID]
	if !ok || e.UserID != userID {
		return sentinel.ErrNotFound
	}
	if patch.Empty() {
		return nil
	}

	if patch.GoalIDSet && patch.GoalID != nil {
		if _, ok := m.s.goals[*patch.GoalID]; !ok {
			return sentinel.ErrForeignKey
		}
	}

	if patch.Amount != nil {
		e.Amount = *patch.Amount
	}
	if patch.NotesSet {
		e.Notes = patch.Notes
	}
	if patch.GoalIDSet {
		e.GoalID = patch.GoalID
	}
	if patch.EntryDate != nil {
		e.EntryDate = *patch.EntryDate
	}
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *EntryMemory) Delete(_ context.Context, userID, entryID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	e, ok := m.s.entries[entryID]
	if !ok || e.UserID != userID {
		return sentinel.ErrNotFound
	}
	delete(m.s.entries, entryID)
	return nil
}

func (m *EntryMemory) Summary(_ context.Context, userID int64) (*entrymodels.Summary, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	sum := &entrymodels.Summary{
		TotalAmount:    decimal.Zero,
		PersonalAmount: decimal.Zero,
		GoalsAmount:    decimal.Zero,
	}
	for _, e := range m.s.entries {
		if e.UserID != userID {
			continue
		}
		sum.TotalEntries++
		sum.TotalAmount = sum.TotalAmount.Add(e.Amount)
		if e.GoalID == nil {
			sum.PersonalAmount = sum.PersonalAmount.Add(e.Amount)
		} else {
			sum.GoalsAmount = sum.GoalsAmount.Add(e.Amount)
		}
	}
	return sum, nil
}

func (m *EntryMemory) GeneralStats(_ context.Context, userID int64, since time.Time) (*entrymodels.GeneralStats, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	st := &entrymodels.GeneralStats{
		TotalAmount:     decimal.Zero,
		AvgAmount:       decimal.Zero,
		MinAmount:       decimal.Zero,
		MaxAmount:       decimal.Zero,
		PersonalSavings: decimal.Zero,
		GoalSavings:     decimal.Zero,
	}
	goalIDs := make(map[int64]struct{})
	for _, e := range m.s.entries {
		if e.UserID != userID || e.EntryDate.Before(since) {
			continue
		}
		st.TotalEntries++
		st.TotalAmount = st.TotalAmount.Add(e.Amount)
		if st.TotalEntries == 1 {
			st.MinAmount = e.Amount
			st.MaxAmount = e.Amount
		} else {
			if e.Amount.LessThan(st.MinAmount) {
				st.MinAmount = e.Amount
			}
			if e.Amount.GreaterThan(st.MaxAmount) {
				st.MaxAmount = e.Amount
			}
		}
		if e.GoalID == nil {
			st.PersonalSavings = st.PersonalSavings.Add(e.Amount)
		} else {
			st.GoalSavings = st.GoalSavings.Add(e.Amount)
			goalIDs[*e.GoalID] = struct{}{}
		}
	}
	st.GoalsCount = len(goalIDs)
	if st.TotalEntries > 0 {
		st.AvgAmount = st.TotalAmount.Div(decimal.NewFromInt(int64(st.TotalEntries)))
	}
	return st, nil
}

func (m *EntryMemory) CategoryStats(_ context.Context, userID int64, since time.Time) ([]*entrymodels.CategoryStat, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	byCategory := make(map[string]*entrymodels.CategoryStat)
	for _, e := range m.s.entries {
		if e.UserID != userID || e.EntryDate.Before(since) {
			continue
		}
		category := "personal"
		if e.GoalID != nil {
			if g, ok := m.s.goals[*e.GoalID]; ok {
				category = g.Category
			}
		}
		stat, ok := byCategory[category]
		if !ok {
			stat = &entrymodels.CategoryStat{Category: category, TotalAmount: decimal.Zero}
			byCategory[category] = stat
		}
		stat.EntriesCount++
		stat.TotalAmount = stat.TotalAmount.Add(e.Amount)
	}

	stats := make([]*entrymodels.CategoryStat, 0, len(byCategory))
	for _, stat := range byCategory {
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalAmount.Equal(stats[j].TotalAmount) {
			return stats[i].Category < stats[j].Category
		}
		return stats[i].TotalAmount.GreaterThan(stats[j].TotalAmount)
	})
	return stats, nil
}

func (m *EntryMemory) MonthlyTrend(_ context.Context, userID int64, since time.Time) ([]*entrymodels.MonthlyBucket, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	byMonth := make(map[string]*entrymodels.MonthlyBucket)
	for _, e := range m.s.entries {
		if e.UserID != userID || e.EntryDate.Before(since) {
			continue
		}
		month := e.EntryDate.Format("2006-01")
		bucket, ok := byMonth[month]
		if !ok {
			bucket = &entrymodels.MonthlyBucket{Month: month, TotalAmount: decimal.Zero}
			byMonth[month] = bucket
		}
		bucket.EntriesCount++
		bucket.TotalAmount = bucket.TotalAmount.Add(e.Amount)
	}

	buckets := make([]*entrymodels.MonthlyBucket, 0, len(byMonth))
	for _, bucket := range byMonth {
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Month > buckets[j].Month
	})
	return buckets, nil
}

// entryWithGoalLocked copies the entry and fills the joined goal fields.
// Callers must hold at least the read lock.
func (s *InMemory) entryWithGoalLocked(e *entrymodels.Entry, withAmounts bool) *entrymodels.Entry {
	copied := *e
	if e.GoalID == nil {
		return &copied
	}
	g, ok := s.goals[*e.GoalID]
	if !ok {
		return &copied
	}
	title, status, category := g.Title, string(g.Status), g.Category
	copied.GoalTitle = &title
	copied.GoalStatus = &status
	copied.GoalCategory = &category
	if withAmounts {
		target := g.TargetAmount
		current := s.sumForGoalLocked(g.ID)
		copied.GoalTargetAmount = &target
		copied.GoalCurrentAmount = &current
	}
	return &copied
}
