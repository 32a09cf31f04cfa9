package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"smartsave/internal/budget/models"
	"smartsave/pkg/platform/sentinel"
)

// InMemoryBudgetStore is the test double for BudgetStore.
type InMemoryBudgetStore struct {
	mu      sync.RWMutex
	budgets map[int64]*models.Budget
	nextID  int64
}

func NewInMemory() *InMemoryBudgetStore {
	return &InMemoryBudgetStore{budgets: make(map[int64]*models.Budget), nextID: 1}
}

func (s *InMemoryBudgetStore) Create(_ context.Context, budget *models.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.budgets {
		if existing.UserID == budget.UserID && existing.MonthYear == budget.MonthYear {
			return sentinel.ErrConflict
		}
	}

	budget.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	budget.CreatedAt = now
	budget.UpdatedAt = now
	copied := *budget
	s.budgets[budget.ID] = &copied
	return nil
}

func (s *InMemoryBudgetStore) ListByUser(_ context.Context, userID int64) ([]*models.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	budgets := make([]*models.Budget, 0)
	for _, b := range s.budgets {
		if b.UserID == userID {
			copied := *b
			budgets = append(budgets, &copied)
		}
	}
	sort.Slice(budgets, func(i, j int) bool {
		return budgets[i].MonthYear > budgets[j].MonthYear
	})
	return budgets, nil
}

func (s *InMemoryBudgetStore) FindByMonth(_ context.Context, userID int64, monthYear string) (*models.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.budgets {
		if b.UserID == userID && b.MonthYear == monthYear {
			copied := *b
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryBudgetStore) Update(_ context.Context, userID, budgetID int64, patch models.Patch) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.budgets[budgetID]
	if !ok || b.UserID != userID || patch.Empty() {
		return nil, sentinel.ErrNotFound
	}

	if patch.TotalIncome != nil {
		b.TotalIncome = *patch.TotalIncome
	}
	if patch.TotalExpenses != nil {
		b.TotalExpenses = *patch.TotalExpenses
	}
	b.UpdatedAt = time.Now().UTC()

	copied := *b
	return &copied, nil
}

func (s *InMemoryBudgetStore) Delete(_ context.Context, userID, budgetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.budgets[budgetID]
	if !ok || b.UserID != userID {
		return sentinel.ErrNotFound
	}
	delete(s.budgets, budgetID)
	return nil
}
