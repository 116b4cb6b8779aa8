// Package memory provides an in-memory storage.Store, optionally loaded from
// a JSON snapshot file.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

var (
	_ storage.Store    = (*Store)(nil)
	_ storage.Importer = (*Store)(nil)
)

// Store keeps groups and expenses in memory. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	order    []string // group IDs in creation order
	groups   map[string]*models.Group
	expenses map[string][]*models.Expense
}

// New returns an empty store.
func New() *Store {
	return &Store{
		groups:   make(map[string]*models.Group),
		expenses: make(map[string][]*models.Expense),
	}
}

// CreateGroup stores a copy of the group.
func (s *Store) CreateGroup(_ context.Context, group *models.Group) error {
	if err := group.Validate(); err != nil {
		return err
	}
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[group.ID]; exists {
		return fmt.Errorf("group %s already exists", group.ID)
	}
	s.groups[group.ID] = cloneGroup(group)
	s.order = append(s.order, group.ID)
	return nil
}

// CreateExpense stores a copy of the expense under its group.
func (s *Store) CreateExpense(_ context.Context, expense *models.Expense) error {
	if err := expense.Validate(); err != nil {
		return err
	}
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC()
	}
	if expense.Category == "" {
		expense.Category = models.CategoryOther
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[expense.GroupID]; !exists {
		return fmt.Errorf("group %s: %w", expense.GroupID, storage.ErrNotFound)
	}
	e := *expense
	s.expenses[expense.GroupID] = append(s.expenses[expense.GroupID], &e)
	return nil
}

// GetGroup returns a copy of the group.
func (s *Store) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, exists := s.groups[groupID]
	if !exists {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return cloneGroup(group), nil
}

// ListGroups returns copies of all groups in creation order.
func (s *Store) ListGroups(_ context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*models.Group, 0, len(s.order))
	for _, id := range s.order {
		groups = append(groups, cloneGroup(s.groups[id]))
	}
	return groups, nil
}

// ListExpenses returns copies of the group's expenses matching the filter,
// oldest first.
func (s *Store) ListExpenses(_ context.Context, groupID string, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses := []*models.Expense{}
	for _, e := range s.expenses[groupID] {
		if filter.Matches(e) {
			c := *e
			expenses = append(expenses, &c)
		}
	}

	slices.SortStableFunc(expenses, func(a, b *models.Expense) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return expenses, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func cloneGroup(g *models.Group) *models.Group {
	c := *g
	c.Members = append([]models.Member{}, g.Members...)
	return &c
}
