// Package storage provides abstractions over where groups and expenses live.
//
// The settlement engine never touches storage; the service layer uses a
// Store to look up a group's members and its expense history and hands
// plain slices to the engine.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/settleup/internal/models"
)

// ErrNotFound is wrapped by stores when a requested group does not exist.
var ErrNotFound = errors.New("not found")

// ExpenseFilter narrows an expense query. Zero values mean "no bound".
type ExpenseFilter struct {
	// Start is the inclusive lower bound on CreatedAt.
	Start time.Time

	// End is the inclusive upper bound on CreatedAt.
	End time.Time

	// Category restricts results to one category.
	Category models.Category
}

// Matches reports whether e passes the filter.
func (f ExpenseFilter) Matches(e *models.Expense) bool {
	if !f.Start.IsZero() && e.CreatedAt.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && e.CreatedAt.After(f.End) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	return true
}

// Store defines the read operations the service layer needs.
// This abstraction allows swapping storage backends (SQLite, snapshot files)
// without changing the service layer.
type Store interface {
	// GetGroup retrieves a group and its current members in join order.
	// Returns an error wrapping ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves every group, members included.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// ListExpenses retrieves a group's expenses matching the filter,
	// oldest first.
	ListExpenses(ctx context.Context, groupID string, filter ExpenseFilter) ([]*models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}

// Importer defines the write operations used to load data into a store.
type Importer interface {
	// CreateGroup persists a group with its members. Groups failing
	// models.Group.Validate are rejected.
	// The group.ID and group.CreatedAt fields are populated when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// CreateExpense persists an expense for an existing group.
	// The expense.ID and expense.CreatedAt fields are populated when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error
}

// Copy loads every group and expense of src into dst and reports how many
// of each were written.
func Copy(ctx context.Context, src Store, dst Importer) (groups, expenses int, err error) {
	all, err := src.ListGroups(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, group := range all {
		if err := dst.CreateGroup(ctx, group); err != nil {
			return groups, expenses, err
		}
		groups++

		list, err := src.ListExpenses(ctx, group.ID, ExpenseFilter{})
		if err != nil {
			return groups, expenses, err
		}
		for _, e := range list {
			e.GroupID = group.ID
			if err := dst.CreateExpense(ctx, e); err != nil {
				return groups, expenses, err
			}
			expenses++
		}
	}

	return groups, expenses, nil
}
