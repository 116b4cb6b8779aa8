// Package service composes storage lookups with the settlement engine and
// the analytics aggregations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// GroupService exposes read access to groups.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	slog.Info("GetGroup request received", "group_id", groupID)

	if groupID == "" {
		return nil, fmt.Errorf("%w: group_id required", ErrInvalidArgument)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", groupID, "error", err)
		return nil, notFound(err, groupID)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)
	return group, nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	slog.Info("ListGroups request received")

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, err
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return groups, nil
}

// loadGroupExpenses fetches a group and its filtered expenses concurrently.
func loadGroupExpenses(ctx context.Context, store storage.Store, groupID string, filter storage.ExpenseFilter) (*models.Group, []*models.Expense, error) {
	var (
		group    *models.Group
		expenses []*models.Expense
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		group, err = store.GetGroup(gctx, groupID)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = store.ListExpenses(gctx, groupID, filter)
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, notFound(err, groupID)
	}

	return group, expenses, nil
}

// notFound maps storage.ErrNotFound to ErrGroupNotFound.
func notFound(err error, groupID string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	return err
}

func toRecords(expenses []*models.Expense) []calculator.ExpenseRecord {
	records := make([]calculator.ExpenseRecord, len(expenses))
	for i, e := range expenses {
		records[i] = calculator.ExpenseRecord{
			ID:      e.ID,
			Amount:  e.Amount,
			PayerID: e.PayerID,
		}
	}
	return records
}
