package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// CreateExpense persists a new expense to the database.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	return insertExpense(ctx, s.db, expense)
}

func insertExpense(ctx context.Context, db execer, expense *models.Expense) error {
	if err := expense.Validate(); err != nil {
		return err
	}

	// Generate ID if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if expense.Category == "" {
		expense.Category = models.CategoryOther
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, amount, payer_id, description, category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Amount.String(), expense.PayerID,
		expense.Description, string(expense.Category), expense.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	return nil
}

// ListExpenses retrieves a group's expenses matching the filter, oldest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, groupID string, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	var (
		where = []string{"group_id = ?"}
		args  = []interface{}{groupID}
	)
	if !filter.Start.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, filter.Start.Unix())
	}
	if !filter.End.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, filter.End.Unix())
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}

	query := `SELECT id, group_id, amount, payer_id, description, category, created_at
		 FROM expenses WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		expense := &models.Expense{}
		var (
			category  string
			createdAt int64
		)

		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.Amount, &expense.PayerID,
			&expense.Description, &category, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		expense.Category = models.ParseCategory(category)
		expense.CreatedAt = time.Unix(createdAt, 0).UTC()
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}
