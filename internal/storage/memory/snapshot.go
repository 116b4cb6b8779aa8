package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
)

// Snapshot is the on-disk JSON layout of a set of groups.
//
//	{"groups": [{"id": "g1", "name": "Trip",
//	  "members": [{"userId": "u1", "displayName": "Ann"}],
//	  "expenses": [{"id": "e1", "amount": "12.50", "payerId": "u1",
//	                "category": "FOOD", "createdAt": "2026-01-02T15:04:05Z"}]}]}
type Snapshot struct {
	Groups []snapshotGroup `json:"groups"`
}

type snapshotGroup struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Members  []models.Member   `json:"members"`
	Expenses []snapshotExpense `json:"expenses"`
}

type snapshotExpense struct {
	ID          string          `json:"id"`
	Amount      json.RawMessage `json:"amount"` // "12.50", "12,50" or 12.5
	PayerID     string          `json:"payerId"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// amountText returns the raw amount without surrounding quotes.
func (e snapshotExpense) amountText() string {
	var s string
	if err := json.Unmarshal(e.Amount, &s); err == nil {
		return s
	}
	return string(e.Amount)
}

// Load decodes a snapshot from r into a new Store.
func Load(ctx context.Context, r io.Reader) (*Store, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	store := New()
	for gi, g := range snap.Groups {
		group := &models.Group{ID: g.ID, Name: g.Name, Members: g.Members}
		if err := store.CreateGroup(ctx, group); err != nil {
			return nil, fmt.Errorf("group %d: %w", gi, err)
		}

		for ei, e := range g.Expenses {
			amount, err := calculator.ParseAmount(e.amountText())
			if err != nil {
				return nil, fmt.Errorf("group %s expense %d: %w", group.ID, ei, err)
			}
			expense := &models.Expense{
				ID:          e.ID,
				GroupID:     group.ID,
				Amount:      amount,
				PayerID:     e.PayerID,
				Description: e.Description,
				Category:    models.ParseCategory(e.Category),
				CreatedAt:   e.CreatedAt,
			}
			if err := store.CreateExpense(ctx, expense); err != nil {
				return nil, fmt.Errorf("group %s expense %d: %w", group.ID, ei, err)
			}
		}
	}

	return store, nil
}

// LoadFile reads a snapshot file into a new Store.
func LoadFile(ctx context.Context, path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	return Load(ctx, f)
}
