package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	store, err := LoadFile(ctx, "testdata/trip.json")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	groups, err := store.ListGroups(ctx)
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 2 || groups[0].ID != "g-trip" || groups[1].ID != "g-flat" {
		t.Fatalf("unexpected groups: %+v", groups)
	}

	expenses, err := store.ListExpenses(ctx, "g-trip", storage.ExpenseFilter{})
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses) != 3 {
		t.Fatalf("expected 3 expenses, got %d", len(expenses))
	}

	tests := []struct {
		amount   string
		category models.Category
	}{
		{"90", models.CategoryAccommodation},
		{"45.30", models.CategoryFood},
		{"12.50", models.CategoryTransportation},
	}
	for i, tt := range tests {
		if !expenses[i].Amount.Equal(decimal.RequireFromString(tt.amount)) {
			t.Errorf("expense %d amount = %s, want %s", i, expenses[i].Amount, tt.amount)
		}
		if expenses[i].Category != tt.category {
			t.Errorf("expense %d category = %s, want %s", i, expenses[i].Category, tt.category)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:  "malformed json",
			input: `{"groups": [`,
		},
		{
			name:    "negative amount",
			input:   `{"groups":[{"id":"g","members":[{"userId":"u"}],"expenses":[{"amount":"-3","payerId":"u"}]}]}`,
			wantErr: calculator.ErrInvalidAmount,
		},
		{
			name:    "missing amount",
			input:   `{"groups":[{"id":"g","members":[{"userId":"u"}],"expenses":[{"payerId":"u"}]}]}`,
			wantErr: calculator.ErrInvalidAmount,
		},
		{
			name:    "missing payer",
			input:   `{"groups":[{"id":"g","members":[{"userId":"u"}],"expenses":[{"amount":"3"}]}]}`,
			wantErr: models.ErrInvalidExpense,
		},
		{
			name:  "duplicate group",
			input: `{"groups":[{"id":"g"},{"id":"g"}]}`,
		},
		{
			name:    "duplicate member",
			input:   `{"groups":[{"id":"g","members":[{"userId":"u1"},{"userId":"u2"},{"userId":"u1"}]}]}`,
			wantErr: models.ErrInvalidGroup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := New()

	group := &models.Group{Name: "Flat", Members: []models.Member{{UserID: "u1", DisplayName: "One"}}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group.ID == "" {
		t.Fatal("expected generated group ID")
	}

	t.Run("GetGroup returns a copy", func(t *testing.T) {
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		got.Members[0].DisplayName = "changed"

		again, _ := store.GetGroup(ctx, group.ID)
		if again.Members[0].DisplayName != "One" {
			t.Error("store state was modified through a returned group")
		}
	})

	t.Run("CreateGroup rejects duplicate members", func(t *testing.T) {
		dup := &models.Group{Name: "Dup", Members: []models.Member{{UserID: "u1"}, {UserID: "u1"}}}
		if err := store.CreateGroup(ctx, dup); !errors.Is(err, models.ErrInvalidGroup) {
			t.Errorf("expected ErrInvalidGroup, got %v", err)
		}
		groups, _ := store.ListGroups(ctx)
		if len(groups) != 1 {
			t.Errorf("expected only the first group to be stored, got %d", len(groups))
		}
	})

	t.Run("GetGroup missing", func(t *testing.T) {
		if _, err := store.GetGroup(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateExpense for missing group", func(t *testing.T) {
		err := store.CreateExpense(ctx, &models.Expense{GroupID: "missing", Amount: decimal.NewFromInt(1), PayerID: "u1"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListExpenses sorts and filters", func(t *testing.T) {
		jan := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
		feb := jan.AddDate(0, 1, 0)
		for _, at := range []time.Time{feb, jan} {
			e := &models.Expense{GroupID: group.ID, Amount: decimal.NewFromInt(10), PayerID: "u1", CreatedAt: at}
			if err := store.CreateExpense(ctx, e); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
		}

		all, _ := store.ListExpenses(ctx, group.ID, storage.ExpenseFilter{})
		if len(all) != 2 || !all[0].CreatedAt.Equal(jan) {
			t.Fatalf("expected January first, got %+v", all)
		}

		onlyFeb, _ := store.ListExpenses(ctx, group.ID, storage.ExpenseFilter{Start: feb})
		if len(onlyFeb) != 1 {
			t.Errorf("expected 1 expense from February, got %d", len(onlyFeb))
		}
	})
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	src, err := LoadFile(ctx, "testdata/trip.json")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	dst := New()
	groups, expenses, err := storage.Copy(ctx, src, dst)
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if groups != 2 || expenses != 3 {
		t.Errorf("copied %d groups and %d expenses, want 2 and 3", groups, expenses)
	}

	got, err := dst.GetGroup(ctx, "g-trip")
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(got.Members) != 3 {
		t.Errorf("expected 3 members, got %d", len(got.Members))
	}
}
