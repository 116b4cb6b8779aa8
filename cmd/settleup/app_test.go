package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/service"
)

func runCommand(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()

	var out bytes.Buffer
	err := run(context.Background(), append([]string{"-log-level", "error"}, args...), &out)
	return &out, err
}

func snapshotArgs(args ...string) []string {
	return append([]string{"-backend", "snapshot", "-snapshot", "testdata/groups.json"}, args...)
}

func TestRun_Plan(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "settleup.prom")

	out, err := runCommand(t, snapshotArgs("-metrics-textfile", metricsPath, "plan", "g-trip")...)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	var result service.GroupSettlement
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode output: %v\n%s", err, out)
	}
	if result.TotalExpenses != "147.80" {
		t.Errorf("TotalExpenses = %s, want 147.80", result.TotalExpenses)
	}
	if len(result.Settlements) != 2 {
		t.Fatalf("expected 2 settlements, got %d", len(result.Settlements))
	}
	if s := result.Settlements[0]; s.From.DisplayName != "Carol" || s.To.DisplayName != "Alice" || s.Amount != "36.77" {
		t.Errorf("first settlement = %+v", s)
	}

	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("failed to read metrics textfile: %v", err)
	}
	if !strings.Contains(string(data), `settleup_plans_total{outcome="ok"} 1`) {
		t.Errorf("metrics textfile missing plan counter:\n%s", data)
	}
}

func TestRun_PlanFilters(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantTotal string
	}{
		{"to date is inclusive", []string{"plan", "g-trip", "-to", "2026-01-11"}, "135.30"},
		{"from date", []string{"plan", "g-trip", "-from", "2026-02-01"}, "12.50"},
		{"category", []string{"plan", "g-trip", "-category", "food"}, "45.30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, snapshotArgs(tt.args...)...)
			if err != nil {
				t.Fatalf("plan failed: %v", err)
			}
			var result service.GroupSettlement
			if err := json.Unmarshal(out.Bytes(), &result); err != nil {
				t.Fatalf("failed to decode output: %v", err)
			}
			if result.TotalExpenses != tt.wantTotal {
				t.Errorf("TotalExpenses = %s, want %s", result.TotalExpenses, tt.wantTotal)
			}
		})
	}
}

func TestRun_Balance(t *testing.T) {
	out, err := runCommand(t, snapshotArgs("balance", "g-trip", "u-carol")...)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}

	var result service.MemberBalance
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if result.NetBalance != "-36.77" || result.TotalPaid != "12.50" {
		t.Errorf("unexpected balance: %+v", result)
	}

	_, err = runCommand(t, snapshotArgs("balance", "g-trip", "u-nobody")...)
	if !errors.Is(err, service.ErrMemberNotFound) {
		t.Errorf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestRun_Analytics(t *testing.T) {
	out, err := runCommand(t, snapshotArgs("analytics", "g-trip", "monthly", "-year", "2026")...)
	if err != nil {
		t.Fatalf("analytics monthly failed: %v", err)
	}
	var monthly service.MonthlyReport
	if err := json.Unmarshal(out.Bytes(), &monthly); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if len(monthly.Months) != 2 || monthly.Months[0].MonthName != "January" {
		t.Errorf("unexpected monthly report: %+v", monthly)
	}

	out, err = runCommand(t, snapshotArgs("analytics", "g-trip", "category", "-from", "2026-01-01", "-to", "2026-12-31")...)
	if err != nil {
		t.Fatalf("analytics category failed: %v", err)
	}
	var category service.CategoryReport
	if err := json.Unmarshal(out.Bytes(), &category); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if len(category.Categories) != 3 || category.Categories[0].Category != models.CategoryAccommodation {
		t.Errorf("unexpected category report: %+v", category)
	}
}

func TestRun_ImportThenQuery(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "settleup.db")

	out, err := runCommand(t, "-db", dbPath, "import", "testdata/groups.json")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	var counts map[string]int
	if err := json.Unmarshal(out.Bytes(), &counts); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if counts["groups"] != 2 || counts["expenses"] != 3 {
		t.Errorf("unexpected import counts: %v", counts)
	}

	out, err = runCommand(t, "-backend", "sqlite", "-db", dbPath, "groups")
	if err != nil {
		t.Fatalf("groups failed: %v", err)
	}
	var groups []models.Group
	if err := json.Unmarshal(out.Bytes(), &groups); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	out, err = runCommand(t, "-backend", "sqlite", "-db", dbPath, "plan", "g-trip")
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	var result service.GroupSettlement
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if result.TotalExpenses != "147.80" || result.TransactionCount != 2 {
		t.Errorf("unexpected plan from sqlite: total %s, %d transactions", result.TotalExpenses, result.TransactionCount)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", snapshotArgs()},
		{"unknown command", snapshotArgs("settle")},
		{"plan without group", snapshotArgs("plan")},
		{"balance missing user", snapshotArgs("balance", "g-trip")},
		{"bad date", snapshotArgs("plan", "g-trip", "-from", "01/02/2026")},
		{"unknown report", snapshotArgs("analytics", "g-trip", "weekly")},
		{"import without file", []string{"-db", "x.db", "import"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, tt.args...)
			if !errors.Is(err, errUsage) {
				t.Errorf("expected usage error, got %v", err)
			}
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	_, err := runCommand(t, "-backend", "snapshot", "-snapshot", "", "groups")
	if err == nil || !strings.Contains(err.Error(), "SNAPSHOT_PATH is required") {
		t.Errorf("expected config validation error, got %v", err)
	}
}

func TestRun_ImportIsAllOrNothing(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "settleup.db")

	// Seed g-flat so the full snapshot conflicts on its second group
	flat := filepath.Join(dir, "flat.json")
	seed := `{"groups":[{"id":"g-flat","name":"Flat","members":[{"userId":"u-dave","displayName":"Dave"}]}]}`
	if err := os.WriteFile(flat, []byte(seed), 0644); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}
	if _, err := runCommand(t, "-db", dbPath, "import", flat); err != nil {
		t.Fatalf("seed import failed: %v", err)
	}

	if _, err := runCommand(t, "-db", dbPath, "import", "testdata/groups.json"); err == nil {
		t.Fatal("expected import of a conflicting snapshot to fail")
	}

	_, err := runCommand(t, "-backend", "sqlite", "-db", dbPath, "plan", "g-trip")
	if !errors.Is(err, service.ErrGroupNotFound) {
		t.Errorf("expected g-trip to be rolled back, got %v", err)
	}
}

func TestRun_ImportRejectsDuplicateMembers(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "dup.json")
	data := `{"groups":[{"id":"g1","name":"Dup","members":[{"userId":"u1"},{"userId":"u1"}]}]}`
	if err := os.WriteFile(snapshot, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}

	_, err := runCommand(t, "-db", filepath.Join(dir, "settleup.db"), "import", snapshot)
	if !errors.Is(err, models.ErrInvalidGroup) {
		t.Errorf("expected ErrInvalidGroup, got %v", err)
	}
}
