package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/storage"
)

// MemberStats is one member's line in a group settlement.
type MemberStats struct {
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	NetBalance   string `json:"netBalance"`
	TotalPaid    string `json:"totalPaid"`
	TotalShare   string `json:"totalShare"`
	ExpenseCount int    `json:"expenseCount"`
}

// GroupSettlement is the settlement plan of a group along with per-member
// statistics.
type GroupSettlement struct {
	GroupID          string                             `json:"groupId"`
	GroupName        string                             `json:"groupName"`
	CalculatedAt     time.Time                          `json:"calculatedAt"`
	TotalExpenses    string                             `json:"totalExpenses"`
	NetBalances      []MemberStats                      `json:"netBalances"`
	Settlements      []calculator.SettlementTransaction `json:"settlements"`
	TransactionCount int                                `json:"transactionCount"`
}

// MemberBalance is the balance of a single member in a group.
type MemberBalance struct {
	GroupID string `json:"groupId"`
	MemberStats
}

// SettlementService computes who pays whom in a group.
type SettlementService struct {
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewSettlementService creates a SettlementService. m may be nil.
func NewSettlementService(store storage.Store, m *metrics.Metrics) *SettlementService {
	return &SettlementService{store: store, metrics: m, now: time.Now}
}

// CalculateGroupSettlement computes the settlement plan for the group's
// expenses matching filter.
func (s *SettlementService) CalculateGroupSettlement(ctx context.Context, groupID string, filter storage.ExpenseFilter) (*GroupSettlement, error) {
	slog.Info("CalculateGroupSettlement request received", "group_id", groupID)
	start := time.Now()

	if groupID == "" {
		s.metrics.ObserveFailure()
		return nil, fmt.Errorf("%w: group_id required", ErrInvalidArgument)
	}

	group, expenses, err := loadGroupExpenses(ctx, s.store, groupID, filter)
	if err != nil {
		slog.Error("CalculateGroupSettlement failed", "group_id", groupID, "error", err)
		s.metrics.ObserveFailure()
		return nil, err
	}

	records := toRecords(expenses)
	plan := calculator.GenerateSettlementPlan(records, group.Members)
	summaries := calculator.SummarizeMembers(records, group.Members)

	stats := make([]MemberStats, len(summaries))
	for i, sum := range summaries {
		stats[i] = memberStats(sum)
	}

	elapsed := time.Since(start)
	s.metrics.ObservePlan(group.ID, plan, elapsed)

	slog.Info("CalculateGroupSettlement successful",
		"group_id", group.ID,
		"expenses_count", len(expenses),
		"members_count", len(stats),
		"transactions_count", plan.TransactionCount,
		"duration_ms", elapsed.Milliseconds(),
	)

	return &GroupSettlement{
		GroupID:          group.ID,
		GroupName:        group.Name,
		CalculatedAt:     s.now().UTC(),
		TotalExpenses:    plan.TotalExpenses,
		NetBalances:      stats,
		Settlements:      plan.Settlements,
		TransactionCount: plan.TransactionCount,
	}, nil
}

// GetMemberBalance reports one member's net balance, totals, and expense
// count across all of the group's expenses.
func (s *SettlementService) GetMemberBalance(ctx context.Context, groupID, userID string) (*MemberBalance, error) {
	slog.Info("GetMemberBalance request received", "group_id", groupID, "user_id", userID)

	if groupID == "" || userID == "" {
		return nil, fmt.Errorf("%w: group_id and user_id required", ErrInvalidArgument)
	}

	group, expenses, err := loadGroupExpenses(ctx, s.store, groupID, storage.ExpenseFilter{})
	if err != nil {
		slog.Error("GetMemberBalance failed", "group_id", groupID, "error", err)
		return nil, err
	}

	if !group.HasMember(userID) {
		slog.Warn("GetMemberBalance failed - not a member", "group_id", groupID, "user_id", userID)
		return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, userID)
	}

	for _, sum := range calculator.SummarizeMembers(toRecords(expenses), group.Members) {
		if sum.Member.UserID != userID {
			continue
		}

		slog.Info("GetMemberBalance successful",
			"group_id", groupID,
			"user_id", userID,
			"net_balance", calculator.FormatAmount(sum.NetBalance),
		)
		return &MemberBalance{GroupID: group.ID, MemberStats: memberStats(sum)}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, userID)
}

func memberStats(sum calculator.MemberSummary) MemberStats {
	return MemberStats{
		UserID:       sum.Member.UserID,
		UserName:     sum.Member.DisplayName,
		NetBalance:   calculator.FormatAmount(sum.NetBalance),
		TotalPaid:    calculator.FormatAmount(sum.TotalPaid),
		TotalShare:   calculator.FormatAmount(sum.TotalShare),
		ExpenseCount: sum.ExpenseCount,
	}
}
