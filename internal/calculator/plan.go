package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// SettlementPlan is the full output of the settlement engine for one group.
type SettlementPlan struct {
	NetBalances      []NetBalance            `json:"netBalances"`
	Settlements      []SettlementTransaction `json:"settlements"`
	TransactionCount int                     `json:"transactionCount"`
	TotalExpenses    string                  `json:"totalExpenses"`
}

// GenerateSettlementPlan computes net balances, optimizes them into
// payments, and reports summary statistics.
func GenerateSettlementPlan(expenses []ExpenseRecord, members []models.Member) SettlementPlan {
	balances := CalculateNetBalances(expenses, members)
	settlements := OptimizeSettlements(balances)

	return SettlementPlan{
		NetBalances:      balances,
		Settlements:      settlements,
		TransactionCount: len(settlements),
		TotalExpenses:    FormatAmount(TotalExpenses(expenses)),
	}
}

// TotalExpenses sums every expense amount, including expenses whose payer
// is not a member.
func TotalExpenses(expenses []ExpenseRecord) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// MemberSummary describes one member's contribution to a group.
type MemberSummary struct {
	Member       models.Member
	NetBalance   decimal.Decimal // TotalPaid - TotalShare
	TotalPaid    decimal.Decimal // Sum of expenses this member paid
	TotalShare   decimal.Decimal // Total expenses / member count, the same for everyone
	ExpenseCount int             // Number of expenses this member paid
}

// SummarizeMembers reports paid, share, and net amounts per distinct member,
// in input order. NetBalance matches CalculateNetBalances and always equals
// TotalPaid - TotalShare.
func SummarizeMembers(expenses []ExpenseRecord, members []models.Member) []MemberSummary {
	roster := distinctMembers(members)
	if len(roster) == 0 {
		return []MemberSummary{}
	}

	n := int64(len(roster))
	net := netUnits(expenses, roster)

	var total int64
	paid := make(map[string]int64, len(roster))
	count := make(map[string]int, len(roster))
	for _, e := range expenses {
		cents := ToCents(e.Amount)
		total += cents
		paid[e.PayerID] += cents
		count[e.PayerID]++
	}
	share := fromShareUnits(total, n)

	summaries := make([]MemberSummary, len(roster))
	for i, m := range roster {
		summaries[i] = MemberSummary{
			Member:       m,
			NetBalance:   fromShareUnits(net[i], n),
			TotalPaid:    FromCents(paid[m.UserID]),
			TotalShare:   share,
			ExpenseCount: count[m.UserID],
		}
	}
	return summaries
}
