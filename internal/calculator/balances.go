package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// ExpenseRecord represents an expense with the minimal information needed for balance calculations.
type ExpenseRecord struct {
	ID      string
	Amount  decimal.Decimal
	PayerID string
}

// NetBalance is one member's position across all expenses.
type NetBalance struct {
	UserID   string          `json:"userId"`
	UserName string          `json:"userName"`
	Amount   decimal.Decimal `json:"amount"` // Positive = is owed money, Negative = owes money
}

// CalculateNetBalances reduces an expense history to one net balance per member.
//
// Algorithm:
//   - Every member starts at zero
//   - For each expense: the payer is credited the full amount, then every
//     member (payer included) is debited an equal share
//   - A payer who is not a current member gets no credit; the shares are
//     still debited
//
// Expense amounts are taken in whole cents and balances are accumulated
// exactly in units of 1/n cent, so a share below one cent is never lost
// before settlement. Balances are returned with balancePrecision decimal
// places and sum to zero within that precision.
//
// The result has one entry per distinct member in input order. An empty
// member list yields an empty result.
func CalculateNetBalances(expenses []ExpenseRecord, members []models.Member) []NetBalance {
	roster := distinctMembers(members)
	if len(roster) == 0 {
		return []NetBalance{}
	}

	n := int64(len(roster))
	units := netUnits(expenses, roster)

	balances := make([]NetBalance, len(roster))
	for i, m := range roster {
		balances[i] = NetBalance{
			UserID:   m.UserID,
			UserName: m.DisplayName,
			Amount:   fromShareUnits(units[i], n),
		}
	}
	return balances
}

// netUnits returns each roster position's net balance in units of 1/n cent,
// where n is the roster size. The values are exact and sum to zero.
func netUnits(expenses []ExpenseRecord, roster []models.Member) []int64 {
	index := make(map[string]int, len(roster))
	for i, m := range roster {
		index[m.UserID] = i
	}

	n := int64(len(roster))
	balances := make([]int64, len(roster))

	for _, expense := range expenses {
		cents := ToCents(expense.Amount)

		// Credit the payer
		if i, ok := index[expense.PayerID]; ok {
			balances[i] += cents * n
		}

		// Debit every member an equal share: cents/n, i.e. cents units
		for i := range balances {
			balances[i] -= cents
		}
	}

	return balances
}

// distinctMembers drops repeated user IDs, keeping the first occurrence.
func distinctMembers(members []models.Member) []models.Member {
	seen := make(map[string]struct{}, len(members))
	roster := make([]models.Member, 0, len(members))
	for _, m := range members {
		if _, dup := seen[m.UserID]; dup {
			continue
		}
		seen[m.UserID] = struct{}{}
		roster = append(roster, m)
	}
	return roster
}
