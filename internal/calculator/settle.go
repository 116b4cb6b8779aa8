package calculator

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// SettlementTransaction is one payment from a debtor to a creditor.
type SettlementTransaction struct {
	From   models.Member `json:"from"`
	To     models.Member `json:"to"`
	Amount string        `json:"amount"` // Two decimals, always positive
	Cents  int64         `json:"-"`      // Amount in cents
}

// party is a working copy of a creditor or debtor during optimization.
type party struct {
	member    models.Member
	remaining decimal.Decimal // always positive while unresolved
}

// OptimizeSettlements turns net balances into a sequence of payments that
// zeroes every balance.
//
// Balances within Epsilon of zero are treated as settled and skipped.
// Creditors are sorted by amount and debtors by absolute amount, both
// largest first; ties keep input order. Two cursors then walk the lists,
// settling min(creditor, debtor) per step and advancing past a party once
// its remainder drops below Epsilon. The lists are never re-sorted, so this
// is a greedy heuristic: it does not always reach the minimum number of
// transactions.
//
// Remainders are tracked at full precision; only the emitted amounts are
// rounded to cents. The input slice is not modified.
func OptimizeSettlements(balances []NetBalance) []SettlementTransaction {
	var creditors, debtors []party
	for _, b := range balances {
		member := models.Member{UserID: b.UserID, DisplayName: b.UserName}
		switch {
		case b.Amount.GreaterThan(Epsilon):
			creditors = append(creditors, party{member: member, remaining: b.Amount})
		case b.Amount.LessThan(Epsilon.Neg()):
			debtors = append(debtors, party{member: member, remaining: b.Amount.Neg()})
		}
	}

	largestFirst := func(a, b party) int { return b.remaining.Cmp(a.remaining) }
	slices.SortStableFunc(creditors, largestFirst)
	slices.SortStableFunc(debtors, largestFirst)

	settlements := []SettlementTransaction{}
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		creditor := &creditors[i]
		debtor := &debtors[j]

		// Settle the smaller of the two outstanding amounts
		amount := decimal.Min(creditor.remaining, debtor.remaining)

		settlements = append(settlements, SettlementTransaction{
			From:   debtor.member,
			To:     creditor.member,
			Amount: FormatAmount(amount),
			Cents:  ToCents(amount),
		})

		creditor.remaining = creditor.remaining.Sub(amount)
		debtor.remaining = debtor.remaining.Sub(amount)

		if creditor.remaining.LessThan(Epsilon) {
			i++
		}
		if debtor.remaining.LessThan(Epsilon) {
			j++
		}
	}

	return settlements
}
