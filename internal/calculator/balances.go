package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MemberBalance is one participant's position within a group.
type MemberBalance struct {
	ParticipantID string
	NetBalance    decimal.Decimal // Positive = owed money, Negative = owes money
	TotalPaid     decimal.Decimal // Sum of bill amounts this participant paid
	TotalOwed     decimal.Decimal // Sum of this participant's split shares
}

// AggregateBalances folds a group's bills into per-participant net balances.
//
// Every roster participant starts at zero so members without bills still
// appear. For each bill the payer is credited the full amount and every split
// participant is debited their share; a payer who is also a split participant
// nets amount - own share.
//
// The result is ordered: roster order first, then participants that only
// appear in bills (e.g. removed members) in order of first appearance. The
// net balances always sum to zero when every bill satisfies the split
// invariant.
func AggregateBalances(bills []models.Bill, roster []models.Participant) []MemberBalance {
	index := make(map[string]int)
	var balances []MemberBalance

	get := func(id string) *MemberBalance {
		i, ok := index[id]
		if !ok {
			i = len(balances)
			index[id] = i
			balances = append(balances, MemberBalance{
				ParticipantID: id,
				NetBalance:    decimal.Zero,
				TotalPaid:     decimal.Zero,
				TotalOwed:     decimal.Zero,
			})
		}
		return &balances[i]
	}

	for _, p := range roster {
		get(p.ID)
	}

	for _, bill := range bills {
		if bill.PaidBy == "" {
			continue
		}
		payer := get(bill.PaidBy)
		payer.TotalPaid = payer.TotalPaid.Add(bill.Amount)

		for _, split := range bill.Splits {
			if split.ParticipantID == "" {
				continue
			}
			p := get(split.ParticipantID)
			p.TotalOwed = p.TotalOwed.Add(split.Amount)
		}
	}

	for i := range balances {
		balances[i].NetBalance = balances[i].TotalPaid.Sub(balances[i].TotalOwed)
	}
	return balances
}

// BalanceMap indexes balances by participant ID.
func BalanceMap(balances []MemberBalance) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		m[b.ParticipantID] = b.NetBalance
	}
	return m
}
