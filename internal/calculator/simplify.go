package calculator

import "github.com/shopspring/decimal"

// epsilon is the magnitude below which a balance is treated as settled.
var epsilon = decimal.New(1, -5)

// DebtEdge is a single payment that settles part of the group's debts.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

type party struct {
	id     string
	amount decimal.Decimal // magnitude still to send or receive
}

// SimplifyDebts reduces net balances to a short list of direct payments.
//
// Debtors and creditors are matched greedily in input order: the first
// debtor pays the first creditor the smaller of the two outstanding amounts,
// and whoever reaches zero (within epsilon) leaves the queue. This emits at
// most debtors+creditors-1 payments and zeroes every balance, but it is not
// the global minimum for every topology.
func SimplifyDebts(balances []MemberBalance) []DebtEdge {
	var debtors, creditors []*party
	for _, b := range balances {
		switch {
		case b.NetBalance.LessThan(epsilon.Neg()):
			debtors = append(debtors, &party{id: b.ParticipantID, amount: b.NetBalance.Neg()})
		case b.NetBalance.GreaterThan(epsilon):
			creditors = append(creditors, &party{id: b.ParticipantID, amount: b.NetBalance})
		}
	}

	var edges []DebtEdge
	for len(debtors) > 0 && len(creditors) > 0 {
		debtor, creditor := debtors[0], creditors[0]

		amount := decimal.Min(debtor.amount, creditor.amount)
		edges = append(edges, DebtEdge{From: debtor.id, To: creditor.id, Amount: amount})

		debtor.amount = debtor.amount.Sub(amount)
		creditor.amount = creditor.amount.Sub(amount)

		if debtor.amount.Abs().LessThan(epsilon) {
			debtors = debtors[1:]
		}
		if creditor.amount.Abs().LessThan(epsilon) {
			creditors = creditors[1:]
		}
	}
	return edges
}
