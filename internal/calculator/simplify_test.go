package calculator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

func TestSimplifyDebts_ThreeParty(t *testing.T) {
	edges := SimplifyDebts(balancesOf("A", "-300", "B", "500", "C", "-200"))

	require.Len(t, edges, 2)
	assert.Equal(t, "A", edges[0].From)
	assert.Equal(t, "B", edges[0].To)
	assertDecimal(t, "300", edges[0].Amount)
	assert.Equal(t, "C", edges[1].From)
	assert.Equal(t, "B", edges[1].To)
	assertDecimal(t, "200", edges[1].Amount)
}

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name     string
		balances []MemberBalance
		want     int
	}{
		{name: "empty", balances: nil, want: 0},
		{name: "all settled", balances: balancesOf("a", "0", "b", "0"), want: 0},
		{name: "noise below epsilon", balances: balancesOf("a", "0.000001", "b", "-0.000001"), want: 0},
		{name: "one pair", balances: balancesOf("a", "-10", "b", "10"), want: 1},
		{name: "one creditor many debtors", balances: balancesOf("a", "-1", "b", "-2", "c", "-3", "d", "6"), want: 3},
		{name: "chain", balances: balancesOf("a", "-10", "b", "5", "c", "-5", "d", "10"), want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := SimplifyDebts(tt.balances)
			assert.Len(t, edges, tt.want)
			assertSettles(t, tt.balances, edges)
		})
	}
}

func TestSimplifyDebts_Deterministic(t *testing.T) {
	balances := balancesOf("a", "-10", "b", "4", "c", "-5", "d", "11")
	first := SimplifyDebts(balances)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SimplifyDebts(balances))
	}
}

func TestSimplifyDebts_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	roster := make([]models.Participant, len(ids))
	for i, id := range ids {
		roster[i] = registered(id, id)
	}

	for round := 0; round < 100; round++ {
		var bills []models.Bill
		for n := rng.Intn(8) + 1; n > 0; n-- {
			bills = append(bills, randomBill(rng, ids))
		}
		balances := AggregateBalances(bills, roster)
		edges := SimplifyDebts(balances)

		debtors, creditors := 0, 0
		for _, b := range balances {
			if b.NetBalance.LessThan(epsilon.Neg()) {
				debtors++
			} else if b.NetBalance.GreaterThan(epsilon) {
				creditors++
			}
		}
		limit := debtors + creditors - 1
		if limit < 0 {
			limit = 0
		}
		assert.LessOrEqual(t, len(edges), limit, "round %d", round)
		assertSettles(t, balances, edges)
	}
}

// assertSettles applies edges to balances and checks every participant ends
// at zero and no edge is non-positive.
func assertSettles(t *testing.T, balances []MemberBalance, edges []DebtEdge) {
	t.Helper()
	remaining := BalanceMap(balances)
	for _, e := range edges {
		assert.True(t, e.Amount.IsPositive(), "edge %s->%s has amount %s", e.From, e.To, e.Amount)
		remaining[e.From] = remaining[e.From].Add(e.Amount)
		remaining[e.To] = remaining[e.To].Sub(e.Amount)
	}
	for id, amount := range remaining {
		assert.True(t, amount.Abs().LessThan(epsilon), "%s left with %s", id, amount)
	}
}
