package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mmynk/splitledger/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func registered(id, name string) models.Participant {
	return models.Participant{ID: id, DisplayName: name, IsRegistered: true}
}

func guest(id, name string) models.Participant {
	return models.Participant{ID: id, DisplayName: name}
}

func split(id string, amount string) models.Split {
	return models.Split{ParticipantID: id, ParticipantName: id, IsRegistered: true, Amount: d(amount)}
}

func balancesOf(pairs ...interface{}) []MemberBalance {
	var out []MemberBalance
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, MemberBalance{
			ParticipantID: pairs[i].(string),
			NetBalance:    d(pairs[i+1].(string)),
		})
	}
	return out
}
