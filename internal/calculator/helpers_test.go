package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mmynk/tripsettle/internal/money"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, what string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s = %s, want %s", what, got, want)
}

func people(ids ...string) []Participant {
	out := make([]Participant, len(ids))
	for i, id := range ids {
		out[i] = Participant{ID: id, DisplayName: id, Type: "member"}
	}
	return out
}

func balanceByID(balances []ParticipantBalance) map[string]ParticipantBalance {
	m := make(map[string]ParticipantBalance, len(balances))
	for _, b := range balances {
		m[b.Participant.ID] = b
	}
	return m
}

func netBalances(nets map[string]string) []ParticipantBalance {
	var out []ParticipantBalance
	for _, id := range []string{"A", "B", "C", "D", "E", "F"} {
		v, ok := nets[id]
		if !ok {
			continue
		}
		b := zeroBalance(Participant{ID: id, DisplayName: id})
		b.NetBalance = dec(v)
		out = append(out, b)
	}
	return out
}

func assertConserved[B Balance](t *testing.T, balances []B) {
	t.Helper()
	sum := Sum(balances)
	assert.Truef(t, money.IsSettled(sum), "sum of net balances = %s, want 0 ± %s", sum, money.Epsilon)
}

// threeWayDinner is A paying 90, split 30/30/30.
func threeWayDinner() []Expense {
	return []Expense{{
		ID:           "dinner",
		Amount:       dec("90"),
		ExchangeRate: dec("1"),
		PaidBy:       "A",
		Splits: []Split{
			{ParticipantID: "A", Amount: dec("30")},
			{ParticipantID: "B", Amount: dec("30")},
			{ParticipantID: "C", Amount: dec("30")},
		},
	}}
}
