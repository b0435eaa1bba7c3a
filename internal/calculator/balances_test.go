package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBalances_EqualSplit(t *testing.T) {
	result := CalculateBalances(threeWayDinner(), people("A", "B", "C"))

	require.Len(t, result.Participants, 3)
	assert.Empty(t, result.Unresolved)

	got := balanceByID(result.Participants)
	assertDecimal(t, "90", got["A"].TotalPaid, "A.TotalPaid")
	assertDecimal(t, "30", got["A"].TotalOwed, "A.TotalOwed")
	assertDecimal(t, "60", got["A"].NetBalance, "A.NetBalance")
	assertDecimal(t, "-30", got["B"].NetBalance, "B.NetBalance")
	assertDecimal(t, "-30", got["C"].NetBalance, "C.NetBalance")
	assertConserved(t, result.Participants)
}

func TestCalculateBalances_KeepsInputOrderAndIdleParticipants(t *testing.T) {
	result := CalculateBalances(threeWayDinner(), people("D", "C", "B", "A"))

	ids := make([]string, len(result.Participants))
	for i, b := range result.Participants {
		ids[i] = b.Participant.ID
	}
	assert.Equal(t, []string{"D", "C", "B", "A"}, ids)

	idle := result.Participants[0]
	assert.True(t, idle.TotalPaid.IsZero())
	assert.True(t, idle.TotalOwed.IsZero())
	assert.True(t, idle.NetBalance.IsZero())
}

func TestCalculateBalances_MultiCurrency(t *testing.T) {
	expenses := []Expense{
		{
			ID:           "hotel",
			Amount:       dec("100"),
			ExchangeRate: dec("1"),
			PaidBy:       "A",
			Splits: []Split{
				{ParticipantID: "A", Amount: dec("50")},
				{ParticipantID: "B", Amount: dec("50")},
			},
		},
		{
			ID:           "museum",
			Amount:       dec("20"), // EUR
			ExchangeRate: dec("5.0"),
			PaidBy:       "B",
			Splits: []Split{
				{ParticipantID: "A", Amount: dec("10")},
				{ParticipantID: "B", Amount: dec("10")},
			},
		},
	}

	got := balanceByID(CalculateBalances(expenses, people("A", "B")).Participants)

	// The EUR splits use the museum's own rate: 10 EUR × 5 = 50 base each.
	assertDecimal(t, "100", got["B"].TotalPaid, "B.TotalPaid")
	assertDecimal(t, "100", got["A"].TotalOwed, "A.TotalOwed")
	assertDecimal(t, "100", got["B"].TotalOwed, "B.TotalOwed")
	assertDecimal(t, "0", got["A"].NetBalance, "A.NetBalance")
	assertDecimal(t, "0", got["B"].NetBalance, "B.NetBalance")
}

func TestCalculateBalances_MissingOrInvalidRateIsIdentity(t *testing.T) {
	for name, rate := range map[string]decimal.Decimal{
		"absent":   {},
		"zero":     decimal.Zero,
		"negative": dec("-2"),
	} {
		t.Run(name, func(t *testing.T) {
			expenses := []Expense{{
				Amount:       dec("40"),
				ExchangeRate: rate,
				PaidBy:       "A",
				Splits:       []Split{{ParticipantID: "B", Amount: dec("40")}},
			}}
			got := balanceByID(CalculateBalances(expenses, people("A", "B")).Participants)
			assertDecimal(t, "40", got["A"].NetBalance, "A.NetBalance")
			assertDecimal(t, "-40", got["B"].NetBalance, "B.NetBalance")
		})
	}
}

func TestCalculateBalances_SplitsNotMatchingAmount(t *testing.T) {
	// Splits add up to 60 of 100: the engine sums them as given.
	expenses := []Expense{{
		Amount:       dec("100"),
		ExchangeRate: dec("1"),
		PaidBy:       "A",
		Splits: []Split{
			{ParticipantID: "A", Amount: dec("30")},
			{ParticipantID: "B", Amount: dec("30")},
		},
	}}

	result := CalculateBalances(expenses, people("A", "B"))
	got := balanceByID(result.Participants)
	assertDecimal(t, "70", got["A"].NetBalance, "A.NetBalance")
	assertDecimal(t, "-30", got["B"].NetBalance, "B.NetBalance")
	assertDecimal(t, "40", Sum(result.Participants), "residual")
}

func TestCalculateBalances_ExpenseWithoutSplits(t *testing.T) {
	expenses := []Expense{{Amount: dec("25"), ExchangeRate: dec("1"), PaidBy: "A"}}

	got := balanceByID(CalculateBalances(expenses, people("A", "B")).Participants)
	assertDecimal(t, "25", got["A"].TotalPaid, "A.TotalPaid")
	assertDecimal(t, "0", got["A"].TotalOwed, "A.TotalOwed")
	assertDecimal(t, "25", got["A"].NetBalance, "A.NetBalance")
	assertDecimal(t, "0", got["B"].NetBalance, "B.NetBalance")
}

func TestCalculateBalances_UnknownIDsAreUnresolved(t *testing.T) {
	expenses := []Expense{
		{
			Amount:       dec("60"),
			ExchangeRate: dec("1"),
			PaidBy:       "ghost",
			Splits: []Split{
				{ParticipantID: "A", Amount: dec("30")},
				{ParticipantID: "stranger", Amount: dec("30")},
			},
		},
	}

	result := CalculateBalances(expenses, people("A"))

	require.Len(t, result.Participants, 1)
	require.Len(t, result.Unresolved, 2)
	assert.Equal(t, "ghost", result.Unresolved[0].Participant.ID)
	assert.Equal(t, "stranger", result.Unresolved[1].Participant.ID)
	assertDecimal(t, "60", result.Unresolved[0].NetBalance, "ghost.NetBalance")
	assertDecimal(t, "-30", result.Unresolved[1].NetBalance, "stranger.NetBalance")
	assertConserved(t, result.All())
}

func TestCalculateBalances_DuplicateParticipantsCountOnce(t *testing.T) {
	result := CalculateBalances(threeWayDinner(), append(people("A", "B", "C"), people("A")...))

	require.Len(t, result.Participants, 3)
	assertDecimal(t, "60", balanceByID(result.Participants)["A"].NetBalance, "A.NetBalance")
}

func TestCalculateBalances_Empty(t *testing.T) {
	result := CalculateBalances(nil, nil)
	assert.Empty(t, result.Participants)
	assert.Empty(t, result.Unresolved)
}
