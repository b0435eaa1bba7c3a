package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport_Participants(t *testing.T) {
	report := BuildReport(ReportInput{
		Participants: people("A", "B", "C"),
		Expenses:     threeWayDinner(),
		Settlements:  []PersistedSettlement{{From: "B", To: "A", Amount: dec("30")}},
	})

	require.Len(t, report.Participants, 3)
	assert.Empty(t, report.Entities)
	assert.Empty(t, report.Unresolved)
	assertDecimal(t, "90", report.TotalSpent, "TotalSpent")
	assert.Equal(t, []edge{{"C", "A", "30.00"}}, edges(report.Suggestions))
}

func TestBuildReport_Groups(t *testing.T) {
	report := BuildReport(ReportInput{
		Participants: people("A", "B", "C"),
		Expenses:     threeWayDinner(),
		Groups:       []GroupDefinition{{ID: "bc", DisplayName: "B & C", MemberIDs: []string{"B", "C"}}},
	})

	require.Len(t, report.Entities, 2)
	assertDecimal(t, "-60", report.Entities[1].NetBalance, "bc.NetBalance")
	assert.Equal(t, []edge{{"bc", "A", "60.00"}}, edges(report.Suggestions))
}

func TestBuildReport_UnresolvedKeptApart(t *testing.T) {
	expenses := append(threeWayDinner(), Expense{
		Amount:       dec("10"),
		ExchangeRate: dec("2"),
		PaidBy:       "ghost",
		Splits:       []Split{{ParticipantID: "B", Amount: dec("10")}},
	})

	report := BuildReport(ReportInput{
		Participants: people("A", "B", "C"),
		Expenses:     expenses,
		Settlements:  []PersistedSettlement{{From: "C", To: "stranger", Amount: dec("1")}},
	})

	require.Len(t, report.Participants, 3)
	require.Len(t, report.Unresolved, 2)
	assert.Equal(t, "ghost", report.Unresolved[0].Participant.ID)
	assert.Equal(t, "stranger", report.Unresolved[1].Participant.ID)
	assertDecimal(t, "110", report.TotalSpent, "TotalSpent")

	all := append(append([]ParticipantBalance{}, report.Participants...), report.Unresolved...)
	assertConserved(t, all)
	for _, s := range report.Suggestions {
		assert.NotEqual(t, "ghost", s.To.ID)
		assert.NotEqual(t, "stranger", s.To.ID)
	}
}
