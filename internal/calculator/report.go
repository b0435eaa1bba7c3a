package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsettle/internal/money"
)

// ReportInput is everything known about one trip.
type ReportInput struct {
	Participants []Participant
	Expenses     []Expense
	Settlements  []PersistedSettlement
	Groups       []GroupDefinition
}

// Report is the full balance picture of a trip.
type Report struct {
	// Participants are reconciled balances, one per known participant.
	Participants []ParticipantBalance

	// Entities are set only when the trip defines groups.
	Entities []EntityBalance

	// Unresolved are ids referenced by expenses or settlements that are not
	// trip participants. They never receive suggestions.
	Unresolved []ParticipantBalance

	// Suggestions are between entities when groups exist, otherwise between
	// participants.
	Suggestions []Settlement

	// TotalSpent is the sum of all expenses in base currency.
	TotalSpent decimal.Decimal
}

// BuildReport runs the balance pipeline for one trip.
func BuildReport(in ReportInput) Report {
	raw := CalculateBalances(in.Expenses, in.Participants)
	known := len(raw.Participants)
	reconciled := ApplyPersistedSettlements(raw.All(), in.Settlements)

	report := Report{
		Participants: reconciled[:known:known],
		Unresolved:   reconciled[known:],
		TotalSpent:   totalSpent(in.Expenses),
	}

	if len(in.Groups) > 0 {
		report.Entities = AggregateToEntities(report.Participants, in.Groups)
		report.Suggestions = SuggestSettlements(report.Entities)
	} else {
		report.Suggestions = SuggestSettlements(report.Participants)
	}

	return report
}

func totalSpent(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(money.ToBaseCurrency(e.Amount, e.ExchangeRate))
	}
	return total
}
