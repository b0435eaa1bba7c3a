// Package calculator computes trip balances and suggests settlements.
//
// Everything in this package is pure: no I/O, no shared state, and no
// errors for well-typed input. The pipeline is
//
//	CalculateBalances → ApplyPersistedSettlements → AggregateToEntities (optional) → SuggestSettlements
//
// BuildReport runs the whole pipeline.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsettle/internal/money"
)

// Result holds the balances produced by CalculateBalances.
type Result struct {
	// Participants has one entry per input participant, in input order.
	Participants []ParticipantBalance

	// Unresolved holds ids referenced by expenses or splits that are not in
	// the participant list, in first-seen order. They are kept so that the
	// overall sum still balances.
	Unresolved []ParticipantBalance
}

// All returns Participants followed by Unresolved.
func (r Result) All() []ParticipantBalance {
	all := make([]ParticipantBalance, 0, len(r.Participants)+len(r.Unresolved))
	all = append(all, r.Participants...)
	return append(all, r.Unresolved...)
}

// CalculateBalances aggregates who paid what and who owes what.
//
// Algorithm:
//   - every participant starts at zero, even with no expenses
//   - for each expense: payer gets +amount converted to base currency
//   - for each split: participant owes the split converted with the parent
//     expense's exchange rate
//   - net_balance = total_paid - total_owed
//
// Splits are summed as given; an expense whose splits do not add up to its
// amount leaves a residual in the overall balance.
func CalculateBalances(expenses []Expense, participants []Participant) Result {
	balances := make([]ParticipantBalance, 0, len(participants))
	index := make(map[string]int, len(participants))
	for _, p := range participants {
		if _, dup := index[p.ID]; dup {
			continue
		}
		index[p.ID] = len(balances)
		balances = append(balances, zeroBalance(p))
	}

	var unresolved []ParticipantBalance
	unresolvedIndex := make(map[string]int)

	// entry must not be held across calls, appends may move the slices.
	entry := func(id string) *ParticipantBalance {
		if i, ok := index[id]; ok {
			return &balances[i]
		}
		if i, ok := unresolvedIndex[id]; ok {
			return &unresolved[i]
		}
		unresolvedIndex[id] = len(unresolved)
		unresolved = append(unresolved, zeroBalance(Participant{ID: id, DisplayName: id}))
		return &unresolved[len(unresolved)-1]
	}

	for _, e := range expenses {
		payer := entry(e.PaidBy)
		payer.TotalPaid = payer.TotalPaid.Add(money.ToBaseCurrency(e.Amount, e.ExchangeRate))

		for _, s := range e.Splits {
			owner := entry(s.ParticipantID)
			owner.TotalOwed = owner.TotalOwed.Add(money.ToBaseCurrency(s.Amount, e.ExchangeRate))
		}
	}

	for i := range balances {
		balances[i].NetBalance = balances[i].TotalPaid.Sub(balances[i].TotalOwed)
	}
	for i := range unresolved {
		unresolved[i].NetBalance = unresolved[i].TotalPaid.Sub(unresolved[i].TotalOwed)
	}

	return Result{Participants: balances, Unresolved: unresolved}
}

func zeroBalance(p Participant) ParticipantBalance {
	return ParticipantBalance{
		Participant: p,
		TotalPaid:   decimal.Zero,
		TotalOwed:   decimal.Zero,
		SettledOut:  decimal.Zero,
		SettledIn:   decimal.Zero,
		NetBalance:  decimal.Zero,
	}
}
