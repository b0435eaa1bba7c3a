package calculator

import "slices"

// ApplyPersistedSettlements applies recorded payments on top of raw balances
// so suggestions never re-propose a payment that already happened.
//
// For each settlement the payer's balance improves (a debt moves toward zero)
// and the receiver's balance decreases. Payments between the same pair are
// summed. Ids missing from balances are appended with only the settlement
// effect. The input slice is not modified.
func ApplyPersistedSettlements(balances []ParticipantBalance, settlements []PersistedSettlement) []ParticipantBalance {
	out := slices.Clone(balances)
	index := make(map[string]int, len(out))
	for i, b := range out {
		if _, dup := index[b.Participant.ID]; !dup {
			index[b.Participant.ID] = i
		}
	}

	position := func(id string) int {
		if i, ok := index[id]; ok {
			return i
		}
		index[id] = len(out)
		out = append(out, zeroBalance(Participant{ID: id, DisplayName: id}))
		return len(out) - 1
	}

	for _, s := range settlements {
		from := position(s.From)
		out[from].SettledOut = out[from].SettledOut.Add(s.Amount)
		out[from].NetBalance = out[from].NetBalance.Add(s.Amount)

		to := position(s.To)
		out[to].SettledIn = out[to].SettledIn.Add(s.Amount)
		out[to].NetBalance = out[to].NetBalance.Sub(s.Amount)
	}

	return out
}
