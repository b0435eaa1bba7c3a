package calculator

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsettle/internal/money"
)

type position struct {
	party     Party
	remaining decimal.Decimal // whole cents still to pay or receive
	fraction  decimal.Decimal // sub-cent part dropped from the exact balance
}

func newPosition(party Party, magnitude decimal.Decimal) position {
	cents := magnitude.Truncate(2)
	return position{party: party, remaining: cents, fraction: magnitude.Sub(cents)}
}

// SuggestSettlements returns payments that bring every balance to zero.
//
// Greedy algorithm: match the largest debt with the largest credit.
//   - balances with |net| ≤ money.Epsilon are already settled and skipped
//   - the rest are cut to whole cents, then the side with fewer cents gets
//     one more cent on its largest dropped fractions until both sides agree
//   - debtors and creditors are each sorted by magnitude, largest first;
//     equal magnitudes keep their input order
//   - each step pays min(debt, credit) and retires whichever side reaches zero
//
// Every party ends within a cent of zero when the input balances. This is
// not guaranteed to find the fewest payments, but it returns at most
// len(debtors)+len(creditors)-1 of them, in the order they were generated.
func SuggestSettlements[B Balance](balances []B) []Settlement {
	var debtors, creditors []position
	for _, b := range balances {
		net := b.Net()
		if money.IsSettled(net) {
			continue
		}
		if net.IsNegative() {
			debtors = append(debtors, newPosition(b.Party(), net.Neg()))
		} else {
			creditors = append(creditors, newPosition(b.Party(), net))
		}
	}
	evenOutCents(debtors, creditors)

	largestFirst := func(a, b position) int { return b.remaining.Cmp(a.remaining) }
	slices.SortStableFunc(debtors, largestFirst)
	slices.SortStableFunc(creditors, largestFirst)

	var settlements []Settlement
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		if debtor.party.ID == creditor.party.ID {
			// Nothing payable between this pair; retire the smaller side.
			if debtor.remaining.LessThanOrEqual(creditor.remaining) {
				i++
			} else {
				j++
			}
			continue
		}

		amount := decimal.Min(debtor.remaining, creditor.remaining)
		settlements = append(settlements, Settlement{
			From:   debtor.party,
			To:     creditor.party,
			Amount: amount,
		})
		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)

		if debtor.remaining.IsZero() {
			i++
		}
		if creditor.remaining.IsZero() {
			j++
		}
	}

	return settlements
}

// evenOutCents adds a cent to positions of the side holding fewer cents,
// largest dropped fraction first, until both sides hold the same total or
// no fraction is left to round up. A position moves by at most one cent.
func evenOutCents(debtors, creditors []position) {
	gap := totalRemaining(creditors).Sub(totalRemaining(debtors))
	short := debtors
	if gap.IsNegative() {
		short, gap = creditors, gap.Neg()
	}

	var order []int
	for k, p := range short {
		if p.fraction.IsPositive() {
			order = append(order, k)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int { return short[b].fraction.Cmp(short[a].fraction) })

	for _, k := range order {
		if !gap.IsPositive() {
			break
		}
		short[k].remaining = short[k].remaining.Add(cent)
		gap = gap.Sub(cent)
	}
}

func totalRemaining(positions []position) decimal.Decimal {
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.remaining)
	}
	return total
}

// AsPersisted converts suggestions into settlements that can be fed back to
// ApplyPersistedSettlements, e.g. once a user accepts them.
func AsPersisted(suggestions []Settlement) []PersistedSettlement {
	out := make([]PersistedSettlement, len(suggestions))
	for i, s := range suggestions {
		out[i] = PersistedSettlement{From: s.From.ID, To: s.To.ID, Amount: s.Amount}
	}
	return out
}
