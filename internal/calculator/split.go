package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsettle/internal/money"
)

// SplitMode selects how an expense amount is divided.
type SplitMode string

const (
	SplitEqual      SplitMode = "equal"
	SplitExact      SplitMode = "exact"
	SplitPercentage SplitMode = "percentage"
	SplitShares     SplitMode = "shares"
)

var (
	ErrNoParticipants    = errors.New("must have at least one participant")
	ErrNegativeValue     = errors.New("split values cannot be negative")
	ErrPercentageTotal   = errors.New("percentages must add up to 100")
	ErrExactTotal        = errors.New("exact amounts must add up to the expense amount")
	ErrZeroWeights       = errors.New("at least one share must be positive")
	ErrZeroSubtotal      = errors.New("subtotal cannot be zero")
	ErrUnknownSplitMode  = errors.New("unknown split mode")
	ErrNothingAssigned   = errors.New("no item is assigned to a participant")
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

var (
	cent    = decimal.New(1, -2)
	hundred = decimal.NewFromInt(100)
)

// SplitInput is one participant's input for a split mode: ignored for equal,
// the amount for exact, the percentage for percentage, the weight for shares.
type SplitInput struct {
	ParticipantID string
	Value         decimal.Decimal
}

// Item represents a single line item on a receipt.
type Item struct {
	Description string
	Amount      decimal.Decimal
	AssignedTo  []string
}

// BuildSplits divides amount between inputs according to mode. Equal,
// percentage and shares splits add up to amount exactly, with leftover cents
// going to the first participants. Exact splits are returned as given and
// only need to be within money.Epsilon of amount.
func BuildSplits(mode SplitMode, amount decimal.Decimal, inputs []SplitInput) ([]Split, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if len(inputs) == 0 {
		return nil, ErrNoParticipants
	}
	for _, in := range inputs {
		if in.Value.IsNegative() {
			return nil, ErrNegativeValue
		}
	}

	switch mode {
	case SplitEqual, "":
		ids := make([]string, len(inputs))
		for i, in := range inputs {
			ids[i] = in.ParticipantID
		}
		return EqualSplit(amount, ids)
	case SplitExact:
		return exactSplit(amount, inputs)
	case SplitPercentage:
		return percentageSplit(amount, inputs)
	case SplitShares:
		return sharesSplit(amount, inputs)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitMode, mode)
	}
}

// EqualSplit divides amount equally between participants.
func EqualSplit(amount decimal.Decimal, participants []string) ([]Split, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	weights := make([]decimal.Decimal, len(participants))
	for i := range weights {
		weights[i] = decimal.NewFromInt(1)
	}
	return toSplits(participants, allocate(amount, weights), nil), nil
}

func exactSplit(amount decimal.Decimal, inputs []SplitInput) ([]Split, error) {
	total := decimal.Zero
	splits := make([]Split, len(inputs))
	for i, in := range inputs {
		total = total.Add(in.Value)
		splits[i] = Split{ParticipantID: in.ParticipantID, Amount: in.Value}
	}
	if !money.IsSettled(total.Sub(amount)) {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrExactTotal, total, amount)
	}
	return splits, nil
}

func percentageSplit(amount decimal.Decimal, inputs []SplitInput) ([]Split, error) {
	ids, weights := unzip(inputs)
	total := decimal.Sum(decimal.Zero, weights...)
	if !money.IsSettled(total.Sub(hundred)) {
		return nil, fmt.Errorf("%w: got %s", ErrPercentageTotal, total)
	}
	return toSplits(ids, allocate(amount, weights), weights), nil
}

func sharesSplit(amount decimal.Decimal, inputs []SplitInput) ([]Split, error) {
	ids, weights := unzip(inputs)
	if !decimal.Sum(decimal.Zero, weights...).IsPositive() {
		return nil, ErrZeroWeights
	}
	return toSplits(ids, allocate(amount, weights), nil), nil
}

// ItemizedSplit computes how much each person owes including proportional tax.
// Based on the algorithm: person_total = person_subtotal × (total / subtotal)
//
// Items are shared equally by the people they are assigned to; assignees who
// are not participants are ignored. With no items the total is split equally.
func ItemizedSplit(items []Item, total, subtotal decimal.Decimal, participants []string) ([]Split, error) {
	if subtotal.IsZero() {
		return nil, ErrZeroSubtotal
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if len(items) == 0 {
		return EqualSplit(total, participants)
	}

	position := make(map[string]int, len(participants))
	for i, p := range participants {
		position[p] = i
	}

	// Calculate each person's subtotal based on assigned items
	subtotals := make([]decimal.Decimal, len(participants))
	for i := range subtotals {
		subtotals[i] = decimal.Zero
	}
	for _, item := range items {
		if len(item.AssignedTo) == 0 {
			continue
		}
		weights := make([]decimal.Decimal, len(item.AssignedTo))
		for i := range weights {
			weights[i] = decimal.NewFromInt(1)
		}
		for i, share := range allocate(item.Amount, weights) {
			if p, ok := position[item.AssignedTo[i]]; ok {
				subtotals[p] = subtotals[p].Add(share)
			}
		}
	}
	if !decimal.Sum(decimal.Zero, subtotals...).IsPositive() {
		return nil, ErrNothingAssigned
	}

	// Scaling subtotals to the total applies tax and tip proportionally.
	return toSplits(participants, allocate(total, subtotals), nil), nil
}

// allocate divides amount proportionally to weights, truncating to cents and
// handing leftover cents to the first positive weights in order.
func allocate(amount decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	totalWeight := decimal.Sum(decimal.Zero, weights...)
	shares := make([]decimal.Decimal, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		shares[i] = amount.Mul(w).Div(totalWeight).Truncate(2)
		allocated = allocated.Add(shares[i])
	}

	remainder := amount.Sub(allocated)
	for i := 0; remainder.GreaterThanOrEqual(cent); i = (i + 1) % len(weights) {
		if !weights[i].IsPositive() {
			continue
		}
		shares[i] = shares[i].Add(cent)
		remainder = remainder.Sub(cent)
	}
	// Sub-cent precision (e.g. three-decimal currencies) goes to the first share.
	if !remainder.IsZero() {
		for i, w := range weights {
			if w.IsPositive() {
				shares[i] = shares[i].Add(remainder)
				break
			}
		}
	}
	return shares
}

func toSplits(ids []string, amounts, percentages []decimal.Decimal) []Split {
	splits := make([]Split, len(ids))
	for i, id := range ids {
		splits[i] = Split{ParticipantID: id, Amount: amounts[i]}
		if percentages != nil {
			splits[i].Percentage = decimal.NewNullDecimal(percentages[i])
		}
	}
	return splits
}

func unzip(inputs []SplitInput) ([]string, []decimal.Decimal) {
	ids := make([]string, len(inputs))
	values := make([]decimal.Decimal, len(inputs))
	for i, in := range inputs {
		ids[i] = in.ParticipantID
		values[i] = in.Value
	}
	return ids, values
}
