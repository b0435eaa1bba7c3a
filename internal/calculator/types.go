package calculator

import "github.com/shopspring/decimal"

// Participant is a person (member or guest) taking part in a calculation.
type Participant struct {
	ID          string
	DisplayName string
	Avatar      string
	Type        string // "member" or "guest"; informational
}

// Expense represents an expense with the minimal information needed for balance calculations.
type Expense struct {
	ID     string
	Amount decimal.Decimal // in the expense's own currency
	// ExchangeRate converts the expense currency into the base currency.
	// Zero or negative means no conversion.
	ExchangeRate decimal.Decimal
	PaidBy       string
	Splits       []Split
}

// Split is a participant's share of an expense, in the expense's currency.
type Split struct {
	ParticipantID string
	Amount        decimal.Decimal
	Percentage    decimal.NullDecimal // informational only
}

// PersistedSettlement is a payment that has already been made, in base currency.
type PersistedSettlement struct {
	From   string // who paid (debtor settling up)
	To     string // who received (creditor being paid)
	Amount decimal.Decimal
}

// GroupDefinition names participants that settle as one wallet.
type GroupDefinition struct {
	ID          string
	DisplayName string
	Avatar      string
	MemberIDs   []string
}

// Party identifies the payer or payee of a suggested settlement.
type Party struct {
	ID          string
	DisplayName string
	Avatar      string
}

// Balance is anything the settlement suggester can work on: a participant
// balance or an entity balance.
type Balance interface {
	Party() Party
	Net() decimal.Decimal
}

// ParticipantBalance represents the balance information for one participant.
type ParticipantBalance struct {
	Participant Participant
	TotalPaid   decimal.Decimal // paid for expenses, base currency
	TotalOwed   decimal.Decimal // share of expenses, base currency
	SettledOut  decimal.Decimal // recorded payments made
	SettledIn   decimal.Decimal // recorded payments received
	NetBalance  decimal.Decimal // Positive = owed money, Negative = owes money
}

func (b ParticipantBalance) Party() Party {
	return Party{ID: b.Participant.ID, DisplayName: b.Participant.DisplayName, Avatar: b.Participant.Avatar}
}

func (b ParticipantBalance) Net() decimal.Decimal { return b.NetBalance }

// EntityType tells a single participant apart from a group wallet.
type EntityType string

const (
	EntityIndividual EntityType = "individual"
	EntityGroup      EntityType = "group"
)

// EntityBalance is the balance of a settlement unit. For groups, Members holds
// each member's own balance before aggregation.
type EntityBalance struct {
	ID          string
	DisplayName string
	Avatar      string
	Type        EntityType
	TotalPaid   decimal.Decimal
	TotalOwed   decimal.Decimal
	NetBalance  decimal.Decimal
	Members     []ParticipantBalance
}

func (e EntityBalance) Party() Party {
	return Party{ID: e.ID, DisplayName: e.DisplayName, Avatar: e.Avatar}
}

func (e EntityBalance) Net() decimal.Decimal { return e.NetBalance }

// Settlement is a suggested payment. Amount is always positive and in the
// base currency.
type Settlement struct {
	From   Party
	To     Party
	Amount decimal.Decimal
}

// Sum returns the sum of net balances.
func Sum[B Balance](balances []B) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Net())
	}
	return total
}
