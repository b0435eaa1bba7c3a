package api

import "github.com/shopspring/decimal"

// Trip is a shared ledger with one base currency.
type Trip struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BaseCurrency string `json:"base_currency"`
	CreatedBy    string `json:"created_by"`
	CreatedAt    int64  `json:"created_at"`
}

// Participant is a member (linked to a user account) or a guest of a trip.
type Participant struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	Type        string `json:"type"`
}

// Group collapses several participants into one settlement entity.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Avatar    string   `json:"avatar,omitempty"`
	MemberIDs []string `json:"member_ids"`
}

// Split is one participant's share of an expense, in the expense currency.
type Split struct {
	ParticipantID string           `json:"participant_id"`
	Amount        decimal.Decimal  `json:"amount"`
	Percentage    *decimal.Decimal `json:"percentage,omitempty"`
}

// SplitInput is the per-participant value for a split mode: ignored for
// equal, an amount for exact, a percentage for percentage, a weight for shares.
type SplitInput struct {
	ParticipantID string          `json:"participant_id"`
	Value         decimal.Decimal `json:"value"`
}

// Item is a line of an itemized receipt.
type Item struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	AssignedTo  []string        `json:"assigned_to"`
}

type Expense struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	PaidBy       string          `json:"paid_by"`
	Splits       []Split         `json:"splits"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    int64           `json:"created_at"`
}

// Settlement is a payment that has actually been made, in base currency.
type Settlement struct {
	ID        string          `json:"id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt int64           `json:"created_at"`
}

type ParticipantBalance struct {
	ParticipantID string          `json:"participant_id"`
	DisplayName   string          `json:"display_name"`
	Avatar        string          `json:"avatar,omitempty"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalOwed     decimal.Decimal `json:"total_owed"`
	SettledOut    decimal.Decimal `json:"settled_out"`
	SettledIn     decimal.Decimal `json:"settled_in"`
	NetBalance    decimal.Decimal `json:"net_balance"`
}

// EntityBalance is an individual or a group; Members is set for groups only.
type EntityBalance struct {
	ID          string               `json:"id"`
	DisplayName string               `json:"display_name"`
	Avatar      string               `json:"avatar,omitempty"`
	Type        string               `json:"type"`
	TotalPaid   decimal.Decimal      `json:"total_paid"`
	TotalOwed   decimal.Decimal      `json:"total_owed"`
	NetBalance  decimal.Decimal      `json:"net_balance"`
	Members     []ParticipantBalance `json:"members,omitempty"`
}

type Party struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

// SuggestedSettlement is a payment the engine proposes, in base currency.
type SuggestedSettlement struct {
	From   Party           `json:"from"`
	To     Party           `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type CreateTripRequest struct {
	Name         string `json:"name"`
	BaseCurrency string `json:"base_currency"`
}

// CreateTripResponse returns the trip and the caller's own participant.
type CreateTripResponse struct {
	Trip        *Trip        `json:"trip"`
	Participant *Participant `json:"participant"`
}

type GetTripRequest struct {
	TripID string `json:"trip_id"`
}

type GetTripResponse struct {
	Trip         *Trip          `json:"trip"`
	Participants []*Participant `json:"participants"`
	Groups       []*Group       `json:"groups"`
}

type ListTripsRequest struct{}

type ListTripsResponse struct {
	Trips []*Trip `json:"trips"`
}

// AddParticipantRequest adds a guest, or a member when UserID is set.
type AddParticipantRequest struct {
	TripID      string `json:"trip_id"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	Type        string `json:"type,omitempty"`
}

type AddParticipantResponse struct {
	Participant *Participant `json:"participant"`
}

type CreateGroupRequest struct {
	TripID    string   `json:"trip_id"`
	Name      string   `json:"name"`
	Avatar    string   `json:"avatar,omitempty"`
	MemberIDs []string `json:"member_ids"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

// CreateExpenseRequest carries exactly one way of dividing the expense:
// explicit Splits, a SplitMode with SplitInputs, or itemized Items with
// the receipt Subtotal.
type CreateExpenseRequest struct {
	TripID       string          `json:"trip_id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency,omitempty"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	PaidBy       string          `json:"paid_by"`
	Splits       []Split         `json:"splits,omitempty"`
	SplitMode    string          `json:"split_mode,omitempty"`
	SplitInputs  []SplitInput    `json:"split_inputs,omitempty"`
	Items        []Item          `json:"items,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	TripID string `json:"trip_id"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type GetBalancesRequest struct {
	TripID string `json:"trip_id"`
}

// GetBalancesResponse is the balance report of a trip. Entities is empty
// when the trip has no groups, in which case Suggestions are between
// participants. Unresolved lists ids referenced by expenses or settlements
// that are not participants of the trip.
type GetBalancesResponse struct {
	TripID       string                `json:"trip_id"`
	BaseCurrency string                `json:"base_currency"`
	TotalSpent   decimal.Decimal       `json:"total_spent"`
	Participants []ParticipantBalance  `json:"participants"`
	Entities     []EntityBalance       `json:"entities,omitempty"`
	Suggestions  []SuggestedSettlement `json:"suggestions"`
	Unresolved   []string              `json:"unresolved,omitempty"`
}

type RecordSettlementRequest struct {
	TripID string          `json:"trip_id"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	TripID string `json:"trip_id"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

type DeleteSettlementResponse struct{}
