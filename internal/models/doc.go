// Package models defines the persisted records of a trip ledger.
//
// # Records
//
//   - Trip: a shared trip with one base currency
//   - Participant: a member (registered user) or guest placeholder in a trip
//   - Expense and Split: one recorded cost and how it is divided
//   - Settlement: a payment already made between two participants
//   - Group: participants that settle as one wallet (e.g. a couple)
//   - User: a registered account
//
// Models are plain structs. Relationships use ID strings, never pointers.
// Money fields are decimal.Decimal and are stored as text.
//
// Records arriving from clients are validated once, at the boundary, with the
// Validate methods in this package. The balance engine in internal/calculator
// trusts its input and never re-validates.
package models
