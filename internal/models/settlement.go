package models

import "github.com/shopspring/decimal"

// SettlementStatus is the lifecycle state of a settlement request.
type SettlementStatus string

const (
	SettlementPending  SettlementStatus = "pending"
	SettlementPaid     SettlementStatus = "paid"
	SettlementRejected SettlementStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed.
func (s SettlementStatus) IsTerminal() bool {
	return s == SettlementPaid || s == SettlementRejected
}

// Settlement records a request to settle a debt between two users.
//
// A settlement starts Pending and moves to Paid or Rejected exactly once,
// by the payee.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group the debt arose in. Empty once the group is deleted.
	GroupID string

	// GroupName is a snapshot of the group's name for history display.
	GroupName string

	// PayerID is the user who owes and pays.
	PayerID string

	// PayeeID is the user who is owed and confirms receipt.
	PayeeID string

	// Amount is the payment amount.
	Amount decimal.Decimal

	Status SettlementStatus

	// CreatedAt is the Unix timestamp when the request was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last status change.
	UpdatedAt int64
}

// Involves reports whether userID is the payer or the payee.
func (s *Settlement) Involves(userID string) bool {
	return s.PayerID == userID || s.PayeeID == userID
}
