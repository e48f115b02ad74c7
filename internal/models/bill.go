package models

import "github.com/shopspring/decimal"

// Bill is an expense paid by one registered participant and shared by the
// participants listed in Splits.
//
// The split amounts sum to Amount (within one cent) whenever the bill is
// persisted.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// GroupID is the group the bill belongs to.
	GroupID string

	// Description is the human-readable label (e.g., "Groceries").
	Description string

	// Amount is the total paid. Positive at creation; may drop to zero after
	// member removal.
	Amount decimal.Decimal

	// PaidBy is the user ID of the payer.
	PaidBy string

	// Splits are the per-participant shares of Amount.
	Splits []Split

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// Split is one participant's share of a bill.
type Split struct {
	ParticipantID string

	// ParticipantName and IsRegistered are snapshots taken at bill creation.
	ParticipantName string
	IsRegistered    bool

	Amount decimal.Decimal
}

// SplitFor returns the split for participantID, if any.
func (b *Bill) SplitFor(participantID string) (Split, bool) {
	for _, s := range b.Splits {
		if s.ParticipantID == participantID {
			return s, true
		}
	}
	return Split{}, false
}

// ParticipantIDs returns the payer followed by every split participant,
// without duplicates.
func (b *Bill) ParticipantIDs() []string {
	seen := map[string]bool{b.PaidBy: true}
	ids := []string{b.PaidBy}
	for _, s := range b.Splits {
		if !seen[s.ParticipantID] {
			seen[s.ParticipantID] = true
			ids = append(ids, s.ParticipantID)
		}
	}
	return ids
}

// Clone returns a deep copy of the bill.
func (b Bill) Clone() Bill {
	b.Splits = append([]Split(nil), b.Splits...)
	return b
}
