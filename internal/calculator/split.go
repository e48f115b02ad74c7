package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/models"
)

// splitTolerance is the largest allowed difference between a bill's amount
// and the sum of its splits.
var splitTolerance = decimal.New(1, -2)

// RawSplit is a declared share before validation.
type RawSplit struct {
	ParticipantID string
	Amount        decimal.Decimal
}

// BuildBillSplits validates the declared shares of a bill against its total
// and the group roster, and returns the canonical splits.
//
// Each split carries a snapshot of the participant's name and registration
// flag. Zero-amount entries count toward the sum check but are not returned.
func BuildBillSplits(total decimal.Decimal, raw []RawSplit, roster []models.Participant) ([]models.Split, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one participant is required", apperrors.ErrValidation)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: bill amount must be positive, got %s", apperrors.ErrValidation, total)
	}

	known := make(map[string]models.Participant, len(roster))
	for _, p := range roster {
		known[p.ID] = p
	}

	seen := make(map[string]bool, len(raw))
	sum := decimal.Zero
	splits := make([]models.Split, 0, len(raw))
	for _, r := range raw {
		if r.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: split amount for %s cannot be negative", apperrors.ErrValidation, r.ParticipantID)
		}
		if seen[r.ParticipantID] {
			return nil, fmt.Errorf("%w: participant %s appears more than once", apperrors.ErrValidation, r.ParticipantID)
		}
		seen[r.ParticipantID] = true

		p, ok := known[r.ParticipantID]
		if !ok {
			return nil, fmt.Errorf("%w: participant %s not found in group", apperrors.ErrValidation, r.ParticipantID)
		}

		sum = sum.Add(r.Amount)
		if r.Amount.IsZero() {
			continue
		}
		splits = append(splits, models.Split{
			ParticipantID:   p.ID,
			ParticipantName: p.DisplayName,
			IsRegistered:    p.IsRegistered,
			Amount:          r.Amount,
		})
	}

	if sum.Sub(total).Abs().GreaterThan(splitTolerance) {
		return nil, fmt.Errorf("%w: sum of splits (%s) must equal the total bill amount (%s)",
			apperrors.ErrValidation, sum, total)
	}

	return splits, nil
}

// SplitsTotal returns the sum of the split amounts.
func SplitsTotal(splits []models.Split) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(s.Amount)
	}
	return sum
}
