package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperrors"
)

// SplitMode selects how a bill's declared shares are turned into amounts.
type SplitMode string

const (
	// SplitModeCustom takes the declared amounts as they are.
	SplitModeCustom SplitMode = "custom"

	// SplitModeEqual divides the total equally between the participants.
	SplitModeEqual SplitMode = "equal"

	// SplitModePercentage assigns each participant a percentage of the total.
	// Percentages must add up to exactly 100.
	SplitModePercentage SplitMode = "percentage"

	// SplitModeItemized assigns line items to participants and spreads the
	// difference between the total and the item sum (tax, tip) in proportion
	// to each participant's subtotal.
	SplitModeItemized SplitMode = "itemized"
)

var hundred = decimal.NewFromInt(100)

// ParseSplitMode converts a user-supplied mode name. The empty string means
// SplitModeCustom.
func ParseSplitMode(s string) (SplitMode, error) {
	switch m := SplitMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SplitModeCustom, nil
	case SplitModeCustom, SplitModeEqual, SplitModePercentage, SplitModeItemized:
		return m, nil
	default:
		return "", fmt.Errorf("%w: invalid split mode %q", apperrors.ErrValidation, s)
	}
}

// PercentShare is one participant's percentage of a bill.
type PercentShare struct {
	ParticipantID string
	Percentage    decimal.Decimal
}

// Item is a single line on the bill, shared equally by AssignedTo.
type Item struct {
	Description string
	Amount      decimal.Decimal
	AssignedTo  []string
}

// EqualShares divides total between participantIDs in cents. The rounding
// remainder goes to the first participant.
func EqualShares(total decimal.Decimal, participantIDs []string) ([]RawSplit, error) {
	if len(participantIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one participant is required", apperrors.ErrValidation)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: bill amount must be positive, got %s", apperrors.ErrValidation, total)
	}

	parts := divideCents(total, len(participantIDs))
	raw := make([]RawSplit, len(participantIDs))
	for i, id := range participantIDs {
		raw[i] = RawSplit{ParticipantID: id, Amount: parts[i]}
	}
	return raw, nil
}

// PercentageShares converts percentages of total into cent amounts. The
// rounding remainder goes to the first participant.
func PercentageShares(total decimal.Decimal, shares []PercentShare) ([]RawSplit, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: at least one participant is required", apperrors.ErrValidation)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: bill amount must be positive, got %s", apperrors.ErrValidation, total)
	}

	sum := decimal.Zero
	raw := make([]RawSplit, len(shares))
	allocated := decimal.Zero
	for i, sh := range shares {
		if !sh.Percentage.IsPositive() {
			return nil, fmt.Errorf("%w: percentage for %s must be positive", apperrors.ErrValidation, sh.ParticipantID)
		}
		sum = sum.Add(sh.Percentage)

		amount := total.Mul(sh.Percentage).Div(hundred).RoundDown(2)
		allocated = allocated.Add(amount)
		raw[i] = RawSplit{ParticipantID: sh.ParticipantID, Amount: amount}
	}
	if !sum.Equal(hundred) {
		return nil, fmt.Errorf("%w: percentages add up to %s, not 100", apperrors.ErrValidation, sum)
	}

	raw[0].Amount = raw[0].Amount.Add(total.Sub(allocated))
	return raw, nil
}

// ItemizedShares computes each participant's share from the items assigned to
// them. Every item is divided equally between its assignees in cents. The
// difference between total and the item sum is then spread in proportion to
// each participant's subtotal:
//
//	share = subtotal × total / itemSum
//
// Participants are returned in order of first appearance and any rounding
// remainder goes to the first one.
func ItemizedShares(total decimal.Decimal, items []Item) ([]RawSplit, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", apperrors.ErrValidation)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: bill amount must be positive, got %s", apperrors.ErrValidation, total)
	}

	var order []string
	subtotals := make(map[string]decimal.Decimal)
	itemSum := decimal.Zero
	for _, item := range items {
		if !item.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: item %q must have a positive amount", apperrors.ErrValidation, item.Description)
		}
		if len(item.AssignedTo) == 0 {
			return nil, fmt.Errorf("%w: item %q is not assigned to anyone", apperrors.ErrValidation, item.Description)
		}
		itemSum = itemSum.Add(item.Amount)

		for i, part := range divideCents(item.Amount, len(item.AssignedTo)) {
			id := item.AssignedTo[i]
			if _, ok := subtotals[id]; !ok {
				order = append(order, id)
				subtotals[id] = decimal.Zero
			}
			subtotals[id] = subtotals[id].Add(part)
		}
	}

	raw := make([]RawSplit, len(order))
	allocated := decimal.Zero
	for i, id := range order {
		amount := subtotals[id]
		if !itemSum.Equal(total) {
			amount = amount.Mul(total).Div(itemSum).RoundDown(2)
		}
		allocated = allocated.Add(amount)
		raw[i] = RawSplit{ParticipantID: id, Amount: amount}
	}
	raw[0].Amount = raw[0].Amount.Add(total.Sub(allocated))
	return raw, nil
}

// divideCents splits amount into n cent-rounded parts that add up to amount
// exactly; the first part carries the remainder.
func divideCents(amount decimal.Decimal, n int) []decimal.Decimal {
	count := decimal.NewFromInt(int64(n))
	part := amount.Div(count).RoundDown(2)
	parts := make([]decimal.Decimal, n)
	for i := range parts {
		parts[i] = part
	}
	parts[0] = parts[0].Add(amount.Sub(part.Mul(count)))
	return parts
}
