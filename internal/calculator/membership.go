package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/models"
)

// Resolution decides what happens to a removed member's bill shares.
type Resolution string

const (
	// ResolutionResplit spreads the removed share equally over the remaining
	// participants of each bill. Bill totals are unchanged.
	ResolutionResplit Resolution = "resplit"

	// ResolutionAbsorb drops the removed share and shrinks the bill total, so
	// the payer bears the loss.
	ResolutionAbsorb Resolution = "absorb"
)

// ParseResolution converts a user-supplied policy name.
func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(strings.ToLower(strings.TrimSpace(s))); r {
	case ResolutionResplit, ResolutionAbsorb:
		return r, nil
	default:
		return "", fmt.Errorf("%w: invalid bill resolution strategy %q", apperrors.ErrValidation, s)
	}
}

// CheckMemberRemoval verifies that actorID may remove targetID from group.
func CheckMemberRemoval(group *models.Group, actorID, targetID string) error {
	if group.CreatedBy != actorID {
		return fmt.Errorf("%w: only the group creator can remove members", apperrors.ErrAuthorization)
	}
	if group.CreatedBy == targetID {
		return fmt.Errorf("%w: group creator cannot be removed", apperrors.ErrAuthorization)
	}
	if !group.HasMember(targetID) && !group.HasGuest(targetID) {
		return fmt.Errorf("%w: participant %s is not in group %s", apperrors.ErrNotFound, targetID, group.ID)
	}
	return nil
}

// ResolveMemberRemoval rewrites every bill that has a split for removedID and
// returns the rewritten copies. Bills without such a split are not returned
// and the input slice is never modified.
//
// Every returned bill satisfies the split invariant again: under Resplit the
// remaining splits sum to the unchanged amount; under Absorb the amount drops
// by exactly the removed share.
func ResolveMemberRemoval(bills []models.Bill, removedID string, policy Resolution) ([]models.Bill, error) {
	if policy != ResolutionResplit && policy != ResolutionAbsorb {
		return nil, fmt.Errorf("%w: invalid bill resolution strategy %q", apperrors.ErrValidation, policy)
	}

	var updated []models.Bill
	for _, original := range bills {
		share, ok := original.SplitFor(removedID)
		if !ok {
			continue
		}

		bill := original.Clone()
		remaining := make([]models.Split, 0, len(bill.Splits)-1)
		for _, s := range bill.Splits {
			if s.ParticipantID != removedID {
				remaining = append(remaining, s)
			}
		}

		switch policy {
		case ResolutionResplit:
			if len(remaining) == 0 {
				bill.Amount = decimal.Zero
				bill.Splits = nil
				break
			}
			bill.Splits = redistribute(remaining, share.Amount)
		case ResolutionAbsorb:
			bill.Amount = bill.Amount.Sub(share.Amount)
			bill.Splits = remaining
		}

		bill.Splits = dropZeroSplits(bill.Splits)
		updated = append(updated, bill)
	}
	return updated, nil
}

// redistribute adds amount to splits in equal cent-rounded parts. The
// rounding remainder goes to the first split so the total is exact.
func redistribute(splits []models.Split, amount decimal.Decimal) []models.Split {
	parts := divideCents(amount, len(splits))
	out := make([]models.Split, len(splits))
	for i, s := range splits {
		s.Amount = s.Amount.Add(parts[i])
		out[i] = s
	}
	return out
}

func dropZeroSplits(splits []models.Split) []models.Split {
	out := splits[:0]
	for _, s := range splits {
		if !s.Amount.IsZero() {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
