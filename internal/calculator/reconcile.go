package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/models"
)

// GroupTransaction is a simplified debt edge tagged with its group.
type GroupTransaction struct {
	DebtEdge
	GroupID   string
	GroupName string
}

// Key identifies the transaction by (from, to, group).
func (t GroupTransaction) Key() string {
	return t.From + "-" + t.To + "-" + t.GroupID
}

// Reconciliation is one user's view of what they owe and are owed.
type Reconciliation struct {
	Debts          []GroupTransaction // user is From
	Credits        []GroupTransaction // user is To
	AllSettlements []models.Settlement
}

// GroupTransactions simplifies one group's balances and tags the edges.
func GroupTransactions(groupID, groupName string, balances []MemberBalance) []GroupTransaction {
	edges := SimplifyDebts(balances)
	txns := make([]GroupTransaction, len(edges))
	for i, e := range edges {
		txns[i] = GroupTransaction{DebtEdge: e, GroupID: groupID, GroupName: groupName}
	}
	return txns
}

// ReconcileSettlements splits txns into the user's debts and credits,
// suppressing any transaction already covered by a Paid settlement for the
// exact same (payer, payee, group). Amounts are not compared, so a debt that
// grew after being paid stays hidden until the bills change the edge itself.
func ReconcileSettlements(txns []GroupTransaction, records []models.Settlement, userID string) Reconciliation {
	paid := make(map[string]bool)
	for _, s := range records {
		if s.Status == models.SettlementPaid && s.GroupID != "" {
			paid[s.PayerID+"-"+s.PayeeID+"-"+s.GroupID] = true
		}
	}

	var r Reconciliation
	for _, t := range txns {
		if paid[t.Key()] {
			continue
		}
		switch userID {
		case t.From:
			r.Debts = append(r.Debts, t)
		case t.To:
			r.Credits = append(r.Credits, t)
		}
	}

	for _, s := range records {
		if s.Involves(userID) {
			r.AllSettlements = append(r.AllSettlements, s)
		}
	}
	return r
}

// CheckNewSettlement validates a settlement request before it is recorded.
// pending holds existing Pending settlements for the same ordered pair.
func CheckNewSettlement(payerID, payeeID string, amount decimal.Decimal, pending []models.Settlement) error {
	if payerID == payeeID {
		return fmt.Errorf("%w: payer and payee cannot be the same", apperrors.ErrValidation)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: settlement amount must be positive", apperrors.ErrValidation)
	}
	for _, s := range pending {
		if s.PayerID == payerID && s.PayeeID == payeeID && s.Status == models.SettlementPending {
			return fmt.Errorf("%w: a settlement request to this user is already pending", apperrors.ErrConflict)
		}
	}
	return nil
}

// TransitionSettlement moves a Pending settlement to Paid or Rejected on
// behalf of actorID and returns the updated record.
func TransitionSettlement(record models.Settlement, actorID string, status models.SettlementStatus, now int64) (models.Settlement, error) {
	if record.PayeeID != actorID {
		return record, fmt.Errorf("%w: only the payee can update this settlement", apperrors.ErrAuthorization)
	}
	if record.Status != models.SettlementPending {
		return record, fmt.Errorf("%w: settlement already marked as %s", apperrors.ErrInvalidState, record.Status)
	}
	if !status.IsTerminal() {
		return record, fmt.Errorf("%w: unsupported settlement status %q", apperrors.ErrValidation, status)
	}
	record.Status = status
	record.UpdatedAt = now
	return record, nil
}
