package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/models"
)

const settlementColumns = `id, group_id, group_name, payer_id, payee_id, amount, status, created_at, updated_at`

// CreateSettlement persists a new settlement to the database.
// The partial unique index on pending (payer, payee) pairs rejects a second
// pending request for the same direction.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.UpdatedAt == 0 {
		settlement.UpdatedAt = settlement.CreatedAt
	}
	if settlement.Status == "" {
		settlement.Status = models.SettlementPending
	}

	var groupID any
	if settlement.GroupID != "" {
		groupID = settlement.GroupID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, groupID, settlement.GroupName, settlement.PayerID, settlement.PayeeID,
		settlement.Amount, string(settlement.Status), settlement.CreatedAt, settlement.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: a settlement request to this user is already pending", apperrors.ErrConflict)
	}
	if err != nil && isForeignKeyViolation(err) {
		return fmt.Errorf("%w: group %s", apperrors.ErrNotFound, settlement.GroupID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := scanSettlement(s.db.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`, settlementID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: settlement %s", apperrors.ErrNotFound, settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListPendingSettlements retrieves pending settlements for one direction.
func (s *SQLiteStore) ListPendingSettlements(ctx context.Context, payerID, payeeID string) ([]models.Settlement, error) {
	return s.listSettlements(ctx,
		`WHERE payer_id = ? AND payee_id = ? AND status = 'pending' ORDER BY created_at DESC, id`,
		payerID, payeeID)
}

// ListSettlementsByUser retrieves all settlements where the user is payer or payee.
func (s *SQLiteStore) ListSettlementsByUser(ctx context.Context, userID string) ([]models.Settlement, error) {
	return s.listSettlements(ctx,
		`WHERE payer_id = ? OR payee_id = ? ORDER BY created_at DESC, id`,
		userID, userID)
}

// ListSettlementHistory retrieves decided settlements involving the user.
func (s *SQLiteStore) ListSettlementHistory(ctx context.Context, userID string) ([]models.Settlement, error) {
	return s.listSettlements(ctx,
		`WHERE (payer_id = ? OR payee_id = ?) AND status IN ('paid', 'rejected')
		 ORDER BY updated_at DESC, id`,
		userID, userID)
}

// UpdateSettlementStatus writes settlement.Status and UpdatedAt, but only if
// the stored status still equals from.
func (s *SQLiteStore) UpdateSettlementStatus(ctx context.Context, settlement *models.Settlement, from models.SettlementStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE settlements SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(settlement.Status), settlement.UpdatedAt, settlement.ID, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		current, err := s.GetSettlement(ctx, settlement.ID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: settlement already marked as %s", apperrors.ErrInvalidState, current.Status)
	}
	return nil
}

func (s *SQLiteStore) listSettlements(ctx context.Context, clause string, args ...any) ([]models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+settlementColumns+` FROM settlements `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, *settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var groupID sql.NullString
	var status string

	err := row.Scan(&settlement.ID, &groupID, &settlement.GroupName, &settlement.PayerID, &settlement.PayeeID,
		&settlement.Amount, &status, &settlement.CreatedAt, &settlement.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if groupID.Valid {
		settlement.GroupID = groupID.String
	}
	settlement.Status = models.SettlementStatus(status)
	return settlement, nil
}
