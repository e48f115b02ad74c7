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

// CreateBill persists a new bill with its splits and adds joinMembers to the
// bill's group in the same transaction.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill, joinMembers []string) error {
	// Generate IDs if not set
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO bills (id, group_id, description, amount, paid_by, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			bill.ID, bill.GroupID, bill.Description, bill.Amount, bill.PaidBy, bill.CreatedAt,
		)
		if err != nil && isForeignKeyViolation(err) {
			return fmt.Errorf("%w: group %s", apperrors.ErrNotFound, bill.GroupID)
		}
		if err != nil {
			return fmt.Errorf("failed to insert bill: %w", err)
		}

		if err := insertSplits(ctx, tx, bill); err != nil {
			return err
		}
		return addMembers(ctx, tx, bill.GroupID, joinMembers, bill.CreatedAt)
	})
}

// GetBill retrieves a bill by ID, including its splits.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, description, amount, paid_by, created_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &bill.GroupID, &bill.Description, &bill.Amount, &bill.PaidBy, &bill.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: bill %s", apperrors.ErrNotFound, billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	splits, err := s.listSplits(ctx, s.db, "s.bill_id = ?", billID)
	if err != nil {
		return nil, err
	}
	bill.Splits = splits[bill.ID]
	return bill, nil
}

// ListBillsByGroup retrieves all bills in a group with their splits, newest first.
func (s *SQLiteStore) ListBillsByGroup(ctx context.Context, groupID string) ([]models.Bill, error) {
	return s.listBillsByGroup(ctx, s.db, groupID)
}

func (s *SQLiteStore) listBillsByGroup(ctx context.Context, q queryer, groupID string) ([]models.Bill, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, group_id, description, amount, paid_by, created_at
		 FROM bills WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills by group: %w", err)
	}

	var bills []models.Bill
	for rows.Next() {
		var bill models.Bill
		if err := rows.Scan(&bill.ID, &bill.GroupID, &bill.Description, &bill.Amount, &bill.PaidBy, &bill.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	splits, err := s.listSplits(ctx, q, "b.group_id = ?", groupID)
	if err != nil {
		return nil, err
	}
	for i := range bills {
		bills[i].Splits = splits[bills[i].ID]
	}
	return bills, nil
}

// DeleteBill removes a bill and its splits.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: bill %s", apperrors.ErrNotFound, billID)
	}
	return nil
}

// RemoveMember rewrites the given bills and drops memberID from the group,
// all in one transaction.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, memberID string, updated []models.Bill) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range updated {
			bill := &updated[i]
			if bill.GroupID != groupID {
				return fmt.Errorf("bill %s does not belong to group %s", bill.ID, groupID)
			}

			res, err := tx.ExecContext(ctx, "UPDATE bills SET amount = ? WHERE id = ?", bill.Amount, bill.ID)
			if err != nil {
				return fmt.Errorf("failed to update bill %s: %w", bill.ID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("%w: bill %s", apperrors.ErrNotFound, bill.ID)
			}

			if _, err := tx.ExecContext(ctx, "DELETE FROM bill_splits WHERE bill_id = ?", bill.ID); err != nil {
				return fmt.Errorf("failed to clear splits for bill %s: %w", bill.ID, err)
			}
			if err := insertSplits(ctx, tx, bill); err != nil {
				return err
			}
		}

		memberRes, err := tx.ExecContext(ctx,
			"DELETE FROM group_members WHERE group_id = ? AND user_id = ?", groupID, memberID)
		if err != nil {
			return fmt.Errorf("failed to remove group member: %w", err)
		}
		guestRes, err := tx.ExecContext(ctx,
			"DELETE FROM group_guests WHERE group_id = ? AND id = ?", groupID, memberID)
		if err != nil {
			return fmt.Errorf("failed to remove guest: %w", err)
		}

		members, _ := memberRes.RowsAffected()
		guests, _ := guestRes.RowsAffected()
		if members+guests == 0 {
			return fmt.Errorf("%w: participant %s is not in group %s", apperrors.ErrNotFound, memberID, groupID)
		}
		return nil
	})
}

func insertSplits(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	for i, split := range bill.Splits {
		if split.Amount.IsZero() {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bill_splits (bill_id, position, participant_id, participant_name, is_registered, amount)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			bill.ID, i, split.ParticipantID, split.ParticipantName, split.IsRegistered, split.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// listSplits returns splits grouped by bill ID for the bills matching where.
func (s *SQLiteStore) listSplits(ctx context.Context, q queryer, where string, args ...any) (map[string][]models.Split, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT s.bill_id, s.participant_id, s.participant_name, s.is_registered, s.amount
		 FROM bill_splits s JOIN bills b ON b.id = s.bill_id
		 WHERE `+where+`
		 ORDER BY s.bill_id, s.position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	splits := make(map[string][]models.Split)
	for rows.Next() {
		var billID string
		var split models.Split
		if err := rows.Scan(&billID, &split.ParticipantID, &split.ParticipantName, &split.IsRegistered, &split.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits[billID] = append(splits[billID], split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}
