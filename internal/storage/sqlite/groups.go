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

// CreateGroup persists a new group with its creator as the only member.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO groups (id, name, created_by, created_at) VALUES (?, ?, ?, ?)",
			group.ID, group.Name, group.CreatedBy, group.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		return addMembers(ctx, tx, group.ID, []string{group.CreatedBy}, group.CreatedAt)
	})
	if err != nil {
		return err
	}

	members, err := s.groupMembers(ctx, s.db, group.ID)
	if err != nil {
		return err
	}
	group.Members = members
	group.Guests = nil
	return nil
}

// GetGroup retrieves a group by ID with its members and guests.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.getGroup(ctx, s.db, groupID)
}

func (s *SQLiteStore) getGroup(ctx context.Context, q queryer, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := q.QueryRowContext(ctx,
		"SELECT id, name, created_by, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if group.Members, err = s.groupMembers(ctx, q, groupID); err != nil {
		return nil, err
	}
	if group.Guests, err = s.groupGuests(ctx, q, groupID); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroupsByMember retrieves every group the user belongs to.
func (s *SQLiteStore) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := s.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// DeleteGroup removes a group; bills, splits, members and guests cascade and
// settlements keep their group name snapshot.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
	}
	return nil
}

// AddGroupMembers adds registered users to a group. Existing members are ignored.
func (s *SQLiteStore) AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
		}
		if err != nil {
			return fmt.Errorf("failed to check group existence: %w", err)
		}
		return addMembers(ctx, tx, groupID, userIDs, time.Now().Unix())
	})
}

// AddGuest adds a group-scoped participant without an account.
func (s *SQLiteStore) AddGuest(ctx context.Context, groupID string, guest *models.Participant) error {
	if guest.ID == "" {
		guest.ID = uuid.New().String()
	}
	guest.IsRegistered = false

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO group_guests (id, group_id, name, created_at) VALUES (?, ?, ?, ?)",
		guest.ID, groupID, guest.DisplayName, time.Now().Unix(),
	)
	if err != nil && isForeignKeyViolation(err) {
		return fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert guest: %w", err)
	}
	return nil
}

func addMembers(ctx context.Context, tx *sql.Tx, groupID string, userIDs []string, joinedAt int64) error {
	for _, id := range userIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
			groupID, id, joinedAt,
		)
		if err != nil && isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) groupMembers(ctx context.Context, q queryer, groupID string) ([]models.Participant, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT u.id, u.display_name FROM group_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = ?
		 ORDER BY m.joined_at, u.display_name`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []models.Participant
	for rows.Next() {
		p := models.Participant{IsRegistered: true}
		if err := rows.Scan(&p.ID, &p.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}

func (s *SQLiteStore) groupGuests(ctx context.Context, q queryer, groupID string) ([]models.Participant, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name FROM group_guests WHERE group_id = ? ORDER BY created_at, name",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group guests: %w", err)
	}
	defer rows.Close()

	var guests []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		guests = append(guests, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate guests: %w", err)
	}
	return guests, nil
}
