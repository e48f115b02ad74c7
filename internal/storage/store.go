// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// UserStore persists registered users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail and GetUserByID return nil and no error when the user
	// does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// SearchUsers matches query against display names and emails, skipping
	// excludeID.
	SearchUsers(ctx context.Context, query, excludeID string, limit int) ([]*models.User, error)

	// UpdateUser fails with apperrors.ErrConflict if the new email is taken.
	UpdateUser(ctx context.Context, user *models.User) error
}

// GroupStore persists groups and their membership.
type GroupStore interface {
	// CreateGroup persists the group and makes its creator the first member.
	// ID and CreatedAt are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group with members and guests populated, or an
	// error wrapping apperrors.ErrNotFound.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember returns every group userID is a registered member of,
	// newest first.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// DeleteGroup removes the group, its bills and memberships.
	DeleteGroup(ctx context.Context, groupID string) error

	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error

	// AddGuest persists a guest participant; its ID is populated by the store.
	AddGuest(ctx context.Context, groupID string, guest *models.Participant) error
}

// BillStore persists bills and their splits.
type BillStore interface {
	// CreateBill persists the bill and, in the same transaction, adds
	// joinMembers to the bill's group.
	CreateBill(ctx context.Context, bill *models.Bill, joinMembers []string) error

	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// ListBillsByGroup returns the group's bills with splits, newest first.
	ListBillsByGroup(ctx context.Context, groupID string) ([]models.Bill, error)

	DeleteBill(ctx context.Context, billID string) error

	// RemoveMember persists the rewritten bills and removes memberID from the
	// group's members and guests. Either everything is applied or nothing is.
	RemoveMember(ctx context.Context, groupID, memberID string, updated []models.Bill) error
}

// SettlementStore persists settlement requests.
type SettlementStore interface {
	// CreateSettlement fails with apperrors.ErrConflict if a pending
	// settlement already exists for the same payer and payee.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListPendingSettlements returns pending settlements from payerID to payeeID.
	ListPendingSettlements(ctx context.Context, payerID, payeeID string) ([]models.Settlement, error)

	// ListSettlementsByUser returns every settlement involving userID,
	// newest first.
	ListSettlementsByUser(ctx context.Context, userID string) ([]models.Settlement, error)

	// ListSettlementHistory returns paid and rejected settlements involving
	// userID, most recently updated first.
	ListSettlementHistory(ctx context.Context, userID string) ([]models.Settlement, error)

	// UpdateSettlementStatus moves a settlement out of the from status. It
	// fails with apperrors.ErrInvalidState if the stored status is not from.
	UpdateSettlementStatus(ctx context.Context, settlement *models.Settlement, from models.SettlementStatus) error
}

// Store defines the full persistence surface used by the services.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	BillStore
	SettlementStore

	// Close releases any resources held by the store.
	Close() error
}
