package api

import "github.com/shopspring/decimal"

// AuthService

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
	Password    string `json:"password" validate:"required"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// UpdateProfileRequest changes the caller's display name, email or both.
// Empty fields are left as they are.
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required_without=Email,max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// UpdateProfileResponse carries a fresh token with the updated claims.
type UpdateProfileResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// SearchUsersRequest finds registered users to invite. The caller is never
// returned.
type SearchUsersRequest struct {
	Query string `json:"query" validate:"max=100"`
}

type SearchUsersResponse struct {
	Users []*User `json:"users"`
}

// GroupService

type CreateGroupRequest struct {
	Name      string   `json:"name" validate:"required,max=100"`
	MemberIDs []string `json:"memberIds" validate:"dive,required"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type DeleteGroupResponse struct{}

// AddMemberRequest identifies the new member by user ID or by email.
type AddMemberRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	UserID  string `json:"userId" validate:"required_without=Email"`
	Email   string `json:"email" validate:"omitempty,email"`
}

type AddMemberResponse struct {
	Group *Group `json:"group"`
}

type AddGuestRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	Name    string `json:"name" validate:"required,max=100"`
}

type AddGuestResponse struct {
	Group *Group       `json:"group"`
	Guest *Participant `json:"guest"`
}

type RemoveMemberRequest struct {
	GroupID       string `json:"groupId" validate:"required"`
	ParticipantID string `json:"participantId" validate:"required"`
	Resolution    string `json:"resolution" validate:"required,oneof=resplit absorb"`
}

type RemoveMemberResponse struct {
	Group        *Group  `json:"group"`
	UpdatedBills []*Bill `json:"updatedBills"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GetGroupBalancesResponse struct {
	MemberBalances []*MemberBalance `json:"memberBalances"`
	Debts          []*DebtEdge      `json:"debts"`
}

// BillService

// SplitInput declares one participant's share. Amount is read in custom
// mode, Percentage in percentage mode; equal mode reads neither.
type SplitInput struct {
	ParticipantID string          `json:"participantId" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Percentage    decimal.Decimal `json:"percentage"`
}

// ItemInput is a bill line shared equally by ParticipantIDs.
type ItemInput struct {
	Description    string          `json:"description" validate:"required,max=200"`
	Amount         decimal.Decimal `json:"amount"`
	ParticipantIDs []string        `json:"participantIds" validate:"required,min=1,dive,required"`
}

// CreateBillRequest defaults PaidBy to the caller and SplitMode to "custom".
// Itemized bills declare Items instead of Splits.
type CreateBillRequest struct {
	GroupID     string          `json:"groupId" validate:"required"`
	Description string          `json:"description" validate:"required,max=200"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paidBy"`
	SplitMode   string          `json:"splitMode" validate:"omitempty,oneof=custom equal percentage itemized"`
	Splits      []*SplitInput   `json:"splits" validate:"omitempty,dive,required"`
	Items       []*ItemInput    `json:"items" validate:"omitempty,dive,required"`
}

type CreateBillResponse struct {
	Bill *Bill `json:"bill"`
}

type GetBillRequest struct {
	BillID string `json:"billId" validate:"required"`
}

type GetBillResponse struct {
	Bill *Bill `json:"bill"`
}

type ListBillsByGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type ListBillsByGroupResponse struct {
	Bills []*Bill `json:"bills"`
}

type DeleteBillRequest struct {
	BillID string `json:"billId" validate:"required"`
}

type DeleteBillResponse struct{}

// SettlementService

type GetOverallSettlementsRequest struct{}

type GetOverallSettlementsResponse struct {
	Debts          []*GroupTransaction `json:"debts"`
	Credits        []*GroupTransaction `json:"credits"`
	AllSettlements []*Settlement       `json:"allSettlements"`
}

// CreateSettlementRequest records that the caller is paying PayeeID.
type CreateSettlementRequest struct {
	PayeeID string          `json:"payeeId" validate:"required"`
	GroupID string          `json:"groupId" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

type CreateSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type UpdateSettlementStatusRequest struct {
	SettlementID string `json:"settlementId" validate:"required"`
	Status       string `json:"status" validate:"required"`
}

type UpdateSettlementStatusResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type GetSettlementHistoryRequest struct{}

type GetSettlementHistoryResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type WatchUpdatesRequest struct{}
