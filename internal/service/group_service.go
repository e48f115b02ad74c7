package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	deps Deps
}

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService.
func NewGroupService(deps Deps) *GroupService {
	return &GroupService{deps: deps.withDefaults()}
}

// CreateGroup creates a group owned by the caller. Additional registered
// members may be listed by user ID.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
		"user_id", userID,
	)

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	if len(req.Msg.MemberIDs) > 0 {
		users, err := s.deps.Store.GetUsersByIDs(ctx, req.Msg.MemberIDs)
		if err != nil {
			return nil, toConnectError(err)
		}
		for _, id := range req.Msg.MemberIDs {
			if users[id] == nil {
				return nil, toConnectError(fmt.Errorf("%w: user %s", apperrors.ErrNotFound, id))
			}
		}
	}

	group := &models.Group{
		Name:      strings.TrimSpace(req.Msg.Name),
		CreatedBy: userID,
	}
	if err := s.deps.Store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	if len(req.Msg.MemberIDs) > 0 {
		if err := s.deps.Store.AddGroupMembers(ctx, group.ID, req.Msg.MemberIDs); err != nil {
			slog.Error("CreateGroup failed to add members", "group_id", group.ID, "error", err)
			return nil, toConnectError(err)
		}
		if group, err = s.deps.Store.GetGroup(ctx, group.ID); err != nil {
			return nil, toConnectError(err)
		}
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	group, err := s.memberGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.deps.Store.ListGroupsByMember(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// DeleteGroup removes a group with all of its bills. Only the creator may
// delete it.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID, "user_id", userID)

	unlock := s.deps.Locks.Lock(groupKey(req.Msg.GroupID))
	defer unlock()

	group, err := s.deps.Store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if group.CreatedBy != userID {
		return nil, toConnectError(fmt.Errorf("%w: only the group creator can delete the group", apperrors.ErrAuthorization))
	}

	if err := s.deps.Store.DeleteGroup(ctx, group.ID); err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	s.deps.Notifier.Notify(notify.Event{Kind: notify.KindBalancesChanged, GroupID: group.ID}, group.MemberIDs()...)

	slog.Info("Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember adds a registered user, found by ID or email, to the group.
// Any member may invite.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "user_id", userID)

	group, err := s.memberGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	var user *models.User
	if req.Msg.UserID != "" {
		user, err = s.deps.Store.GetUserByID(ctx, req.Msg.UserID)
	} else {
		user, err = s.deps.Store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Msg.Email)))
	}
	if err != nil {
		return nil, toConnectError(err)
	}
	if user == nil {
		return nil, toConnectError(fmt.Errorf("%w: user not found", apperrors.ErrNotFound))
	}
	if group.HasMember(user.ID) {
		return nil, toConnectError(fmt.Errorf("%w: user is already a member", apperrors.ErrConflict))
	}

	if err := s.deps.Store.AddGroupMembers(ctx, group.ID, []string{user.ID}); err != nil {
		return nil, toConnectError(err)
	}
	if group, err = s.deps.Store.GetGroup(ctx, group.ID); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Member added", "group_id", group.ID, "member_id", user.ID)
	return connect.NewResponse(&api.AddMemberResponse{Group: toAPIGroup(group)}), nil
}

// AddGuest adds a participant without an account to the group.
func (s *GroupService) AddGuest(ctx context.Context, req *connect.Request[api.AddGuestRequest]) (*connect.Response[api.AddGuestResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	group, err := s.memberGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	guest := &models.Participant{DisplayName: strings.TrimSpace(req.Msg.Name)}
	if err := s.deps.Store.AddGuest(ctx, group.ID, guest); err != nil {
		return nil, toConnectError(err)
	}
	if group, err = s.deps.Store.GetGroup(ctx, group.ID); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Guest added", "group_id", group.ID, "guest_id", guest.ID)
	return connect.NewResponse(&api.AddGuestResponse{
		Group: toAPIGroup(group),
		Guest: &api.Participant{ID: guest.ID, DisplayName: guest.DisplayName},
	}), nil
}

// RemoveMember removes a member or guest and rewrites every bill they had a
// share in, according to the requested resolution.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("RemoveMember request received",
		"group_id", req.Msg.GroupID,
		"participant_id", req.Msg.ParticipantID,
		"resolution", req.Msg.Resolution,
	)

	policy, err := calculator.ParseResolution(req.Msg.Resolution)
	if err != nil {
		return nil, toConnectError(err)
	}

	unlock := s.deps.Locks.Lock(groupKey(req.Msg.GroupID))
	defer unlock()

	group, err := s.deps.Store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := calculator.CheckMemberRemoval(group, userID, req.Msg.ParticipantID); err != nil {
		return nil, toConnectError(err)
	}

	bills, err := s.deps.Store.ListBillsByGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	updated, err := calculator.ResolveMemberRemoval(bills, req.Msg.ParticipantID, policy)
	if err != nil {
		return nil, toConnectError(err)
	}

	if err := s.deps.Store.RemoveMember(ctx, group.ID, req.Msg.ParticipantID, updated); err != nil {
		slog.Error("RemoveMember failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.deps.Metrics.MemberRemoved(string(policy))

	// The removed participant still gets the event so their dashboard drops
	// the group.
	s.deps.Notifier.Notify(notify.Event{Kind: notify.KindBalancesChanged, GroupID: group.ID},
		append(group.MemberIDs(), req.Msg.ParticipantID)...)

	if group, err = s.deps.Store.GetGroup(ctx, group.ID); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Member removed",
		"group_id", group.ID,
		"participant_id", req.Msg.ParticipantID,
		"bills_updated", len(updated),
	)
	return connect.NewResponse(&api.RemoveMemberResponse{
		Group:        toAPIGroup(group),
		UpdatedBills: toAPIBills(updated),
	}), nil
}

// GetGroupBalances calculates balances across all bills in a group.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	groupID := req.Msg.GroupID
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	group, err := s.memberGroup(ctx, groupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	bills, err := s.deps.Store.ListBillsByGroup(ctx, groupID)
	if err != nil {
		slog.Error("GetGroupBalances failed - could not list bills", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	balances := calculator.AggregateBalances(bills, group.Roster())
	debts := calculator.SimplifyDebts(balances)
	s.deps.Metrics.ObserveSimplified(len(debts))

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"bills_count", len(bills),
		"members_count", len(balances),
		"debts_count", len(debts),
	)

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		MemberBalances: toAPIBalances(balances, participantNames(group, bills)),
		Debts:          toAPIDebts(debts),
	}), nil
}

// memberGroup loads a group and checks that userID is a registered member.
func (s *GroupService) memberGroup(ctx context.Context, groupID, userID string) (*models.Group, error) {
	return loadMemberGroup(ctx, s.deps, groupID, userID)
}

func loadMemberGroup(ctx context.Context, deps Deps, groupID, userID string) (*models.Group, error) {
	group, err := deps.Store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, fmt.Errorf("%w: not a member of this group", apperrors.ErrAuthorization)
	}
	return group, nil
}
