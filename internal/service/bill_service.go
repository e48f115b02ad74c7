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

// BillService implements the Connect BillService.
type BillService struct {
	deps Deps
}

var _ apiconnect.BillServiceHandler = (*BillService)(nil)

// NewBillService creates a new BillService.
func NewBillService(deps Deps) *BillService {
	return &BillService{deps: deps.withDefaults()}
}

// CreateBill records an expense in a group. The payer defaults to the
// caller. A registered payer or split participant who is not yet in the
// group joins it together with the bill.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateBill request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount.String(),
		"split_mode", req.Msg.SplitMode,
		"splits", len(req.Msg.Splits),
		"user_id", userID,
	)

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	payerID := req.Msg.PaidBy
	if payerID == "" {
		payerID = userID
	}

	unlock := s.deps.Locks.Lock(groupKey(req.Msg.GroupID))
	defer unlock()

	group, err := loadMemberGroup(ctx, s.deps, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	raw, err := rawSplits(req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}

	roster, joining, err := s.extendedRoster(ctx, group, payerID, raw)
	if err != nil {
		return nil, toConnectError(err)
	}

	splits, err := calculator.BuildBillSplits(req.Msg.Amount, raw, roster)
	if err != nil {
		slog.Warn("CreateBill rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	bill := &models.Bill{
		GroupID:     group.ID,
		Description: strings.TrimSpace(req.Msg.Description),
		Amount:      req.Msg.Amount,
		PaidBy:      payerID,
		Splits:      splits,
	}
	if err := s.deps.Store.CreateBill(ctx, bill, joining); err != nil {
		slog.Error("CreateBill failed", "error", err)
		return nil, toConnectError(err)
	}
	s.deps.Metrics.BillCreated()

	s.deps.Notifier.Notify(notify.Event{Kind: notify.KindBalancesChanged, GroupID: group.ID},
		append(group.MemberIDs(), joining...)...)

	slog.Info("Bill created",
		"bill_id", bill.ID,
		"group_id", group.ID,
		"joined_members", len(joining),
	)
	return connect.NewResponse(&api.CreateBillResponse{Bill: toAPIBill(bill)}), nil
}

// extendedRoster returns the group roster plus any registered users among
// the payer and split participants who are not yet members, and the IDs of
// those users.
func (s *BillService) extendedRoster(ctx context.Context, group *models.Group, payerID string, raw []calculator.RawSplit) ([]models.Participant, []string, error) {
	roster := group.Roster()
	known := make(map[string]bool, len(roster))
	for _, p := range roster {
		known[p.ID] = true
	}
	if group.HasGuest(payerID) {
		return nil, nil, fmt.Errorf("%w: the payer must be a registered user", apperrors.ErrValidation)
	}

	var candidates []string
	seen := make(map[string]bool)
	for _, id := range append([]string{payerID}, splitIDs(raw)...) {
		if !known[id] && !seen[id] {
			seen[id] = true
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return roster, nil, nil
	}

	users, err := s.deps.Store.GetUsersByIDs(ctx, candidates)
	if err != nil {
		return nil, nil, err
	}

	var joining []string
	for _, id := range candidates {
		user, ok := users[id]
		if !ok {
			if id == payerID {
				return nil, nil, fmt.Errorf("%w: payer %s", apperrors.ErrNotFound, id)
			}
			// Left for BuildBillSplits to reject as an unknown participant.
			continue
		}
		roster = append(roster, user.Participant())
		joining = append(joining, id)
	}
	return roster, joining, nil
}

// rawSplits turns the request's declared shares into amounts according to
// its split mode.
func rawSplits(msg *api.CreateBillRequest) ([]calculator.RawSplit, error) {
	mode, err := calculator.ParseSplitMode(msg.SplitMode)
	if err != nil {
		return nil, err
	}

	switch mode {
	case calculator.SplitModeEqual:
		ids := make([]string, len(msg.Splits))
		for i, sp := range msg.Splits {
			ids[i] = sp.ParticipantID
		}
		return calculator.EqualShares(msg.Amount, ids)
	case calculator.SplitModePercentage:
		shares := make([]calculator.PercentShare, len(msg.Splits))
		for i, sp := range msg.Splits {
			shares[i] = calculator.PercentShare{ParticipantID: sp.ParticipantID, Percentage: sp.Percentage}
		}
		return calculator.PercentageShares(msg.Amount, shares)
	case calculator.SplitModeItemized:
		items := make([]calculator.Item, len(msg.Items))
		for i, it := range msg.Items {
			items[i] = calculator.Item{Description: it.Description, Amount: it.Amount, AssignedTo: it.ParticipantIDs}
		}
		return calculator.ItemizedShares(msg.Amount, items)
	default:
		raw := make([]calculator.RawSplit, len(msg.Splits))
		for i, sp := range msg.Splits {
			raw[i] = calculator.RawSplit{ParticipantID: sp.ParticipantID, Amount: sp.Amount}
		}
		return raw, nil
	}
}

func splitIDs(raw []calculator.RawSplit) []string {
	ids := make([]string, len(raw))
	for i, r := range raw {
		ids[i] = r.ParticipantID
	}
	return ids
}

// GetBill retrieves a bill from a group the caller belongs to.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	bill, err := s.deps.Store.GetBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := loadMemberGroup(ctx, s.deps, bill.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetBillResponse{Bill: toAPIBill(bill)}), nil
}

// ListBillsByGroup retrieves a group's bills, newest first.
func (s *BillService) ListBillsByGroup(ctx context.Context, req *connect.Request[api.ListBillsByGroupRequest]) (*connect.Response[api.ListBillsByGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	if _, err := loadMemberGroup(ctx, s.deps, req.Msg.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}

	bills, err := s.deps.Store.ListBillsByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListBillsByGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListBillsByGroup successful", "group_id", req.Msg.GroupID, "count", len(bills))
	return connect.NewResponse(&api.ListBillsByGroupResponse{Bills: toAPIBills(bills)}), nil
}

// DeleteBill removes a bill. Only the group creator or the payer may delete.
func (s *BillService) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("DeleteBill request received", "bill_id", req.Msg.BillID, "user_id", userID)

	bill, err := s.deps.Store.GetBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(err)
	}

	unlock := s.deps.Locks.Lock(groupKey(bill.GroupID))
	defer unlock()

	group, err := s.deps.Store.GetGroup(ctx, bill.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if group.CreatedBy != userID && bill.PaidBy != userID {
		return nil, toConnectError(fmt.Errorf("%w: not authorized to delete this bill", apperrors.ErrAuthorization))
	}

	if err := s.deps.Store.DeleteBill(ctx, bill.ID); err != nil {
		return nil, toConnectError(err)
	}
	s.deps.Metrics.BillDeleted()

	s.deps.Notifier.Notify(notify.Event{Kind: notify.KindBalancesChanged, GroupID: group.ID}, group.MemberIDs()...)

	slog.Info("Bill deleted", "bill_id", bill.ID, "group_id", group.ID)
	return connect.NewResponse(&api.DeleteBillResponse{}), nil
}
