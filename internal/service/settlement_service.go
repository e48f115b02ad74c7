package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// EventSubscribed is the first event on every WatchUpdates stream.
const EventSubscribed = "subscribed"

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	deps    Deps
	updates notify.Subscriber
}

var _ apiconnect.SettlementServiceHandler = (*SettlementService)(nil)

// NewSettlementService creates a new SettlementService. updates backs the
// WatchUpdates stream.
func NewSettlementService(deps Deps, updates notify.Subscriber) *SettlementService {
	return &SettlementService{deps: deps.withDefaults(), updates: updates}
}

// GetOverallSettlements computes the caller's debts and credits across all
// of their groups, hiding any already covered by a paid settlement.
func (s *SettlementService) GetOverallSettlements(ctx context.Context, req *connect.Request[api.GetOverallSettlementsRequest]) (*connect.Response[api.GetOverallSettlementsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetOverallSettlements request received", "user_id", userID)

	groups, err := s.deps.Store.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	var txns []calculator.GroupTransaction
	names := make(map[string]string)
	for _, group := range groups {
		bills, err := s.deps.Store.ListBillsByGroup(ctx, group.ID)
		if err != nil {
			return nil, toConnectError(err)
		}
		balances := calculator.AggregateBalances(bills, group.Roster())
		groupTxns := calculator.GroupTransactions(group.ID, group.Name, balances)
		s.deps.Metrics.ObserveSimplified(len(groupTxns))
		txns = append(txns, groupTxns...)

		for id, name := range participantNames(group, bills) {
			names[id] = name
		}
	}

	records, err := s.deps.Store.ListSettlementsByUser(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	rec := calculator.ReconcileSettlements(txns, records, userID)

	slog.Info("GetOverallSettlements successful",
		"user_id", userID,
		"groups", len(groups),
		"debts", len(rec.Debts),
		"credits", len(rec.Credits),
	)
	return connect.NewResponse(&api.GetOverallSettlementsResponse{
		Debts:          toAPITransactions(rec.Debts, names),
		Credits:        toAPITransactions(rec.Credits, names),
		AllSettlements: toAPISettlements(rec.AllSettlements),
	}), nil
}

// CreateSettlement records that the caller is paying the payee. At most one
// request per (payer, payee) pair may be pending.
func (s *SettlementService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("CreateSettlement request received",
		"payer_id", userID,
		"payee_id", req.Msg.PayeeID,
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount.String(),
	)

	unlock := s.deps.Locks.Lock(pairKey(userID, req.Msg.PayeeID))
	defer unlock()

	group, err := s.deps.Store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	pending, err := s.deps.Store.ListPendingSettlements(ctx, userID, req.Msg.PayeeID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := calculator.CheckNewSettlement(userID, req.Msg.PayeeID, req.Msg.Amount, pending); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.checkSettlementParties(ctx, group, userID, req.Msg.PayeeID); err != nil {
		return nil, toConnectError(err)
	}

	settlement := &models.Settlement{
		GroupID:   group.ID,
		GroupName: group.Name,
		PayerID:   userID,
		PayeeID:   req.Msg.PayeeID,
		Amount:    req.Msg.Amount,
		Status:    models.SettlementPending,
	}
	if err := s.deps.Store.CreateSettlement(ctx, settlement); err != nil {
		return nil, toConnectError(err)
	}
	s.deps.Metrics.SettlementStatus(string(settlement.Status))

	s.notifySettlement(settlement)

	slog.Info("Settlement created", "settlement_id", settlement.ID)
	return connect.NewResponse(&api.CreateSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// checkSettlementParties requires both parties to hold a balance in the
// group, current members or not, and the payee to be a registered user. A
// removed payer's creditors can still settle with them.
func (s *SettlementService) checkSettlementParties(ctx context.Context, group *models.Group, payerID, payeeID string) error {
	bills, err := s.deps.Store.ListBillsByGroup(ctx, group.ID)
	if err != nil {
		return err
	}
	involved := make(map[string]bool)
	for _, b := range calculator.AggregateBalances(bills, group.Roster()) {
		involved[b.ParticipantID] = true
	}

	if !involved[payerID] {
		return fmt.Errorf("%w: not a participant of this group", apperrors.ErrAuthorization)
	}
	if !involved[payeeID] {
		return fmt.Errorf("%w: payee %s has no balance in this group", apperrors.ErrValidation, payeeID)
	}

	payee, err := s.deps.Store.GetUserByID(ctx, payeeID)
	if err != nil {
		return err
	}
	if payee == nil {
		return fmt.Errorf("%w: payee must be a registered user", apperrors.ErrValidation)
	}
	return nil
}

// UpdateSettlementStatus lets the payee mark a pending settlement as paid
// or rejected.
func (s *SettlementService) UpdateSettlementStatus(ctx context.Context, req *connect.Request[api.UpdateSettlementStatusRequest]) (*connect.Response[api.UpdateSettlementStatusResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("UpdateSettlementStatus request received",
		"settlement_id", req.Msg.SettlementID,
		"status", req.Msg.Status,
		"user_id", userID,
	)

	unlock := s.deps.Locks.Lock(settlementKey(req.Msg.SettlementID))
	defer unlock()

	record, err := s.deps.Store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, toConnectError(err)
	}

	updated, err := calculator.TransitionSettlement(*record, userID, models.SettlementStatus(req.Msg.Status), time.Now().Unix())
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.deps.Store.UpdateSettlementStatus(ctx, &updated, models.SettlementPending); err != nil {
		return nil, toConnectError(err)
	}
	s.deps.Metrics.SettlementStatus(string(updated.Status))

	s.notifySettlement(&updated)

	slog.Info("Settlement updated", "settlement_id", updated.ID, "status", updated.Status)
	return connect.NewResponse(&api.UpdateSettlementStatusResponse{Settlement: toAPISettlement(&updated)}), nil
}

// GetSettlementHistory returns the caller's decided settlements.
func (s *SettlementService) GetSettlementHistory(ctx context.Context, req *connect.Request[api.GetSettlementHistoryRequest]) (*connect.Response[api.GetSettlementHistoryResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	history, err := s.deps.Store.ListSettlementHistory(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetSettlementHistoryResponse{Settlements: toAPISettlements(history)}), nil
}

// WatchUpdates streams change events for the caller until the client
// disconnects. The first message is always an EventSubscribed event.
func (s *SettlementService) WatchUpdates(ctx context.Context, req *connect.Request[api.WatchUpdatesRequest], stream *connect.ServerStream[api.Event]) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	if s.updates == nil {
		return connect.NewError(connect.CodeUnimplemented, fmt.Errorf("live updates are not enabled"))
	}

	events, cancel := s.updates.Subscribe(userID)
	defer cancel()

	if err := stream.Send(&api.Event{Kind: EventSubscribed, At: time.Now().Unix()}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := stream.Send(toAPIEvent(ev)); err != nil {
				slog.Debug("WatchUpdates send failed", "user_id", userID, "error", err)
				return err
			}
		}
	}
}

func (s *SettlementService) notifySettlement(settlement *models.Settlement) {
	s.deps.Notifier.Notify(notify.Event{
		Kind:         notify.KindSettlementUpdated,
		GroupID:      settlement.GroupID,
		SettlementID: settlement.ID,
		Status:       string(settlement.Status),
	}, settlement.PayerID, settlement.PayeeID)
}
