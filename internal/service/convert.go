package service

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIParticipants(ps []models.Participant) []*api.Participant {
	out := make([]*api.Participant, len(ps))
	for i, p := range ps {
		out[i] = &api.Participant{ID: p.ID, DisplayName: p.DisplayName, IsRegistered: p.IsRegistered}
	}
	return out
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy,
		Members:   toAPIParticipants(g.Members),
		Guests:    toAPIParticipants(g.Guests),
		CreatedAt: g.CreatedAt,
	}
}

func toAPIBill(b *models.Bill) *api.Bill {
	splits := make([]*api.Split, len(b.Splits))
	for i, s := range b.Splits {
		splits[i] = &api.Split{
			ParticipantID:   s.ParticipantID,
			ParticipantName: s.ParticipantName,
			IsRegistered:    s.IsRegistered,
			Amount:          s.Amount,
		}
	}
	return &api.Bill{
		ID:          b.ID,
		GroupID:     b.GroupID,
		Description: b.Description,
		Amount:      b.Amount,
		PaidBy:      b.PaidBy,
		Splits:      splits,
		CreatedAt:   b.CreatedAt,
	}
}

func toAPIBills(bills []models.Bill) []*api.Bill {
	out := make([]*api.Bill, len(bills))
	for i := range bills {
		out[i] = toAPIBill(&bills[i])
	}
	return out
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:        s.ID,
		GroupID:   s.GroupID,
		GroupName: s.GroupName,
		PayerID:   s.PayerID,
		PayeeID:   s.PayeeID,
		Amount:    s.Amount,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toAPISettlements(settlements []models.Settlement) []*api.Settlement {
	out := make([]*api.Settlement, len(settlements))
	for i := range settlements {
		out[i] = toAPISettlement(&settlements[i])
	}
	return out
}

func toAPIBalances(balances []calculator.MemberBalance, names map[string]string) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = &api.MemberBalance{
			ParticipantID: b.ParticipantID,
			DisplayName:   names[b.ParticipantID],
			NetBalance:    b.NetBalance,
			TotalPaid:     b.TotalPaid,
			TotalOwed:     b.TotalOwed,
		}
	}
	return out
}

func toAPIDebts(edges []calculator.DebtEdge) []*api.DebtEdge {
	out := make([]*api.DebtEdge, len(edges))
	for i, e := range edges {
		out[i] = &api.DebtEdge{From: e.From, To: e.To, Amount: e.Amount}
	}
	return out
}

func toAPITransactions(txns []calculator.GroupTransaction, names map[string]string) []*api.GroupTransaction {
	out := make([]*api.GroupTransaction, len(txns))
	for i, t := range txns {
		out[i] = &api.GroupTransaction{
			ID:        t.Key(),
			From:      t.From,
			FromName:  displayName(names, t.From),
			To:        t.To,
			ToName:    displayName(names, t.To),
			Amount:    t.Amount,
			GroupID:   t.GroupID,
			GroupName: t.GroupName,
		}
	}
	return out
}

func toAPIEvent(e notify.Event) *api.Event {
	return &api.Event{
		Kind:         string(e.Kind),
		GroupID:      e.GroupID,
		SettlementID: e.SettlementID,
		Status:       e.Status,
		At:           e.At,
	}
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "Unknown"
}

// participantNames maps every participant seen in the group or its bills to
// a display name. Roster names win over bill snapshots.
func participantNames(group *models.Group, bills []models.Bill) map[string]string {
	names := make(map[string]string)
	for _, b := range bills {
		for _, s := range b.Splits {
			names[s.ParticipantID] = s.ParticipantName
		}
	}
	for _, p := range group.Roster() {
		names[p.ID] = p.DisplayName
	}
	return names
}
