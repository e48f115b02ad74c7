package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/pkg/api"
)

func subscribe(t *testing.T, env *testEnv, u testUser) <-chan notify.Event {
	t.Helper()
	events, cancel := env.hub.Subscribe(u.ID)
	t.Cleanup(cancel)
	return events
}

func requireEvent(t *testing.T, events <-chan notify.Event, kind notify.Kind, groupID string) notify.Event {
	t.Helper()
	select {
	case ev := <-events:
		require.Equal(t, kind, ev.Kind)
		require.Equal(t, groupID, ev.GroupID)
		return ev
	case <-time.After(time.Second):
		t.Fatalf("no %s event for group %s", kind, groupID)
		return notify.Event{}
	}
}

func requireNoEvent(t *testing.T, events <-chan notify.Event) {
	t.Helper()
	select {
	case ev := <-events:
		t.Fatalf("unexpected %s event for group %s", ev.Kind, ev.GroupID)
	default:
	}
}

func TestMutationsNotifyParticipants(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")
	outsider := env.register(t, "eve@example.com", "Eve")
	group := env.createGroup(t, alice, "Trip", bob, carol)

	env.createBill(t, alice, group.ID, "90", share(alice.ID, "30"), share(bob.ID, "30"), share(carol.ID, "30"))
	taxi := env.createBill(t, bob, group.ID, "30", share(alice.ID, "15"), share(bob.ID, "15"))

	aliceEvents := subscribe(t, env, alice)
	bobEvents := subscribe(t, env, bob)
	carolEvents := subscribe(t, env, carol)
	outsiderEvents := subscribe(t, env, outsider)

	t.Run("delete bill", func(t *testing.T) {
		_, err := env.bills.DeleteBill(ctx, authed(alice, &api.DeleteBillRequest{BillID: taxi.ID}))
		require.NoError(t, err)

		for _, events := range []<-chan notify.Event{aliceEvents, bobEvents, carolEvents} {
			requireEvent(t, events, notify.KindBalancesChanged, group.ID)
		}
		requireNoEvent(t, outsiderEvents)
	})

	t.Run("remove member includes the removed participant", func(t *testing.T) {
		_, err := env.groups.RemoveMember(ctx, authed(alice, &api.RemoveMemberRequest{
			GroupID:       group.ID,
			ParticipantID: carol.ID,
			Resolution:    "resplit",
		}))
		require.NoError(t, err)

		for _, events := range []<-chan notify.Event{aliceEvents, bobEvents, carolEvents} {
			requireEvent(t, events, notify.KindBalancesChanged, group.ID)
		}
		requireNoEvent(t, outsiderEvents)
	})

	var settlementID string
	t.Run("create settlement", func(t *testing.T) {
		resp, err := env.settlements.CreateSettlement(ctx, authed(bob, &api.CreateSettlementRequest{
			PayeeID: alice.ID,
			GroupID: group.ID,
			Amount:  dec("45"),
		}))
		require.NoError(t, err)
		settlementID = resp.Msg.Settlement.ID

		for _, events := range []<-chan notify.Event{aliceEvents, bobEvents} {
			ev := requireEvent(t, events, notify.KindSettlementUpdated, group.ID)
			require.Equal(t, settlementID, ev.SettlementID)
			require.Equal(t, "pending", ev.Status)
		}
		requireNoEvent(t, carolEvents)
	})

	t.Run("update settlement status", func(t *testing.T) {
		_, err := env.settlements.UpdateSettlementStatus(ctx, authed(alice, &api.UpdateSettlementStatusRequest{
			SettlementID: settlementID,
			Status:       "paid",
		}))
		require.NoError(t, err)

		for _, events := range []<-chan notify.Event{aliceEvents, bobEvents} {
			ev := requireEvent(t, events, notify.KindSettlementUpdated, group.ID)
			require.Equal(t, settlementID, ev.SettlementID)
			require.Equal(t, "paid", ev.Status)
		}
		requireNoEvent(t, carolEvents)
	})

	t.Run("delete group", func(t *testing.T) {
		_, err := env.groups.DeleteGroup(ctx, authed(alice, &api.DeleteGroupRequest{GroupID: group.ID}))
		require.NoError(t, err)

		for _, events := range []<-chan notify.Event{aliceEvents, bobEvents} {
			requireEvent(t, events, notify.KindBalancesChanged, group.ID)
		}
		requireNoEvent(t, carolEvents)
		requireNoEvent(t, outsiderEvents)
	})
}

func TestRejectedMutationsDoNotNotify(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	group := env.createGroup(t, alice, "Trip", bob)
	bill := env.createBill(t, alice, group.ID, "20", share(alice.ID, "10"), share(bob.ID, "10"))

	aliceEvents := subscribe(t, env, alice)

	// Only the creator or the payer may delete.
	_, err := env.bills.DeleteBill(ctx, authed(bob, &api.DeleteBillRequest{BillID: bill.ID}))
	require.Error(t, err)
	_, err = env.groups.DeleteGroup(ctx, authed(bob, &api.DeleteGroupRequest{GroupID: group.ID}))
	require.Error(t, err)

	requireNoEvent(t, aliceEvents)
}
