package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestCreateBill(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	outsider := env.register(t, "eve@example.com", "Eve")
	group := env.createGroup(t, alice, "Dinner Club", bob)

	guestResp, err := env.groups.AddGuest(ctx, authed(alice, &api.AddGuestRequest{GroupID: group.ID, Name: "Dave"}))
	require.NoError(t, err)
	dave := guestResp.Msg.Guest

	t.Run("snapshots participant names", func(t *testing.T) {
		bill := env.createBill(t, alice, group.ID, "90",
			share(alice.ID, "30"), share(bob.ID, "30"), share(dave.ID, "30"))

		assert.NotEmpty(t, bill.ID)
		assert.Equal(t, alice.ID, bill.PaidBy)
		require.Len(t, bill.Splits, 3)
		assert.Equal(t, "Dave", bill.Splits[2].ParticipantName)
		assert.False(t, bill.Splits[2].IsRegistered)
		assert.True(t, bill.Splits[1].IsRegistered)
	})

	t.Run("zero shares are dropped", func(t *testing.T) {
		bill := env.createBill(t, bob, group.ID, "20", share(alice.ID, "20"), share(bob.ID, "0"))
		require.Len(t, bill.Splits, 1)
		assert.Equal(t, alice.ID, bill.Splits[0].ParticipantID)
	})

	t.Run("sum within a cent is accepted", func(t *testing.T) {
		env.createBill(t, alice, group.ID, "10", share(alice.ID, "3.33"), share(bob.ID, "3.33"), share(dave.ID, "3.33"))
	})

	tests := []struct {
		name  string
		actor testUser
		req   *api.CreateBillRequest
		want  connect.Code
	}{
		{
			name:  "sum mismatch",
			actor: alice,
			req: &api.CreateBillRequest{GroupID: group.ID, Description: "Taxi", Amount: dec("50"),
				Splits: []*api.SplitInput{share(alice.ID, "20"), share(bob.ID, "20")}},
			want: connect.CodeInvalidArgument,
		},
		{
			name:  "non-positive amount",
			actor: alice,
			req: &api.CreateBillRequest{GroupID: group.ID, Description: "Taxi", Amount: dec("0"),
				Splits: []*api.SplitInput{share(alice.ID, "0")}},
			want: connect.CodeInvalidArgument,
		},
		{
			name:  "no splits",
			actor: alice,
			req:   &api.CreateBillRequest{GroupID: group.ID, Description: "Taxi", Amount: dec("5")},
			want:  connect.CodeInvalidArgument,
		},
		{
			name:  "unknown participant",
			actor: alice,
			req: &api.CreateBillRequest{GroupID: group.ID, Description: "Taxi", Amount: dec("5"),
				Splits: []*api.SplitInput{share("nobody", "5")}},
			want: connect.CodeInvalidArgument,
		},
		{
			name:  "guest cannot pay",
			actor: alice,
			req: &api.CreateBillRequest{GroupID: group.ID, Description: "Taxi", Amount: dec("5"), PaidBy: dave.ID,
				Splits: []*api.SplitInput{share(alice.ID, "5")}},
			want: connect.CodeInvalidArgument,
		},
		{
			name:  "outsider",
			actor: outsider,
			req: &api.CreateBillRequest{GroupID: group.ID, Description: "Taxi", Amount: dec("5"),
				Splits: []*api.SplitInput{share(outsider.ID, "5")}},
			want: connect.CodePermissionDenied,
		},
		{
			name:  "missing group",
			actor: alice,
			req: &api.CreateBillRequest{GroupID: "missing", Description: "Taxi", Amount: dec("5"),
				Splits: []*api.SplitInput{share(alice.ID, "5")}},
			want: connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.bills.CreateBill(ctx, authed(tt.actor, tt.req))
			requireCode(t, tt.want, err)
		})
	}

	t.Run("list", func(t *testing.T) {
		resp, err := env.bills.ListBillsByGroup(ctx, authed(bob, &api.ListBillsByGroupRequest{GroupID: group.ID}))
		require.NoError(t, err)
		assert.Len(t, resp.Msg.Bills, 3)

		_, err = env.bills.ListBillsByGroup(ctx, authed(outsider, &api.ListBillsByGroupRequest{GroupID: group.ID}))
		requireCode(t, connect.CodePermissionDenied, err)
	})
}

func TestCreateBillPaidByAnotherUser(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	group := env.createGroup(t, alice, "Trip")

	resp, err := env.bills.CreateBill(ctx, authed(alice, &api.CreateBillRequest{
		GroupID:     group.ID,
		Description: "Fuel",
		Amount:      dec("40"),
		PaidBy:      bob.ID,
		Splits:      []*api.SplitInput{share(alice.ID, "40")},
	}))
	require.NoError(t, err)
	assert.Equal(t, bob.ID, resp.Msg.Bill.PaidBy)

	groupResp, err := env.groups.GetGroup(ctx, authed(bob, &api.GetGroupRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{alice.ID, bob.ID}, memberIDs(groupResp.Msg.Group))
}

func TestDeleteBill(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")
	group := env.createGroup(t, alice, "Flat", bob, carol)

	bill := env.createBill(t, bob, group.ID, "30", share(bob.ID, "15"), share(carol.ID, "15"))

	_, err := env.bills.DeleteBill(ctx, authed(carol, &api.DeleteBillRequest{BillID: bill.ID}))
	requireCode(t, connect.CodePermissionDenied, err)

	_, err = env.bills.DeleteBill(ctx, authed(bob, &api.DeleteBillRequest{BillID: bill.ID}))
	require.NoError(t, err)

	_, err = env.bills.GetBill(ctx, authed(bob, &api.GetBillRequest{BillID: bill.ID}))
	requireCode(t, connect.CodeNotFound, err)

	// The group creator may delete anyone's bill.
	other := env.createBill(t, carol, group.ID, "10", share(alice.ID, "10"))
	_, err = env.bills.DeleteBill(ctx, authed(alice, &api.DeleteBillRequest{BillID: other.ID}))
	require.NoError(t, err)
}

func splitAmounts(bill *api.Bill) map[string]string {
	out := make(map[string]string, len(bill.Splits))
	for _, s := range bill.Splits {
		out[s.ParticipantID] = s.Amount.StringFixed(2)
	}
	return out
}

func TestCreateBillSplitModes(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")
	group := env.createGroup(t, alice, "Flat", bob, carol)

	tests := []struct {
		name string
		req  *api.CreateBillRequest
		want map[string]string
	}{
		{
			name: "equal",
			req: &api.CreateBillRequest{
				SplitMode: "equal",
				Amount:    dec("100"),
				Splits: []*api.SplitInput{
					{ParticipantID: alice.ID}, {ParticipantID: bob.ID}, {ParticipantID: carol.ID},
				},
			},
			want: map[string]string{alice.ID: "33.34", bob.ID: "33.33", carol.ID: "33.33"},
		},
		{
			name: "percentage",
			req: &api.CreateBillRequest{
				SplitMode: "percentage",
				Amount:    dec("50"),
				Splits: []*api.SplitInput{
					{ParticipantID: alice.ID, Percentage: dec("60")},
					{ParticipantID: bob.ID, Percentage: dec("40")},
				},
			},
			want: map[string]string{alice.ID: "30.00", bob.ID: "20.00"},
		},
		{
			name: "itemized with tax",
			req: &api.CreateBillRequest{
				SplitMode: "itemized",
				Amount:    dec("33"),
				Items: []*api.ItemInput{
					{Description: "Pizza", Amount: dec("20"), ParticipantIDs: []string{alice.ID, carol.ID}},
					{Description: "Salad", Amount: dec("10"), ParticipantIDs: []string{carol.ID}},
				},
			},
			want: map[string]string{alice.ID: "11.00", carol.ID: "22.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.GroupID = group.ID
			tt.req.Description = "Groceries"
			resp, err := env.bills.CreateBill(ctx, authed(alice, tt.req))
			require.NoError(t, err)
			assert.Equal(t, tt.want, splitAmounts(resp.Msg.Bill))
		})
	}

	t.Run("rejects", func(t *testing.T) {
		bad := []*api.CreateBillRequest{
			{SplitMode: "shares", Splits: []*api.SplitInput{share(alice.ID, "10")}},
			{SplitMode: "percentage", Splits: []*api.SplitInput{
				{ParticipantID: alice.ID, Percentage: dec("50")},
				{ParticipantID: bob.ID, Percentage: dec("30")},
			}},
			{SplitMode: "itemized"},
			{SplitMode: "itemized", Items: []*api.ItemInput{{Description: "Wine", Amount: dec("10")}}},
		}
		for _, req := range bad {
			req.GroupID = group.ID
			req.Description = "Groceries"
			req.Amount = dec("10")
			_, err := env.bills.CreateBill(ctx, authed(alice, req))
			requireCode(t, connect.CodeInvalidArgument, err)
		}
	})
}
