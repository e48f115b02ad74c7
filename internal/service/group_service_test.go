package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/pkg/api"
)

func memberIDs(g *api.Group) []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

func TestGroupLifecycle(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")

	group := env.createGroup(t, alice, "Roommates")
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "Roommates", group.Name)
	assert.Equal(t, alice.ID, group.CreatedBy)
	assert.Equal(t, []string{alice.ID}, memberIDs(group))
	assert.NotZero(t, group.CreatedAt)

	t.Run("outsider cannot read", func(t *testing.T) {
		_, err := env.groups.GetGroup(ctx, authed(bob, &api.GetGroupRequest{GroupID: group.ID}))
		requireCode(t, connect.CodePermissionDenied, err)
	})

	t.Run("add member by email", func(t *testing.T) {
		resp, err := env.groups.AddMember(ctx, authed(alice, &api.AddMemberRequest{
			GroupID: group.ID,
			Email:   "bob@example.com",
		}))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{alice.ID, bob.ID}, memberIDs(resp.Msg.Group))

		_, err = env.groups.AddMember(ctx, authed(bob, &api.AddMemberRequest{
			GroupID: group.ID,
			UserID:  alice.ID,
		}))
		requireCode(t, connect.CodeAlreadyExists, err)

		_, err = env.groups.AddMember(ctx, authed(alice, &api.AddMemberRequest{
			GroupID: group.ID,
			Email:   "nobody@example.com",
		}))
		requireCode(t, connect.CodeNotFound, err)

		_, err = env.groups.AddMember(ctx, authed(alice, &api.AddMemberRequest{GroupID: group.ID}))
		requireCode(t, connect.CodeInvalidArgument, err)
	})

	t.Run("add guest", func(t *testing.T) {
		resp, err := env.groups.AddGuest(ctx, authed(bob, &api.AddGuestRequest{
			GroupID: group.ID,
			Name:    "Dave",
		}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Group.Guests, 1)
		assert.Equal(t, "Dave", resp.Msg.Guest.DisplayName)
		assert.False(t, resp.Msg.Guest.IsRegistered)
	})

	t.Run("list groups", func(t *testing.T) {
		env.createGroup(t, carol, "Book Club", bob)

		resp, err := env.groups.ListGroups(ctx, authed(bob, &api.ListGroupsRequest{}))
		require.NoError(t, err)
		assert.Len(t, resp.Msg.Groups, 2)

		resp, err = env.groups.ListGroups(ctx, authed(alice, &api.ListGroupsRequest{}))
		require.NoError(t, err)
		assert.Len(t, resp.Msg.Groups, 1)
	})

	t.Run("create with unknown member", func(t *testing.T) {
		_, err := env.groups.CreateGroup(ctx, authed(alice, &api.CreateGroupRequest{
			Name:      "Ghosts",
			MemberIDs: []string{"missing"},
		}))
		requireCode(t, connect.CodeNotFound, err)
	})

	t.Run("only creator deletes", func(t *testing.T) {
		_, err := env.groups.DeleteGroup(ctx, authed(bob, &api.DeleteGroupRequest{GroupID: group.ID}))
		requireCode(t, connect.CodePermissionDenied, err)

		_, err = env.groups.DeleteGroup(ctx, authed(alice, &api.DeleteGroupRequest{GroupID: group.ID}))
		require.NoError(t, err)

		_, err = env.groups.GetGroup(ctx, authed(alice, &api.GetGroupRequest{GroupID: group.ID}))
		requireCode(t, connect.CodeNotFound, err)
	})
}

func TestGetGroupBalances(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")

	group := env.createGroup(t, alice, "Trip", bob)

	// Bob pays 500; Alice owes 300 and Carol, not yet a member, owes 200.
	env.createBill(t, bob, group.ID, "500", share(alice.ID, "300"), share(carol.ID, "200"))

	resp, err := env.groups.GetGroupBalances(ctx, authed(alice, &api.GetGroupBalancesRequest{GroupID: group.ID}))
	require.NoError(t, err)

	net := make(map[string]string)
	for _, b := range resp.Msg.MemberBalances {
		net[b.DisplayName] = b.NetBalance.String()
	}
	assert.Equal(t, map[string]string{"Alice": "-300", "Bob": "500", "Carol": "-200"}, net)

	require.Len(t, resp.Msg.Debts, 2)
	owed := make(map[string]string)
	for _, d := range resp.Msg.Debts {
		assert.Equal(t, bob.ID, d.To)
		owed[d.From] = d.Amount.String()
	}
	assert.Equal(t, map[string]string{alice.ID: "300", carol.ID: "200"}, owed)

	// Carol joined with the bill and can now see the group.
	_, err = env.groups.GetGroup(ctx, authed(carol, &api.GetGroupRequest{GroupID: group.ID}))
	require.NoError(t, err)
}

func TestRemoveMember(t *testing.T) {
	tests := []struct {
		name        string
		resolution  string
		wantAmount  string
		wantAliceTo string
	}{
		{"resplit keeps the total", "resplit", "100", "100"},
		{"absorb shrinks the total", "absorb", "60", "60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestServer(t)
			ctx := context.Background()

			alice := env.register(t, "alice@example.com", "Alice")
			bob := env.register(t, "bob@example.com", "Bob")
			group := env.createGroup(t, alice, "Flat", bob)
			bill := env.createBill(t, alice, group.ID, "100", share(alice.ID, "60"), share(bob.ID, "40"))

			resp, err := env.groups.RemoveMember(ctx, authed(alice, &api.RemoveMemberRequest{
				GroupID:       group.ID,
				ParticipantID: bob.ID,
				Resolution:    tt.resolution,
			}))
			require.NoError(t, err)
			assert.Equal(t, []string{alice.ID}, memberIDs(resp.Msg.Group))
			require.Len(t, resp.Msg.UpdatedBills, 1)

			got, err := env.bills.GetBill(ctx, authed(alice, &api.GetBillRequest{BillID: bill.ID}))
			require.NoError(t, err)
			assert.True(t, dec(tt.wantAmount).Equal(got.Msg.Bill.Amount), "amount = %s", got.Msg.Bill.Amount)
			require.Len(t, got.Msg.Bill.Splits, 1)
			assert.Equal(t, alice.ID, got.Msg.Bill.Splits[0].ParticipantID)
			assert.True(t, dec(tt.wantAliceTo).Equal(got.Msg.Bill.Splits[0].Amount))
		})
	}
}

func TestRemoveMemberRejects(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")
	group := env.createGroup(t, alice, "Flat", bob)

	tests := []struct {
		name  string
		actor testUser
		req   *api.RemoveMemberRequest
		want  connect.Code
	}{
		{
			name:  "non-creator",
			actor: bob,
			req:   &api.RemoveMemberRequest{GroupID: group.ID, ParticipantID: alice.ID, Resolution: "resplit"},
			want:  connect.CodePermissionDenied,
		},
		{
			name:  "creator is protected",
			actor: alice,
			req:   &api.RemoveMemberRequest{GroupID: group.ID, ParticipantID: alice.ID, Resolution: "absorb"},
			want:  connect.CodePermissionDenied,
		},
		{
			name:  "not a participant",
			actor: alice,
			req:   &api.RemoveMemberRequest{GroupID: group.ID, ParticipantID: carol.ID, Resolution: "absorb"},
			want:  connect.CodeNotFound,
		},
		{
			name:  "unknown resolution",
			actor: alice,
			req:   &api.RemoveMemberRequest{GroupID: group.ID, ParticipantID: bob.ID, Resolution: "forgive"},
			want:  connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.RemoveMember(ctx, authed(tt.actor, tt.req))
			requireCode(t, tt.want, err)
		})
	}
}
