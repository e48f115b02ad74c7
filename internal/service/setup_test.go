package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

type testEnv struct {
	auth        apiconnect.AuthServiceClient
	groups      apiconnect.GroupServiceClient
	bills       apiconnect.BillServiceClient
	settlements apiconnect.SettlementServiceClient
	hub         *notify.Hub
}

type testUser struct {
	ID    string
	Token string
}

// setupTestServer serves all four services over httptest, backed by a
// temporary SQLite database and real JWT auth.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := metrics.New(prometheus.NewRegistry())
	hub := notify.NewHub(notify.WithBuffer(8), notify.WithDropHook(m.NotificationDropped))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	deps := Deps{
		Store:    store,
		Notifier: hub,
		Metrics:  m,
		Locks:    NewKeyedMutex(),
	}

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.RequireAuth(jwtManager,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
		),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, slog.Default()),
		interceptors,
	))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(deps), interceptors))
	mux.Handle(apiconnect.NewBillServiceHandler(NewBillService(deps), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(deps, hub), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := server.Client()
	return &testEnv{
		auth:        apiconnect.NewAuthServiceClient(client, server.URL),
		groups:      apiconnect.NewGroupServiceClient(client, server.URL),
		bills:       apiconnect.NewBillServiceClient(client, server.URL),
		settlements: apiconnect.NewSettlementServiceClient(client, server.URL),
		hub:         hub,
	}
}

// authed wraps msg in a request carrying the user's bearer token.
func authed[T any](u testUser, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+u.Token)
	return req
}

func (e *testEnv) register(t *testing.T, email, name string) testUser {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: name,
		Password:    "password123",
	}))
	require.NoError(t, err)
	return testUser{ID: resp.Msg.User.ID, Token: resp.Msg.Token}
}

func (e *testEnv) createGroup(t *testing.T, owner testUser, name string, members ...testUser) *api.Group {
	t.Helper()
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	resp, err := e.groups.CreateGroup(context.Background(), authed(owner, &api.CreateGroupRequest{
		Name:      name,
		MemberIDs: ids,
	}))
	require.NoError(t, err)
	return resp.Msg.Group
}

func (e *testEnv) createBill(t *testing.T, payer testUser, groupID, amount string, splits ...*api.SplitInput) *api.Bill {
	t.Helper()
	resp, err := e.bills.CreateBill(context.Background(), authed(payer, &api.CreateBillRequest{
		GroupID:     groupID,
		Description: "Dinner",
		Amount:      dec(amount),
		Splits:      splits,
	}))
	require.NoError(t, err)
	return resp.Msg.Bill
}

func share(participantID, amount string) *api.SplitInput {
	return &api.SplitInput{ParticipantID: participantID, Amount: dec(amount)}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}
