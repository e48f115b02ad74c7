package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService service.
const SettlementServiceName = "splitledger.v1.SettlementService"

// Procedure paths of the SettlementService RPCs.
const (
	SettlementServiceGetOverallSettlementsProcedure  = "/splitledger.v1.SettlementService/GetOverallSettlements"
	SettlementServiceCreateSettlementProcedure       = "/splitledger.v1.SettlementService/CreateSettlement"
	SettlementServiceUpdateSettlementStatusProcedure = "/splitledger.v1.SettlementService/UpdateSettlementStatus"
	SettlementServiceGetSettlementHistoryProcedure   = "/splitledger.v1.SettlementService/GetSettlementHistory"
	SettlementServiceWatchUpdatesProcedure           = "/splitledger.v1.SettlementService/WatchUpdates"
)

// SettlementServiceClient is a client for the splitledger.v1.SettlementService service.
type SettlementServiceClient interface {
	GetOverallSettlements(context.Context, *connect.Request[api.GetOverallSettlementsRequest]) (*connect.Response[api.GetOverallSettlementsResponse], error)
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	UpdateSettlementStatus(context.Context, *connect.Request[api.UpdateSettlementStatusRequest]) (*connect.Response[api.UpdateSettlementStatusResponse], error)
	GetSettlementHistory(context.Context, *connect.Request[api.GetSettlementHistoryRequest]) (*connect.Response[api.GetSettlementHistoryResponse], error)
	WatchUpdates(context.Context, *connect.Request[api.WatchUpdatesRequest]) (*connect.ServerStreamForClient[api.Event], error)
}

// NewSettlementServiceClient constructs a client for the splitledger.v1.SettlementService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{api.WithJSON()}, opts...)
	return &settlementServiceClient{
		getOverallSettlements: connect.NewClient[api.GetOverallSettlementsRequest, api.GetOverallSettlementsResponse](
			httpClient,
			baseURL+SettlementServiceGetOverallSettlementsProcedure,
			opts...,
		),
		createSettlement: connect.NewClient[api.CreateSettlementRequest, api.CreateSettlementResponse](
			httpClient,
			baseURL+SettlementServiceCreateSettlementProcedure,
			opts...,
		),
		updateSettlementStatus: connect.NewClient[api.UpdateSettlementStatusRequest, api.UpdateSettlementStatusResponse](
			httpClient,
			baseURL+SettlementServiceUpdateSettlementStatusProcedure,
			opts...,
		),
		getSettlementHistory: connect.NewClient[api.GetSettlementHistoryRequest, api.GetSettlementHistoryResponse](
			httpClient,
			baseURL+SettlementServiceGetSettlementHistoryProcedure,
			opts...,
		),
		watchUpdates: connect.NewClient[api.WatchUpdatesRequest, api.Event](
			httpClient,
			baseURL+SettlementServiceWatchUpdatesProcedure,
			opts...,
		),
	}
}

type settlementServiceClient struct {
	getOverallSettlements  *connect.Client[api.GetOverallSettlementsRequest, api.GetOverallSettlementsResponse]
	createSettlement       *connect.Client[api.CreateSettlementRequest, api.CreateSettlementResponse]
	updateSettlementStatus *connect.Client[api.UpdateSettlementStatusRequest, api.UpdateSettlementStatusResponse]
	getSettlementHistory   *connect.Client[api.GetSettlementHistoryRequest, api.GetSettlementHistoryResponse]
	watchUpdates           *connect.Client[api.WatchUpdatesRequest, api.Event]
}

func (c *settlementServiceClient) GetOverallSettlements(ctx context.Context, req *connect.Request[api.GetOverallSettlementsRequest]) (*connect.Response[api.GetOverallSettlementsResponse], error) {
	return c.getOverallSettlements.CallUnary(ctx, req)
}

func (c *settlementServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) UpdateSettlementStatus(ctx context.Context, req *connect.Request[api.UpdateSettlementStatusRequest]) (*connect.Response[api.UpdateSettlementStatusResponse], error) {
	return c.updateSettlementStatus.CallUnary(ctx, req)
}

func (c *settlementServiceClient) GetSettlementHistory(ctx context.Context, req *connect.Request[api.GetSettlementHistoryRequest]) (*connect.Response[api.GetSettlementHistoryResponse], error) {
	return c.getSettlementHistory.CallUnary(ctx, req)
}

func (c *settlementServiceClient) WatchUpdates(ctx context.Context, req *connect.Request[api.WatchUpdatesRequest]) (*connect.ServerStreamForClient[api.Event], error) {
	return c.watchUpdates.CallServerStream(ctx, req)
}

// SettlementServiceHandler is implemented by the server side of splitledger.v1.SettlementService.
type SettlementServiceHandler interface {
	GetOverallSettlements(context.Context, *connect.Request[api.GetOverallSettlementsRequest]) (*connect.Response[api.GetOverallSettlementsResponse], error)
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	UpdateSettlementStatus(context.Context, *connect.Request[api.UpdateSettlementStatusRequest]) (*connect.Response[api.UpdateSettlementStatusResponse], error)
	GetSettlementHistory(context.Context, *connect.Request[api.GetSettlementHistoryRequest]) (*connect.Response[api.GetSettlementHistoryResponse], error)
	WatchUpdates(context.Context, *connect.Request[api.WatchUpdatesRequest], *connect.ServerStream[api.Event]) error
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{api.WithJSON()}, opts...)
	getOverallSettlementsHandler := connect.NewUnaryHandler(
		SettlementServiceGetOverallSettlementsProcedure,
		svc.GetOverallSettlements,
		opts...,
	)
	createSettlementHandler := connect.NewUnaryHandler(
		SettlementServiceCreateSettlementProcedure,
		svc.CreateSettlement,
		opts...,
	)
	updateSettlementStatusHandler := connect.NewUnaryHandler(
		SettlementServiceUpdateSettlementStatusProcedure,
		svc.UpdateSettlementStatus,
		opts...,
	)
	getSettlementHistoryHandler := connect.NewUnaryHandler(
		SettlementServiceGetSettlementHistoryProcedure,
		svc.GetSettlementHistory,
		opts...,
	)
	watchUpdatesHandler := connect.NewServerStreamHandler(
		SettlementServiceWatchUpdatesProcedure,
		svc.WatchUpdates,
		opts...,
	)
	return "/splitledger.v1.SettlementService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SettlementServiceGetOverallSettlementsProcedure:
			getOverallSettlementsHandler.ServeHTTP(w, r)
		case SettlementServiceCreateSettlementProcedure:
			createSettlementHandler.ServeHTTP(w, r)
		case SettlementServiceUpdateSettlementStatusProcedure:
			updateSettlementStatusHandler.ServeHTTP(w, r)
		case SettlementServiceGetSettlementHistoryProcedure:
			getSettlementHistoryHandler.ServeHTTP(w, r)
		case SettlementServiceWatchUpdatesProcedure:
			watchUpdatesHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
