package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// BillServiceName is the fully-qualified name of the BillService service.
const BillServiceName = "splitledger.v1.BillService"

// Procedure paths of the BillService RPCs.
const (
	BillServiceCreateBillProcedure       = "/splitledger.v1.BillService/CreateBill"
	BillServiceGetBillProcedure          = "/splitledger.v1.BillService/GetBill"
	BillServiceListBillsByGroupProcedure = "/splitledger.v1.BillService/ListBillsByGroup"
	BillServiceDeleteBillProcedure       = "/splitledger.v1.BillService/DeleteBill"
)

// BillServiceClient is a client for the splitledger.v1.BillService service.
type BillServiceClient interface {
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	ListBillsByGroup(context.Context, *connect.Request[api.ListBillsByGroupRequest]) (*connect.Response[api.ListBillsByGroupResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
}

// NewBillServiceClient constructs a client for the splitledger.v1.BillService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{api.WithJSON()}, opts...)
	return &billServiceClient{
		createBill: connect.NewClient[api.CreateBillRequest, api.CreateBillResponse](
			httpClient,
			baseURL+BillServiceCreateBillProcedure,
			opts...,
		),
		getBill: connect.NewClient[api.GetBillRequest, api.GetBillResponse](
			httpClient,
			baseURL+BillServiceGetBillProcedure,
			opts...,
		),
		listBillsByGroup: connect.NewClient[api.ListBillsByGroupRequest, api.ListBillsByGroupResponse](
			httpClient,
			baseURL+BillServiceListBillsByGroupProcedure,
			opts...,
		),
		deleteBill: connect.NewClient[api.DeleteBillRequest, api.DeleteBillResponse](
			httpClient,
			baseURL+BillServiceDeleteBillProcedure,
			opts...,
		),
	}
}

type billServiceClient struct {
	createBill       *connect.Client[api.CreateBillRequest, api.CreateBillResponse]
	getBill          *connect.Client[api.GetBillRequest, api.GetBillResponse]
	listBillsByGroup *connect.Client[api.ListBillsByGroupRequest, api.ListBillsByGroupResponse]
	deleteBill       *connect.Client[api.DeleteBillRequest, api.DeleteBillResponse]
}

func (c *billServiceClient) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *billServiceClient) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *billServiceClient) ListBillsByGroup(ctx context.Context, req *connect.Request[api.ListBillsByGroupRequest]) (*connect.Response[api.ListBillsByGroupResponse], error) {
	return c.listBillsByGroup.CallUnary(ctx, req)
}

func (c *billServiceClient) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

// BillServiceHandler is implemented by the server side of splitledger.v1.BillService.
type BillServiceHandler interface {
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	ListBillsByGroup(context.Context, *connect.Request[api.ListBillsByGroupRequest]) (*connect.Response[api.ListBillsByGroupResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
}

// NewBillServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{api.WithJSON()}, opts...)
	createBillHandler := connect.NewUnaryHandler(
		BillServiceCreateBillProcedure,
		svc.CreateBill,
		opts...,
	)
	getBillHandler := connect.NewUnaryHandler(
		BillServiceGetBillProcedure,
		svc.GetBill,
		opts...,
	)
	listBillsByGroupHandler := connect.NewUnaryHandler(
		BillServiceListBillsByGroupProcedure,
		svc.ListBillsByGroup,
		opts...,
	)
	deleteBillHandler := connect.NewUnaryHandler(
		BillServiceDeleteBillProcedure,
		svc.DeleteBill,
		opts...,
	)
	return "/splitledger.v1.BillService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case BillServiceCreateBillProcedure:
			createBillHandler.ServeHTTP(w, r)
		case BillServiceGetBillProcedure:
			getBillHandler.ServeHTTP(w, r)
		case BillServiceListBillsByGroupProcedure:
			listBillsByGroupHandler.ServeHTTP(w, r)
		case BillServiceDeleteBillProcedure:
			deleteBillHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
