package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/smakolyk/pkg/api"
)

type HistoryServiceHandler interface {
	ListHistory(context.Context, *connect.Request[api.ListHistoryRequest]) (*connect.Response[api.ListHistoryResponse], error)
	GetHistoryWeek(context.Context, *connect.Request[api.GetHistoryWeekRequest]) (*connect.Response[api.GetHistoryWeekResponse], error)
}

func NewHistoryServiceHandler(svc HistoryServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return route(HistoryServiceName, map[string]http.Handler{
		HistoryServiceListHistoryProcedure:    connect.NewUnaryHandler(HistoryServiceListHistoryProcedure, svc.ListHistory, opts...),
		HistoryServiceGetHistoryWeekProcedure: connect.NewUnaryHandler(HistoryServiceGetHistoryWeekProcedure, svc.GetHistoryWeek, opts...),
	})
}

type HistoryServiceClient interface {
	HistoryServiceHandler
}

type historyServiceClient struct {
	listHistory    *connect.Client[api.ListHistoryRequest, api.ListHistoryResponse]
	getHistoryWeek *connect.Client[api.GetHistoryWeekRequest, api.GetHistoryWeekResponse]
}

func NewHistoryServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) HistoryServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &historyServiceClient{
		listHistory:    connect.NewClient[api.ListHistoryRequest, api.ListHistoryResponse](httpClient, baseURL+HistoryServiceListHistoryProcedure, opts...),
		getHistoryWeek: connect.NewClient[api.GetHistoryWeekRequest, api.GetHistoryWeekResponse](httpClient, baseURL+HistoryServiceGetHistoryWeekProcedure, opts...),
	}
}

func (c *historyServiceClient) ListHistory(ctx context.Context, req *connect.Request[api.ListHistoryRequest]) (*connect.Response[api.ListHistoryResponse], error) {
	return c.listHistory.CallUnary(ctx, req)
}

func (c *historyServiceClient) GetHistoryWeek(ctx context.Context, req *connect.Request[api.GetHistoryWeekRequest]) (*connect.Response[api.GetHistoryWeekResponse], error) {
	return c.getHistoryWeek.CallUnary(ctx, req)
}
