package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/smakolyk/pkg/api"
)

type OrderServiceHandler interface {
	GetWeek(context.Context, *connect.Request[api.GetWeekRequest]) (*connect.Response[api.GetWeekResponse], error)
	SubmitWeek(context.Context, *connect.Request[api.SubmitWeekRequest]) (*connect.Response[api.SubmitWeekResponse], error)
	CalculateTotal(context.Context, *connect.Request[api.CalculateTotalRequest]) (*connect.Response[api.CalculateTotalResponse], error)
}

func NewOrderServiceHandler(svc OrderServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return route(OrderServiceName, map[string]http.Handler{
		OrderServiceGetWeekProcedure:        connect.NewUnaryHandler(OrderServiceGetWeekProcedure, svc.GetWeek, opts...),
		OrderServiceSubmitWeekProcedure:     connect.NewUnaryHandler(OrderServiceSubmitWeekProcedure, svc.SubmitWeek, opts...),
		OrderServiceCalculateTotalProcedure: connect.NewUnaryHandler(OrderServiceCalculateTotalProcedure, svc.CalculateTotal, opts...),
	})
}

type OrderServiceClient interface {
	OrderServiceHandler
}

type orderServiceClient struct {
	getWeek        *connect.Client[api.GetWeekRequest, api.GetWeekResponse]
	submitWeek     *connect.Client[api.SubmitWeekRequest, api.SubmitWeekResponse]
	calculateTotal *connect.Client[api.CalculateTotalRequest, api.CalculateTotalResponse]
}

func NewOrderServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) OrderServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &orderServiceClient{
		getWeek:        connect.NewClient[api.GetWeekRequest, api.GetWeekResponse](httpClient, baseURL+OrderServiceGetWeekProcedure, opts...),
		submitWeek:     connect.NewClient[api.SubmitWeekRequest, api.SubmitWeekResponse](httpClient, baseURL+OrderServiceSubmitWeekProcedure, opts...),
		calculateTotal: connect.NewClient[api.CalculateTotalRequest, api.CalculateTotalResponse](httpClient, baseURL+OrderServiceCalculateTotalProcedure, opts...),
	}
}

func (c *orderServiceClient) GetWeek(ctx context.Context, req *connect.Request[api.GetWeekRequest]) (*connect.Response[api.GetWeekResponse], error) {
	return c.getWeek.CallUnary(ctx, req)
}

func (c *orderServiceClient) SubmitWeek(ctx context.Context, req *connect.Request[api.SubmitWeekRequest]) (*connect.Response[api.SubmitWeekResponse], error) {
	return c.submitWeek.CallUnary(ctx, req)
}

func (c *orderServiceClient) CalculateTotal(ctx context.Context, req *connect.Request[api.CalculateTotalRequest]) (*connect.Response[api.CalculateTotalResponse], error) {
	return c.calculateTotal.CallUnary(ctx, req)
}
