package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/smakolyk/pkg/api"
)

type MenuServiceHandler interface {
	GetMenu(context.Context, *connect.Request[api.GetMenuRequest]) (*connect.Response[api.GetMenuResponse], error)
	GetPrices(context.Context, *connect.Request[api.GetPricesRequest]) (*connect.Response[api.GetPricesResponse], error)
}

func NewMenuServiceHandler(svc MenuServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return route(MenuServiceName, map[string]http.Handler{
		MenuServiceGetMenuProcedure:   connect.NewUnaryHandler(MenuServiceGetMenuProcedure, svc.GetMenu, opts...),
		MenuServiceGetPricesProcedure: connect.NewUnaryHandler(MenuServiceGetPricesProcedure, svc.GetPrices, opts...),
	})
}

type MenuServiceClient interface {
	MenuServiceHandler
}

type menuServiceClient struct {
	getMenu   *connect.Client[api.GetMenuRequest, api.GetMenuResponse]
	getPrices *connect.Client[api.GetPricesRequest, api.GetPricesResponse]
}

func NewMenuServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) MenuServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &menuServiceClient{
		getMenu:   connect.NewClient[api.GetMenuRequest, api.GetMenuResponse](httpClient, baseURL+MenuServiceGetMenuProcedure, opts...),
		getPrices: connect.NewClient[api.GetPricesRequest, api.GetPricesResponse](httpClient, baseURL+MenuServiceGetPricesProcedure, opts...),
	}
}

func (c *menuServiceClient) GetMenu(ctx context.Context, req *connect.Request[api.GetMenuRequest]) (*connect.Response[api.GetMenuResponse], error) {
	return c.getMenu.CallUnary(ctx, req)
}

func (c *menuServiceClient) GetPrices(ctx context.Context, req *connect.Request[api.GetPricesRequest]) (*connect.Response[api.GetPricesResponse], error) {
	return c.getPrices.CallUnary(ctx, req)
}
