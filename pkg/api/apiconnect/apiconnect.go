// Package apiconnect binds the pkg/api messages to Connect handlers and clients.
//
// Every service is served under /smakolyk.v1.<Service>/ and speaks JSON only.
package apiconnect

import (
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/smakolyk/pkg/api"
)

const (
	AuthServiceName    = "smakolyk.v1.AuthService"
	ProfileServiceName = "smakolyk.v1.ProfileService"
	MenuServiceName    = "smakolyk.v1.MenuService"
	OrderServiceName   = "smakolyk.v1.OrderService"
	HistoryServiceName = "smakolyk.v1.HistoryService"
)

const (
	AuthServiceRegisterProcedure       = "/smakolyk.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/smakolyk.v1.AuthService/Login"
	AuthServiceLogoutProcedure         = "/smakolyk.v1.AuthService/Logout"
	AuthServiceGetCurrentUserProcedure = "/smakolyk.v1.AuthService/GetCurrentUser"

	ProfileServiceGetProfileProcedure    = "/smakolyk.v1.ProfileService/GetProfile"
	ProfileServiceUpdateProfileProcedure = "/smakolyk.v1.ProfileService/UpdateProfile"

	MenuServiceGetMenuProcedure   = "/smakolyk.v1.MenuService/GetMenu"
	MenuServiceGetPricesProcedure = "/smakolyk.v1.MenuService/GetPrices"

	OrderServiceGetWeekProcedure        = "/smakolyk.v1.OrderService/GetWeek"
	OrderServiceSubmitWeekProcedure     = "/smakolyk.v1.OrderService/SubmitWeek"
	OrderServiceCalculateTotalProcedure = "/smakolyk.v1.OrderService/CalculateTotal"

	HistoryServiceListHistoryProcedure    = "/smakolyk.v1.HistoryService/ListHistory"
	HistoryServiceGetHistoryWeekProcedure = "/smakolyk.v1.HistoryService/GetHistoryWeek"
)

// PublicProcedures can be called without a session.
var PublicProcedures = []string{
	AuthServiceRegisterProcedure,
	AuthServiceLoginProcedure,
	AuthServiceLogoutProcedure,
	MenuServiceGetMenuProcedure,
	MenuServiceGetPricesProcedure,
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
}

// route dispatches a service's procedures by path.
func route(service string, procedures map[string]http.Handler) (string, http.Handler) {
	return "/" + service + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := procedures[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func trimBase(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
