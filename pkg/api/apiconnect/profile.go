package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/smakolyk/pkg/api"
)

type ProfileServiceHandler interface {
	GetProfile(context.Context, *connect.Request[api.GetProfileRequest]) (*connect.Response[api.GetProfileResponse], error)
	UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error)
}

func NewProfileServiceHandler(svc ProfileServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return route(ProfileServiceName, map[string]http.Handler{
		ProfileServiceGetProfileProcedure:    connect.NewUnaryHandler(ProfileServiceGetProfileProcedure, svc.GetProfile, opts...),
		ProfileServiceUpdateProfileProcedure: connect.NewUnaryHandler(ProfileServiceUpdateProfileProcedure, svc.UpdateProfile, opts...),
	})
}

type ProfileServiceClient interface {
	ProfileServiceHandler
}

type profileServiceClient struct {
	getProfile    *connect.Client[api.GetProfileRequest, api.GetProfileResponse]
	updateProfile *connect.Client[api.UpdateProfileRequest, api.UpdateProfileResponse]
}

func NewProfileServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ProfileServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &profileServiceClient{
		getProfile:    connect.NewClient[api.GetProfileRequest, api.GetProfileResponse](httpClient, baseURL+ProfileServiceGetProfileProcedure, opts...),
		updateProfile: connect.NewClient[api.UpdateProfileRequest, api.UpdateProfileResponse](httpClient, baseURL+ProfileServiceUpdateProfileProcedure, opts...),
	}
}

func (c *profileServiceClient) GetProfile(ctx context.Context, req *connect.Request[api.GetProfileRequest]) (*connect.Response[api.GetProfileResponse], error) {
	return c.getProfile.CallUnary(ctx, req)
}

func (c *profileServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	return c.updateProfile.CallUnary(ctx, req)
}
