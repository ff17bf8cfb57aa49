package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/smakolyk/internal/auth"
	"github.com/mmynk/smakolyk/internal/middleware"
	"github.com/mmynk/smakolyk/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	users         UserReader
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, users UserReader, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		users:         users,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Register creates a new user account with its profile and signs it in.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	user, err := s.authenticator.Register(ctx, auth.SignupForm{
		Email:           req.Msg.Email,
		Password:        req.Msg.Password,
		PasswordConfirm: req.Msg.PasswordConfirm,
		ProfileForm:     toProfileForm(req.Msg.Profile),
	})
	if err != nil {
		if verr := validationError(err); verr != nil {
			s.logger.Warn("Registration rejected", "email", req.Msg.Email, "error", err)
			return nil, verr
		}
		return nil, internalError(s.logger, "Registration failed", err, "email", req.Msg.Email)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, internalError(s.logger, "Failed to generate token", err, "user_id", user.ID)
	}

	resp := connect.NewResponse(&api.RegisterResponse{User: toAPIUser(user), Token: token})
	s.setSession(resp.Header(), token)

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return resp, nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.logger.Warn("Login failed", "email", req.Msg.Email)
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}
	if err != nil {
		return nil, internalError(s.logger, "Login failed", err, "email", req.Msg.Email)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, internalError(s.logger, "Failed to generate token", err, "user_id", user.ID)
	}

	resp := connect.NewResponse(&api.LoginResponse{User: toAPIUser(user), Token: token})
	s.setSession(resp.Header(), token)

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return resp, nil
}

// Logout clears the session cookie. Bearer tokens are stateless and simply dropped by the client.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	s.logger.Info("Logout request", "user_id", middleware.GetUserID(ctx))
	resp := connect.NewResponse(&api.LogoutResponse{})
	resp.Header().Add("Set-Cookie", (&http.Cookie{
		Name:     middleware.SessionCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}).String())
	return resp, nil
}

// GetCurrentUser returns the currently authenticated user's information.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	user, err := currentUser(ctx, s.users)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{User: toAPIUser(user)}), nil
}

func (s *AuthService) setSession(h http.Header, token string) {
	h.Add("Set-Cookie", (&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.jwtManager.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}).String())
}
