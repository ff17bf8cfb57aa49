package middleware

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/smakolyk/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key for storing the authenticated user's email.
	EmailKey contextKey = "email"
	// AdminKey is the context key for the authenticated user's admin flag.
	AdminKey contextKey = "is_admin"
)

// SessionCookie is the cookie holding the session JWT of browser clients.
const SessionCookie = "session"

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetEmail extracts the user email from the context.
// Returns empty string if not found.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// IsAdmin reports whether the authenticated user administers the menu.
func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(AdminKey).(bool)
	return admin
}

// WithClaims stores the session claims in ctx.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, EmailKey, claims.Email)
	return context.WithValue(ctx, AdminKey, claims.IsAdmin)
}

// TokenFromHeader returns the session token of a request: the Bearer token of the
// Authorization header, or else the session cookie.
func TokenFromHeader(h http.Header) (string, error) {
	if authHeader := h.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", auth.ErrInvalidToken
		}
		return parts[1], nil
	}

	cookie, err := (&http.Request{Header: h}).Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", auth.ErrMissingToken
	}
	return cookie.Value, nil
}

// RequireAuth returns a middleware that validates JWT tokens and requires authentication
// for every procedure except the public ones. It adds the user ID, email and admin flag
// to the request context; a valid token on a public procedure is used as well.
func RequireAuth(jwtManager *auth.JWTManager, public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			tokenString, err := TokenFromHeader(req.Header())
			if err == nil {
				var claims *auth.Claims
				if claims, err = jwtManager.Validate(tokenString); err == nil {
					ctx = WithClaims(ctx, claims)
				}
			}

			if err != nil && !open[req.Spec().Procedure] {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(ctx, req)
		}
	}
}

// OptionalAuth returns a middleware that validates JWT tokens if present, but allows
// requests without authentication.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if tokenString, err := TokenFromHeader(req.Header()); err == nil {
				if claims, err := jwtManager.Validate(tokenString); err == nil {
					ctx = WithClaims(ctx, claims)
				}
			}
			return next(ctx, req)
		}
	}
}
