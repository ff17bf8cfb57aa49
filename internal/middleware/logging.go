package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// Client mistakes (invalid input, closed window, duplicates) are logged at Warn;
// internal failures at Error.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"protocol", req.Peer().Protocol,
				"user_id", GetUserID(ctx), // empty when registered before RequireAuth
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if IsAdmin(ctx) {
				attrs = append(attrs, "admin", true)
			}

			var connectErr *connect.Error
			switch {
			case err == nil:
				logger.Info("RPC ok", attrs...)
			case errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal:
				logger.Warn("RPC rejected", append(attrs, "code", connectErr.Code(), "error", connectErr.Message())...)
			default:
				logger.Error("RPC failed", append(attrs, "error", err)...)
			}
			return resp, err
		}
	}
}
