package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mmynk/smakolyk/internal/auth"
	"github.com/mmynk/smakolyk/internal/metrics"
)

// Session loads the session token (cookie or Bearer header) if present and valid, and
// stores its claims both in the gin context ("claims") and in the request context.
// Requests without a valid session continue anonymously.
func Session(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := TokenFromHeader(c.Request.Header)
		if err == nil {
			if claims, err := jwtManager.Validate(tokenString); err == nil {
				c.Set("claims", claims)
				c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
			}
		}
		c.Next()
	}
}

// Claims returns the session claims loaded by Session, or nil.
func Claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get("claims")
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// RequireLogin redirects anonymous visitors to loginPath, remembering where they were going.
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Claims(c) == nil {
			c.Redirect(http.StatusSeeOther, loginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin answers 403 to users who do not administer the menu.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil || !claims.IsAdmin {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// RequestLogger logs every HTTP request once it completes.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"remote_addr", c.ClientIP(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		if status >= http.StatusInternalServerError {
			logger.Error("Request failed", attrs...)
			return
		}
		logger.Info("Request completed", attrs...)
	}
}

// Metrics records the duration of every request by route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// CORS allows browser clients of the Connect API from the given origins.
func CORS(origins ...string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposeHeaders:    []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		AllowCredentials: len(origins) > 0,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
