package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/gin-gonic/gin"

	"github.com/mmynk/smakolyk/internal/auth"
	"github.com/mmynk/smakolyk/internal/metrics"
	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/pkg/api"
	"github.com/mmynk/smakolyk/pkg/api/apiconnect"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func init() {
	gin.SetMode(gin.TestMode)
}

func testToken(t *testing.T, m *auth.JWTManager, admin bool) string {
	t.Helper()
	user := models.NewUser("olena@example.com", "hash", models.Profile{Username: "olena"})
	user.IsAdmin = admin
	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return token
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  http.Header
		want    string
		wantErr error
	}{
		{"bearer", http.Header{"Authorization": {"Bearer abc"}}, "abc", nil},
		{"cookie", http.Header{"Cookie": {SessionCookie + "=xyz"}}, "xyz", nil},
		{"bearer wins", http.Header{"Authorization": {"Bearer abc"}, "Cookie": {SessionCookie + "=xyz"}}, "abc", nil},
		{"malformed", http.Header{"Authorization": {"Token abc"}}, "", auth.ErrInvalidToken},
		{"missing", http.Header{}, "", auth.ErrMissingToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TokenFromHeader(tt.header)
			if err != tt.wantErr {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

// menuStub answers GetMenu publicly and GetPrices only to signed-in users, echoing the caller in the menu.
type menuStub struct{}

func (menuStub) GetMenu(ctx context.Context, _ *connect.Request[api.GetMenuRequest]) (*connect.Response[api.GetMenuResponse], error) {
	return connect.NewResponse(&api.GetMenuResponse{
		Categories: []api.MenuCategory{{Category: GetEmail(ctx)}},
	}), nil
}

func (menuStub) GetPrices(ctx context.Context, _ *connect.Request[api.GetPricesRequest]) (*connect.Response[api.GetPricesResponse], error) {
	admin := int64(0)
	if IsAdmin(ctx) {
		admin = 1
	}
	return connect.NewResponse(&api.GetPricesResponse{
		Response: map[string]map[string]int64{GetUserID(ctx): {"admin": admin}},
	}), nil
}

func TestRequireAuth(t *testing.T) {
	m := auth.NewJWTManager("test-secret", time.Hour)
	path, handler := apiconnect.NewMenuServiceHandler(menuStub{}, connect.WithInterceptors(
		RequireAuth(m, apiconnect.MenuServiceGetMenuProcedure),
		LoggingInterceptor(discard),
	))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	defer server.Close()

	client := apiconnect.NewMenuServiceClient(http.DefaultClient, server.URL)
	ctx := context.Background()

	t.Run("public procedure without token", func(t *testing.T) {
		resp, err := client.GetMenu(ctx, connect.NewRequest(&api.GetMenuRequest{}))
		if err != nil {
			t.Fatalf("GetMenu failed: %v", err)
		}
		if got := resp.Msg.Categories[0].Category; got != "" {
			t.Errorf("anonymous call saw email %q", got)
		}
	})

	t.Run("protected procedure without token", func(t *testing.T) {
		_, err := client.GetPrices(ctx, connect.NewRequest(&api.GetPricesRequest{}))
		if connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("expected CodeUnauthenticated, got %v", err)
		}
	})

	t.Run("protected procedure with bearer token", func(t *testing.T) {
		req := connect.NewRequest(&api.GetPricesRequest{})
		req.Header().Set("Authorization", "Bearer "+testToken(t, m, true))
		resp, err := client.GetPrices(ctx, req)
		if err != nil {
			t.Fatalf("GetPrices failed: %v", err)
		}
		if len(resp.Msg.Response) != 1 {
			t.Fatalf("unexpected response: %+v", resp.Msg.Response)
		}
		for userID, v := range resp.Msg.Response {
			if userID == "" || v["admin"] != 1 {
				t.Errorf("claims not propagated: %q %v", userID, v)
			}
		}
	})

	t.Run("protected procedure with session cookie", func(t *testing.T) {
		req := connect.NewRequest(&api.GetPricesRequest{})
		req.Header().Set("Cookie", SessionCookie+"="+testToken(t, m, false))
		if _, err := client.GetPrices(ctx, req); err != nil {
			t.Fatalf("GetPrices failed: %v", err)
		}
	})

	t.Run("token signed with another key", func(t *testing.T) {
		req := connect.NewRequest(&api.GetPricesRequest{})
		req.Header().Set("Authorization", "Bearer "+testToken(t, auth.NewJWTManager("other", time.Hour), false))
		_, err := client.GetPrices(ctx, req)
		if connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("expected CodeUnauthenticated, got %v", err)
		}
	})
}

func newRouter(m *auth.JWTManager) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(discard), Metrics(metrics.New()), Session(m))
	r.GET("/private", RequireLogin("/login"), func(c *gin.Context) {
		c.String(http.StatusOK, Claims(c).Email+" "+GetUserID(c.Request.Context()))
	})
	r.GET("/admin", RequireLogin("/login"), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestGinSession(t *testing.T) {
	m := auth.NewJWTManager("test-secret", time.Hour)
	r := newRouter(m)

	get := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := get("/private?tab=1", "")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("anonymous: status %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?next=%2Fprivate%3Ftab%3D1" {
		t.Errorf("redirect to %q", loc)
	}

	w = get("/private", testToken(t, m, false))
	if w.Code != http.StatusOK {
		t.Fatalf("signed in: status %d", w.Code)
	}
	if body := w.Body.String(); !strings.HasPrefix(body, "olena@example.com ") || strings.HasSuffix(body, " ") {
		t.Errorf("unexpected body %q", body)
	}

	if w = get("/admin", testToken(t, m, false)); w.Code != http.StatusForbidden {
		t.Errorf("non-admin: status %d, want 403", w.Code)
	}
	if w = get("/admin", testToken(t, m, true)); w.Code != http.StatusNoContent {
		t.Errorf("admin: status %d, want 204", w.Code)
	}
}
