// Package web serves the HTML pages of the application with gin.
//
// Pages share the session cookie of the Connect API; the templates are embedded in the binary.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/smakolyk/internal/auth"
	"github.com/mmynk/smakolyk/internal/history"
	"github.com/mmynk/smakolyk/internal/jobs"
	"github.com/mmynk/smakolyk/internal/menuimport"
	"github.com/mmynk/smakolyk/internal/middleware"
	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/ordering"
	"github.com/mmynk/smakolyk/internal/schedule"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	loginPath        = "/login"
	defaultMaxUpload = 10 << 20
)

// Store is the storage the pages read and write directly.
type Store interface {
	auth.ProfileLookup
	GetMenu(ctx context.Context) (*models.Menu, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, profile models.Profile) error
}

// Deps are the components behind the pages.
type Deps struct {
	Store         Store
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	Intake        *ordering.Intake
	History       *history.Service
	Importer      *menuimport.Importer

	// Enqueuer defers menu imports to the worker. When nil, uploads are imported immediately.
	Enqueuer jobs.Enqueuer

	Window        schedule.Window
	MaxUploadSize int64
	Logger        *slog.Logger
}

// Handler renders the pages.
type Handler struct {
	Deps
	templates *template.Template
	now       func() time.Time
}

// New parses the page templates.
func New(d Deps) (*Handler, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if d.MaxUploadSize <= 0 {
		d.MaxUploadSize = defaultMaxUpload
	}
	return &Handler{Deps: d, templates: tmpl, now: time.Now}, nil
}

func locationOf(w schedule.Window) *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}

// Register mounts the pages on r. Session must already be in r's middleware chain.
func (h *Handler) Register(r *gin.Engine) {
	r.SetHTMLTemplate(h.templates)
	r.MaxMultipartMemory = h.MaxUploadSize

	r.GET("/", h.welcome)
	r.GET("/home", h.home)
	r.GET(loginPath, h.loginForm)
	r.POST(loginPath, h.login)
	r.GET("/signup", h.signupForm)
	r.POST("/signup", h.signup)
	r.POST("/logout", h.logout)

	user := r.Group("/", middleware.RequireLogin(loginPath))
	user.GET("/signup/success", h.page("signup_success.html"))
	user.GET("/order", h.orderForm)
	user.POST("/order", h.submitOrder)
	user.GET("/order/success", h.page("order_success.html"))
	user.GET("/order/exists", h.orderExists)
	user.GET("/order/closed", h.page("order_closed.html"))
	user.GET("/history", h.history)
	user.GET("/profile", h.profile)
	user.GET("/profile/edit", h.profileForm)
	user.POST("/profile/edit", h.editProfile)

	admin := r.Group("/admin", middleware.RequireLogin(loginPath), middleware.RequireAdmin())
	admin.GET("/menu", h.menuForm)
	admin.POST("/menu", h.uploadMenu)
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format(models.DateLayout) },
	"categoryLabel": func(name string) string {
		s := strings.ReplaceAll(name, "_", " ")
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Session"] = middleware.Claims(c)
	c.HTML(status, name, data)
}

func (h *Handler) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.render(c, http.StatusOK, name, nil)
	}
}

// fail logs err and answers 500.
func (h *Handler) fail(c *gin.Context, msg string, err error) {
	h.Logger.Error(msg, "path", c.Request.URL.Path, "user_id", middleware.GetUserID(c.Request.Context()), "error", err)
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

// currentUser loads the signed-in user. When it cannot, the response is already written:
// a 500 on storage failure, or a redirect to the login page when the account is gone.
func (h *Handler) currentUser(c *gin.Context) (*models.User, bool) {
	claims := middleware.Claims(c)
	if claims == nil {
		c.Redirect(http.StatusSeeOther, loginPath)
		return nil, false
	}
	user, err := h.Store.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.fail(c, "Failed to load user", err)
		return nil, false
	}
	if user == nil || !user.IsActive {
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
		c.Redirect(http.StatusSeeOther, loginPath)
		return nil, false
	}
	return user, true
}

func (h *Handler) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.JWT.TTL().Seconds()), "/", "", c.Request.TLS != nil, true)
}

func (h *Handler) welcome(c *gin.Context) {
	h.render(c, http.StatusOK, "welcome.html", nil)
}

// home shows the current menu three rows at a time and the days of the upcoming week.
func (h *Handler) home(c *gin.Context) {
	menu, err := h.Store.GetMenu(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to read menu", err)
		return
	}
	h.render(c, http.StatusOK, "home.html", gin.H{
		"Categories": models.Categories,
		"Chunks":     chunk(menu.Rows(), 3),
		"Days":       ordering.Days(h.Intake.Week()),
	})
}

func chunk(rows []models.Row, size int) [][]models.Row {
	var out [][]models.Row
	for len(rows) > size {
		out = append(out, rows[:size])
		rows = rows[size:]
	}
	if len(rows) > 0 {
		out = append(out, rows)
	}
	return out
}
