package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/smakolyk/internal/app"
	"github.com/mmynk/smakolyk/internal/auth"
	"github.com/mmynk/smakolyk/internal/config"
	"github.com/mmynk/smakolyk/internal/history"
	"github.com/mmynk/smakolyk/internal/jobs"
	"github.com/mmynk/smakolyk/internal/menuimport"
	"github.com/mmynk/smakolyk/internal/metrics"
	"github.com/mmynk/smakolyk/internal/middleware"
	"github.com/mmynk/smakolyk/internal/notify"
	"github.com/mmynk/smakolyk/internal/ordering"
	"github.com/mmynk/smakolyk/internal/schedule"
	"github.com/mmynk/smakolyk/internal/service"
	"github.com/mmynk/smakolyk/internal/web"
	"github.com/mmynk/smakolyk/pkg/api/apiconnect"
	"github.com/mmynk/smakolyk/pkg/logging"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	logger := logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg.DB, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if *migrateOnly {
		logger.Info("Migrations applied")
		return
	}

	authenticator := auth.NewPasswordAuthenticator(store)
	if admin, err := authenticator.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Error("Failed to seed admin", "error", err)
		os.Exit(1)
	} else if admin != nil {
		logger.Info("Admin account ready", "email", admin.Email)
	}
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	m := metrics.New()
	window := schedule.FromConfig(cfg.Ordering)
	notifier := notify.NewNotifier(app.NewSender(cfg.Mail, logger), cfg.Mail, logger)
	guard := ordering.NewBudgetGuard(cfg.Ordering.BudgetCeiling, notifier, m, logger)
	intake := ordering.NewIntake(store, window, guard, m, logger)
	hist := history.NewService(store, window)
	importer := menuimport.NewImporter(store, cfg.Menu, m, logger)

	var enqueuer jobs.Enqueuer
	if cfg.Queue.RedisAddr != "" {
		client := jobs.NewClient(cfg.Queue.RedisAddr)
		defer client.Close()
		enqueuer = client
	} else {
		logger.Warn("No task queue configured, menu uploads are imported immediately")
	}

	pages, err := web.New(web.Deps{
		Store:         store,
		Authenticator: authenticator,
		JWT:           jwtManager,
		Intake:        intake,
		History:       hist,
		Importer:      importer,
		Enqueuer:      enqueuer,
		Window:        window,
		MaxUploadSize: cfg.Menu.MaxFileSize,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("Failed to initialize pages", "error", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger),
		middleware.Metrics(m),
		middleware.CORS(cfg.HTTP.AllowedOrigins...),
		middleware.Session(jwtManager),
	)

	// Register Connect services
	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, apiconnect.PublicProcedures...),
		middleware.LoggingInterceptor(logger),
	)
	mount := func(path string, h http.Handler) {
		r.Any(path+"*procedure", gin.WrapH(h))
	}
	mount(apiconnect.NewAuthServiceHandler(service.NewAuthService(authenticator, store, jwtManager, logger), interceptors))
	mount(apiconnect.NewProfileServiceHandler(service.NewProfileService(store, logger), interceptors))
	mount(apiconnect.NewMenuServiceHandler(service.NewMenuService(store, logger), interceptors))
	mount(apiconnect.NewOrderServiceHandler(service.NewOrderService(intake, store, logger), interceptors))
	mount(apiconnect.NewHistoryServiceHandler(service.NewHistoryService(hist, store, logger), interceptors))

	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if cfg.HTTP.StaticPath != "" {
		r.Static("/static", cfg.HTTP.StaticPath)
		logger.Info("Serving static files", "path", cfg.HTTP.StaticPath)
	}
	pages.Register(r)

	// h2c serves HTTP/2 without TLS for Connect clients.
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           h2c.NewHandler(r, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}()

	logger.Info("Server starting", "address", cfg.HTTP.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
