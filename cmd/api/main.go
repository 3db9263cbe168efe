package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/portfolio-site/portfolio-api/config"
	"github.com/portfolio-site/portfolio-api/internal/database/postgres"
	"github.com/portfolio-site/portfolio-api/internal/handlers"
	"github.com/portfolio-site/portfolio-api/internal/middleware"
	"github.com/portfolio-site/portfolio-api/internal/repository"
	"github.com/portfolio-site/portfolio-api/internal/services"
	"github.com/portfolio-site/portfolio-api/pkg/db"
	"github.com/portfolio-site/portfolio-api/pkg/httpclient"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/mailer"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"github.com/portfolio-site/portfolio-api/pkg/profiling"
	"github.com/portfolio-site/portfolio-api/pkg/recaptcha"
	"github.com/portfolio-site/portfolio-api/pkg/storage"
	"github.com/portfolio-site/portfolio-api/pkg/tracing"
	"github.com/portfolio-site/portfolio-api/pkg/trigger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	contactBodyLimit = 100 * 1024
	logsBodyLimit    = 1 * 1024 * 1024
	adminBodyLimit   = 10 * 1024 * 1024 // base64 project images
)

type rateLimiters struct {
	general *middleware.RateLimiter
	contact *middleware.RateLimiter
	login   *middleware.RateLimiter
	admin   *middleware.RateLimiter
}

func newRateLimiters() *rateLimiters {
	return &rateLimiters{
		general: middleware.NewRateLimiter("general", 100, 200),  // 100 req/sec, burst of 200
		contact: middleware.NewRateLimiter("contact", 0.0167, 3), // 1 req/min, burst of 3 (prevent spam)
		login:   middleware.NewRateLimiter("login", 0.00667, 5),  // 2 req/5min, burst of 5 (password guessing)
		admin:   middleware.NewRateLimiter("admin", 10, 20),      // 10 req/sec, burst of 20
	}
}

func (rl *rateLimiters) Stop() {
	rl.general.Stop()
	rl.contact.Stop()
	rl.login.Stop()
	rl.admin.Stop()
}

// registerPublicRoutes registers the routes the SPA calls
func registerPublicRoutes(
	v1 *gin.RouterGroup,
	limiters *rateLimiters,
	projectHandler *handlers.ProjectHandler,
	contactHandler *handlers.ContactHandler,
	logsHandler *handlers.LogsHandler,
) {
	v1.GET("/projects", limiters.general.Middleware(), projectHandler.List)
	v1.GET("/projects/:id", limiters.general.Middleware(), projectHandler.Get)
	v1.POST("/contact", limiters.contact.Middleware(), middleware.BodySizeLimitMiddleware(contactBodyLimit), contactHandler.Submit)
	v1.POST("/logs", limiters.general.Middleware(), middleware.BodySizeLimitMiddleware(logsBodyLimit), logsHandler.ReceiveFrontendLogs)
}

// registerAdminRoutes registers the owner-only routes. They are skipped
// entirely when no admin password is configured.
func registerAdminRoutes(
	v1 *gin.RouterGroup,
	cfg *config.Config,
	limiters *rateLimiters,
	authService *services.AdminAuthService,
	authHandler *handlers.AdminAuthHandler,
	projectHandler *handlers.ProjectHandler,
	contactHandler *handlers.ContactHandler,
) {
	if !authService.Enabled() {
		logger.Warn("Admin routes disabled: ADMIN_PASSWORD / JWT_SECRET not configured")
		return
	}

	admin := v1.Group("/admin")
	admin.POST("/login", limiters.login.Middleware(), middleware.BodySizeLimitMiddleware(contactBodyLimit), authHandler.Login)
	admin.POST("/logout", authHandler.Logout)

	protected := admin.Group("")
	protected.Use(
		limiters.admin.Middleware(),
		middleware.AdminSessionMiddleware(authService.GetTokenManager(), cfg.Admin.CookieDomain, cfg.Admin.CookieSecure),
		middleware.BodySizeLimitMiddleware(adminBodyLimit),
	)
	protected.GET("/session", authHandler.GetSession)
	protected.POST("/projects", projectHandler.Create)
	protected.PUT("/projects/:id", projectHandler.Save)
	protected.DELETE("/projects/:id", projectHandler.Delete)
	protected.POST("/projects/:id/image", projectHandler.UploadImage)
	protected.GET("/contact-messages", contactHandler.ListMessages)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting portfolio API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.Bool("offline", cfg.Database.WorkOffline),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(tracing.Options{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.ExporterEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.Start(profiling.Options{
		Enabled:           cfg.Profiling.Enabled,
		Endpoint:          cfg.Profiling.Endpoint,
		AppName:           cfg.Profiling.AppName,
		SampleTypes:       cfg.Profiling.SampleTypes,
		UploadInterval:    time.Duration(cfg.Profiling.UploadIntervalSeconds) * time.Second,
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
	})
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	// Check the SPA bundle before anything else; without the mount
	// element the site cannot start
	spaHandler, err := handlers.NewSPAHandler(cfg.Site.DistDir, cfg.Site.MountID)
	if err != nil {
		logger.Fatal("Failed to load single-page application", zap.Error(err))
	}

	// Data sources: PostgreSQL, or the YAML catalog in offline mode
	var (
		projectSource repository.ProjectDataSource
		messageStore  repository.ContactMessageStore
		pingDatabase  func(ctx context.Context) error
	)
	if cfg.Database.WorkOffline {
		logger.Warn("Offline mode: projects are read-only and contact messages are kept in memory",
			zap.String("catalog", cfg.Projects.CatalogPath))
		projectSource = repository.NewFileProjectDataSource(cfg.Projects.CatalogPath)
		messageStore = repository.NewMemoryContactMessageStore(repository.DefaultMemoryStoreCapacity)
	} else {
		pool, poolErr := db.NewPool(context.Background(), db.Options{
			URL:           cfg.Database.URL,
			CACertPath:    cfg.Database.CACertPath,
			TLSServerName: cfg.Database.TLSServer,
			MaxConns:      cfg.Database.MaxConns,
			MinConns:      cfg.Database.MinConns,
		})
		if poolErr != nil {
			logger.Fatal("Failed to initialize database connection pool", zap.Error(poolErr))
		}
		defer db.Close(pool)

		// Migrations are applied separately by cmd/migrate
		dbClient := postgres.NewClient(pool)
		projectSource = repository.NewPostgresProjectDataSource(dbClient)
		messageStore = repository.NewPostgresContactMessageStore(dbClient)
		pingDatabase = dbClient.Ping
	}

	// Populate the project cache before accepting requests so the
	// container is only marked healthy with data in place
	projectRepo := repository.NewProjectRepository(projectSource, cfg.Projects.CacheTTLSeconds)
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := projectRepo.Initialize(initCtx); err != nil {
		initCancel()
		logger.Fatal("Failed to initialize project cache", zap.Error(err))
	}
	initCancel()
	defer projectRepo.Stop()

	// Outbound integrations
	httpClient := httpclient.NewStandardClient()
	webhook := trigger.NewWebhook(cfg.Contact.WebhookURL, httpClient)
	captcha := recaptcha.NewVerifier(cfg.Contact.RecaptchaSecretKey, httpClient)
	ownerMailer := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		UseTLS:   cfg.SMTP.UseTLS,
	}, cfg.Contact.NotifyTo)

	var imageStorage services.ImageStorage
	if cfg.StorageEnabled() {
		imageStorage = storage.NewClient(storage.Options{
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			BucketName:      cfg.Storage.BucketName,
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
	} else {
		logger.Warn("Project image uploads disabled: STORAGE_* not configured")
	}

	logger.Info("Integrations configured",
		zap.Bool("webhook", webhook.Enabled()),
		zap.Bool("recaptcha", captcha.Enabled()),
		zap.Bool("email", ownerMailer.Enabled()),
		zap.Bool("storage", imageStorage != nil))

	// Initialize services
	contactService := services.NewContactService(messageStore, captcha, webhook, ownerMailer)
	projectService := services.NewProjectService(projectRepo, imageStorage)
	adminAuthService := services.NewAdminAuthService(cfg.Admin)

	// Initialize handlers
	projectHandler := handlers.NewProjectHandler(projectService)
	contactHandler := handlers.NewContactHandler(contactService)
	adminAuthHandler := handlers.NewAdminAuthHandler(adminAuthService)
	healthHandler := handlers.NewHealthHandler(handlers.HealthChecks{
		ProjectsReady: projectRepo.IsReady,
		PingDatabase:  pingDatabase,
		WebhookState:  webhook.State,
	})
	frontendLog := logger.NewRotatingWriter(cfg.Logging.Dir, handlers.FrontendLogFile)
	defer frontendLog.Close()
	logsHandler := handlers.NewLogsHandler(frontendLog)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(middleware.SecurityOptions{
		ImageBaseURL: cfg.Storage.PublicBaseURL,
		Captcha:      cfg.Contact.RecaptchaSecretKey != "",
	}))

	allowedOrigins := cfg.Server.AllowedOrigins
	// Vite dev server
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:5173", "http://127.0.0.1:5173")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for the admin session cookie
		MaxAge:           12 * time.Hour,
	}))

	limiters := newRateLimiters()
	defer limiters.Stop()

	api := router.Group("/api", middleware.NoStoreMiddleware())
	// Utility endpoints (not versioned - operational endpoints)
	api.GET("/healthcheck", limiters.general.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", limiters.general.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := api.Group("/v1")
	registerPublicRoutes(v1, limiters, projectHandler, contactHandler, logsHandler)
	registerAdminRoutes(v1, cfg, limiters, adminAuthService, adminAuthHandler, projectHandler, contactHandler)

	// Everything else is the single-page application
	router.NoRoute(spaHandler.Serve)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB max header size
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
