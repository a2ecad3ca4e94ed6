package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/crm/backend/internal/application/billing"
	identityapp "github.com/crm/backend/internal/application/identity"
	partnerapp "github.com/crm/backend/internal/application/partner"
	settingsapp "github.com/crm/backend/internal/application/settings"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/event"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/scheduler"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/crm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting CRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)
	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret is required to sign tokens")
	}

	ctx := context.Background()

	// Telemetry first so the database plugin and middleware see the global providers
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdownTelemetry(log, tracerProvider, meterProvider)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel),
		logger.WithSlowThreshold(cfg.Database.SlowThreshold))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if stats, err := db.Stats(); err == nil {
			log.Info("Closing database",
				zap.Int("open_connections", stats.OpenConnections),
				zap.Int64("wait_count", stats.WaitCount),
			)
		}
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to create sqlite schema", zap.Error(err))
		}
	}
	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	// Stats cache and token blacklist, Redis when configured
	stores := cache.NewStores(ctx, cfg.Redis, log)
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()

	// Repositories
	allocator := persistence.NewSequenceAllocator()
	userRepo := persistence.NewGormUserRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB, allocator)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB, allocator, log)
	companyInfoRepo := persistence.NewGormCompanyInfoRepository(db.DB)

	// Event bus: stats invalidation and billing metrics follow every billing event
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(cache.NewStatsInvalidator(stores.Stats))
	billingMetrics, err := telemetry.NewBillingMetrics(meterProvider.Meter("crm.billing"))
	if err != nil {
		log.Fatal("Failed to register billing metrics", zap.Error(err))
	}
	eventBus.Subscribe(billingMetrics)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	billingCfg := billingapp.ServiceConfig{
		DefaultCurrency: cfg.Billing.DefaultCurrency,
		DefaultDueDays:  cfg.Billing.DefaultDueDays,
		NumberRetries:   cfg.Billing.NumberRetries,
		RetryBaseDelay:  cfg.Billing.NumberRetryDelay,
	}
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, clientRepo, stores.Stats, billingCfg, log)
	quoteService := billingapp.NewQuoteService(quoteRepo, clientRepo, stores.Stats, billingCfg, log)
	sweepService := billingapp.NewStatusSweepService(invoiceRepo, quoteRepo, cfg.Scheduler.SweepBatch, log)
	clientService := partnerapp.NewClientService(clientRepo, companyRepo, invoiceRepo, stores.Stats, log)
	companyService := partnerapp.NewCompanyService(companyRepo, clientRepo, stores.Stats, log)
	settingsService := settingsapp.NewService(companyInfoRepo, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, stores.Blacklist, log)
	userService := identityapp.NewUserService(userRepo, jwtService, stores.Blacklist, log)

	invoiceService.SetDefaultsSource(settingsService)
	quoteService.SetDefaultsSource(settingsService)
	invoiceService.SetEventPublisher(eventBus)
	quoteService.SetEventPublisher(eventBus)
	sweepService.SetEventPublisher(eventBus)
	authService.SetEventPublisher(eventBus)
	userService.SetEventPublisher(eventBus)

	if _, err := userService.SeedAdmin(ctx, identityapp.SeedAdminInput{
		Email:     cfg.Seed.AdminEmail,
		Password:  cfg.Seed.AdminPassword,
		FirstName: cfg.Seed.AdminFirstName,
		LastName:  cfg.Seed.AdminLastName,
	}); err != nil {
		log.Fatal("Failed to seed admin account", zap.Error(err))
	}

	// Background jobs
	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	sweeper, err := scheduler.NewStatusSweeper(sweepService, scheduler.StatusSweeperConfig{
		Enabled:    cfg.Scheduler.Enabled,
		Interval:   cfg.Scheduler.SweepInterval,
		Timeout:    cfg.Scheduler.JobTimeout,
		RunOnStart: true,
	}, log)
	if err != nil {
		log.Fatal("Invalid scheduler configuration", zap.Error(err))
	}
	if err := sweeper.Start(bgCtx); err != nil {
		log.Fatal("Failed to start status sweeper", zap.Error(err))
	}
	defer func() {
		if err := sweeper.Stop(context.Background()); err != nil {
			log.Error("Error stopping status sweeper", zap.Error(err))
		}
	}()

	var loginLimit gin.HandlerFunc
	if cfg.HTTP.LoginRateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
		go limiter.Run(bgCtx)
		loginLimit = middleware.RateLimit(limiter)
		log.Info("Login rate limiting enabled",
			zap.Int("requests", cfg.HTTP.LoginRateLimit),
			zap.Duration("window", cfg.HTTP.LoginRateWindow),
		)
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.MetricsEnabled,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	systemHandler := handler.NewSystemHandler(version, healthChecks(db, stores))
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = stores.Blacklist
	jwtConfig.Logger = log
	routes := router.RegisterAPI(r, router.APIHandlers{
		Auth:      handler.NewAuthHandler(authService),
		Users:     handler.NewUserHandler(userService),
		Invoices:  handler.NewInvoiceHandler(invoiceService),
		Quotes:    handler.NewQuoteHandler(quoteService),
		Clients:   handler.NewClientHandler(clientService),
		Companies: handler.NewCompanyHandler(companyService),
		Settings:  handler.NewSettingsHandler(settingsService),
		System:    systemHandler,
	}, router.APIMiddleware{
		Authenticate: middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		RequireAdmin: middleware.RequireAdmin(),
		LoginLimit:   loginLimit,
	})
	r.Setup()
	for _, rt := range routes {
		log.Debug("Route registered", zap.String("method", rt.Method), zap.String("path", rt.Path))
	}
	log.Info("API routes registered", zap.Int("count", len(routes)), zap.String("base_path", r.BasePath()))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopBackground()

	log.Info("Server exited")
}

func healthChecks(db *persistence.Database, stores *cache.Stores) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if stores.Client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return stores.Client.Ping(ctx).Err()
		}
	}
	return checks
}

func shutdownTelemetry(log *zap.Logger, tp *telemetry.TracerProvider, mp *telemetry.MeterProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
}
