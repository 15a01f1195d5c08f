package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	budgetapp "github.com/quoteflow/backend/internal/application/budget"
	businessapp "github.com/quoteflow/backend/internal/application/business"
	expenseapp "github.com/quoteflow/backend/internal/application/expense"
	ledgerapp "github.com/quoteflow/backend/internal/application/ledger"
	"github.com/quoteflow/backend/internal/infrastructure/auth"
	"github.com/quoteflow/backend/internal/infrastructure/cache"
	"github.com/quoteflow/backend/internal/infrastructure/config"
	"github.com/quoteflow/backend/internal/infrastructure/event"
	"github.com/quoteflow/backend/internal/infrastructure/logger"
	"github.com/quoteflow/backend/internal/infrastructure/persistence"
	"github.com/quoteflow/backend/internal/infrastructure/telemetry"
	"github.com/quoteflow/backend/internal/interfaces/http/handler"
	"github.com/quoteflow/backend/internal/interfaces/http/middleware"
	"github.com/quoteflow/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting QuoteFlow Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry.Enabled, cfg.Database.DBName, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	budgetRepo := persistence.NewGormBudgetRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	businessRepo := persistence.NewGormBusinessRepository(db.DB)
	budgetScope := persistence.NewGormBudgetTransactionScope(db.DB)
	expenseScope := persistence.NewGormExpenseTransactionScope(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	versioningService := budgetapp.NewVersioningService(budgetRepo, businessRepo, budgetScope, eventBus, nil)
	paymentService := budgetapp.NewPaymentService(budgetRepo, paymentRepo, ledgerRepo, budgetScope, nil, eventBus)
	expenseService := expenseapp.NewService(expenseRepo, expenseScope, eventBus)
	ledgerService := ledgerapp.NewQueryService(ledgerRepo)
	businessService := businessapp.NewService(businessRepo)
	jwtService := auth.NewJWTService(cfg.JWT)

	// Public quote view cache. Redis when configured, in-process otherwise.
	var viewCache cache.QuoteViewCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisQuoteViewCache(cfg.Redis, cfg.Quote.PublicViewCacheTTL)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		viewCache = redisCache
		log.Info("Quote view cache backed by redis",
			zap.String("host", cfg.Redis.Host),
			zap.Duration("ttl", cfg.Quote.PublicViewCacheTTL),
		)
	} else {
		viewCache = cache.NewInMemoryQuoteViewCache(cfg.Quote.PublicViewCacheTTL)
		log.Info("Quote view cache is in-process", zap.Duration("ttl", cfg.Quote.PublicViewCacheTTL))
	}

	// HTTP handlers
	quoteHandler := handler.NewQuoteHandler(versioningService, viewCache)
	publicQuoteHandler := handler.NewPublicQuoteHandler(versioningService, viewCache)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	businessHandler := handler.NewBusinessHandler(businessService)
	healthHandler := handler.NewHealthHandler(db, version)

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
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Probes stay outside the versioned API. The shared quote view lives
	// under the API version but skips authentication.
	engine.GET("/healthz", healthHandler.Liveness)
	engine.GET("/readyz", healthHandler.Readiness)
	engine.GET("/api/v1/public/quotes/:token", publicQuoteHandler.GetByToken)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/businesses",
		},
	}))

	// Quote revisions
	quoteRoutes := router.NewDomainGroup("quotes", "/quotes")
	quoteRoutes.POST("", quoteHandler.Create)
	quoteRoutes.GET("", quoteHandler.List)
	quoteRoutes.GET("/:id", quoteHandler.Get)
	quoteRoutes.PUT("/:id", quoteHandler.Supersede)
	quoteRoutes.GET("/:id/history", quoteHandler.History)
	quoteRoutes.POST("/:id/payments/validate", paymentHandler.Validate)
	quoteRoutes.POST("/:id/payments", paymentHandler.Register)
	quoteRoutes.GET("/:id/payments", paymentHandler.ListByBudget)

	// Payments addressed directly
	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.GET("/:id", paymentHandler.Get)
	paymentRoutes.PATCH("/:id", paymentHandler.Amend)
	paymentRoutes.POST("/:id/void", paymentHandler.Void)
	paymentRoutes.DELETE("/:id", paymentHandler.Delete)

	// Expenses
	expenseRoutes := router.NewDomainGroup("expenses", "/expenses")
	expenseRoutes.POST("", expenseHandler.Record)
	expenseRoutes.GET("", expenseHandler.List)
	expenseRoutes.GET("/:id", expenseHandler.Get)
	expenseRoutes.PATCH("/:id", expenseHandler.Amend)
	expenseRoutes.POST("/:id/pay", expenseHandler.MarkPaid)
	expenseRoutes.POST("/:id/void", expenseHandler.Void)
	expenseRoutes.DELETE("/:id", expenseHandler.Delete)

	// Ledger (read-only)
	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.GET("/movements", ledgerHandler.List)
	ledgerRoutes.GET("/movements/:id", ledgerHandler.Get)
	ledgerRoutes.GET("/summary", ledgerHandler.Summary)

	// Businesses. Registration is public, the rest requires a token.
	businessRoutes := router.NewDomainGroup("businesses", "/businesses")
	businessRoutes.POST("", businessHandler.Create)
	businessRoutes.GET("/me", businessHandler.Get)
	businessRoutes.PUT("/settings", businessHandler.UpdateSettings)

	r.Register(quoteRoutes).
		Register(paymentRoutes).
		Register(expenseRoutes).
		Register(ledgerRoutes).
		Register(businessRoutes)

	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
