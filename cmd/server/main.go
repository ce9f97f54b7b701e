package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GoLaunchpad/launchgate/internal/clock"
	"github.com/GoLaunchpad/launchgate/internal/config"
	"github.com/GoLaunchpad/launchgate/internal/handler"
	"github.com/GoLaunchpad/launchgate/internal/ledger"
	"github.com/GoLaunchpad/launchgate/internal/middleware"
	"github.com/GoLaunchpad/launchgate/internal/pkg/logger"
	"github.com/GoLaunchpad/launchgate/internal/repository"
	"github.com/GoLaunchpad/launchgate/internal/service"
	"github.com/GoLaunchpad/launchgate/internal/stream"
)

func main() {
	// 0. Initialize Logger
	logger.Init("info")

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Persistence (Postgres > Memory)
	var (
		ldg         ledger.Ledger
		registrySt  repository.RegistryStore
		saleSt      repository.SaleStore
		policySt    repository.PolicyStore
		allowlistSt repository.AllowlistStore
		auditRepo   service.AuditRepo
		idemStore   middleware.IdempotencyStore
	)

	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err == nil {
			logger.Info("✅ Connected to PostgreSQL")
			ldg = ledger.NewPostgres(db)
			registrySt = repository.NewPostgresRegistry(db)
			saleSt = repository.NewPostgresSaleStore(db)
			policySt = repository.NewPostgresPolicyStore(db)
			allowlistSt = repository.NewPostgresAllowlist(db)
			pgAudit := repository.NewPostgresAuditRepo(db)
			pgIdem := repository.NewPostgresIdempotencyStore(db)
			auditRepo = pgAudit
			idemStore = pgIdem
			go runRetention(cfg, pgAudit, pgIdem)
		} else {
			logger.Error("⚠️ Failed to connect to DB, falling back to memory", "error", err)
		}
	}
	if ldg == nil {
		ldg = ledger.NewMemory()
		registrySt = repository.NewMemoryRegistry()
		saleSt = repository.NewMemorySaleStore()
		policySt = repository.NewMemoryPolicyStore()
		allowlistSt = repository.NewMemoryAllowlist()
	}

	// Redis upgrades: allowlist and idempotency survive restarts, audit gets
	// a recent-history list when no database is around.
	if cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			if cfg.Database.DSN == "" {
				allowlistSt = repository.NewRedisAllowlist(redisClient)
				auditRepo = repository.NewRedisAuditRepo(redisClient, cfg.Redis.AuditListKey, cfg.Redis.AuditListMax)
			}
			idemStore = repository.NewRedisIdempotencyStore(redisClient, time.Duration(cfg.Redis.IdempotencyTTLSeconds)*time.Second)
		} else {
			logger.Error("⚠️ Failed to connect to Redis, falling back", "error", err)
		}
	}
	if idemStore == nil {
		idemStore = middleware.NewInMemIdempotencyStore()
	}

	// 3. Initialize Core Services
	hub := stream.NewHub()

	registrySvc := service.NewRegistryService(registrySt)
	saleEngine := service.NewSaleEngine(saleSt, ldg, clock.System{}, hub)
	policySvc := service.NewPolicyService(registrySt, policySt, allowlistSt, ldg, hub)
	authorizer := service.NewAuthorizer(policySt, allowlistSt, ldg, clock.System{})

	auditSvc, err := service.NewAuditService(cfg.Audit.LogDir, auditRepo)
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	limiters := middleware.NewCallerLimiters(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// 4. Initialize Handlers
	registryHandler := handler.NewRegistryHandler(registrySvc)
	saleHandler := handler.NewSaleHandler(saleEngine)
	policyHandler := handler.NewPolicyHandler(policySvc)
	hookHandler := handler.NewHookHandler(authorizer, hub)
	ledgerHandler := handler.NewLedgerHandler(ldg)
	auditHandler := handler.NewAuditHandler(auditSvc)
	streamHandler := handler.NewStreamHandler(hub)

	// 5. Setup Router
	r := gin.Default()

	// Global Middleware
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware(auditSvc))

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "launchgate"})
	})

	// Metrics Endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API V1 Routes
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg))
	v1.Use(middleware.RateLimitMiddleware(limiters))
	v1.Use(middleware.ReadOnlyMiddleware(cfg.ReadOnly))
	v1.Use(middleware.IdempotencyMiddleware(idemStore))
	{
		v1.POST("/registry", registryHandler.Initialize)
		v1.GET("/registry", registryHandler.Get)

		v1.POST("/sales", saleHandler.Initialize)
		v1.GET("/sales/:asset", saleHandler.Get)
		v1.POST("/sales/:asset/purchase", saleHandler.Purchase)

		v1.POST("/policies", policyHandler.Initialize)
		v1.GET("/policies/:asset", policyHandler.Get)
		v1.PUT("/policies/:asset", policyHandler.Edit)
		v1.PUT("/policies/:asset/flags", policyHandler.UpdateFlags)
		v1.POST("/policies/:asset/whitelist", policyHandler.AddToWhitelist)
		v1.DELETE("/policies/:asset/whitelist/:principal", policyHandler.RemoveFromWhitelist)
		v1.GET("/policies/:asset/whitelist/:principal", policyHandler.CheckWhitelist)

		v1.POST("/hooks/transfer", hookHandler.Authorize)

		v1.GET("/ledger/:asset/:principal", ledgerHandler.Balance)
		v1.GET("/audit", auditHandler.List)
		v1.GET("/stream", streamHandler.Subscribe)

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminMiddleware(cfg))
		{
			admin.POST("/fund", ledgerHandler.Fund)
		}
	}

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 LaunchGate started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hub.Close()
	auditSvc.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}

// runRetention prunes expired audit and idempotency rows on the configured
// interval.
func runRetention(cfg *config.Config, audit *repository.PostgresAuditRepo, idem *repository.PostgresIdempotencyStore) {
	interval := time.Duration(cfg.Database.CleanupIntervalMinutes) * time.Minute
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := audit.Cleanup(ctx, time.Duration(cfg.Database.AuditRetentionDays)*24*time.Hour); err != nil {
			logger.Error("Audit retention cleanup failed", "error", err)
		}
		if err := idem.Cleanup(ctx, time.Duration(cfg.Database.IdempotencyRetentionHours)*time.Hour); err != nil {
			logger.Error("Idempotency retention cleanup failed", "error", err)
		}
		cancel()
	}
}
