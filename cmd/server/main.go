package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mountainshares.backend/internal/config"
	"mountainshares.backend/internal/infrastructure/blockchain"
	"mountainshares.backend/internal/infrastructure/jobs"
	"mountainshares.backend/internal/infrastructure/notify"
	"mountainshares.backend/internal/infrastructure/repositories"
	"mountainshares.backend/internal/interfaces/http/handlers"
	"mountainshares.backend/internal/interfaces/http/middleware"
	"mountainshares.backend/internal/usecases"
	"mountainshares.backend/pkg/logger"
	"mountainshares.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	dialChain = blockchain.NewEVMClient
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis. The idempotency fast path degrades to the durable
	// Postgres gate when Redis is unavailable, so this failure is not fatal.
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		log.Printf("⚠️ Redis not available: %v (idempotency falls back to Postgres)", err)
	} else {
		logger.Info(context.Background(), "Redis initialized")
	}

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Connect to Arbitrum
	evmClient, err := dialChain(cfg.Blockchain.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to chain RPC: %w", err)
	}
	defer evmClient.Close()
	log.Printf("✅ Connected to chain %s via %s", evmClient.ChainID(), cfg.Blockchain.RPCURL)

	settlementClient, err := blockchain.NewSettlementClient(
		evmClient.Backend(),
		evmClient.ChainID(),
		cfg.Blockchain.SignerPrivateKey,
		cfg.Blockchain.TokenAddress,
		cfg.Blockchain.StablecoinAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize settlement signer: %w", err)
	}
	log.Printf("🔑 Settlement signer: %s", settlementClient.SignerAddress())

	// Initialize repositories
	processedEventRepo := repositories.NewProcessedEventRepository(db)
	settlementRequestRepo := repositories.NewSettlementRequestRepository(db)
	feeTransferRepo := repositories.NewFeeTransferRepository(db)
	alertRepo := repositories.NewAlertRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize usecases
	breaker := usecases.NewSettlementBreaker(cfg.Settlement.FailureThreshold, cfg.Settlement.OpenDuration)
	feeEngine := usecases.NewFeeEngine(settlementClient, feeTransferRepo, cfg.Blockchain.CallTimeout)
	safetyStock := usecases.NewSafetyStock(settlementClient, alertRepo, cfg.Settlement.MinimumBuffer)
	settlementUsecase := usecases.NewSettlementUsecase(
		settlementRequestRepo, alertRepo, settlementClient, breaker, feeEngine, safetyStock,
		cfg.Settlement.Recipients, cfg.Blockchain.SettlementReserveAddress, cfg.Blockchain.CallTimeout,
	)
	webhookUsecase := usecases.NewWebhookUsecase(
		cfg.Stripe.WebhookSecret, cfg.Stripe.Tolerance, cfg.Settlement.FeeRate,
		processedEventRepo, settlementRequestRepo, settlementUsecase, uow,
		cfg.Settlement.SettleTimeout,
	)
	feeQuoteUsecase := usecases.NewFeeQuoteUsecase()

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(webhookUsecase)
	settlementHandler := handlers.NewSettlementHandler(settlementRequestRepo, feeTransferRepo)
	feeHandler := handlers.NewFeeHandler(feeQuoteUsecase, feeEngine)
	safetyStockHandler := handlers.NewSafetyStockHandler(safetyStock)
	alertHandler := handlers.NewAlertHandler(alertRepo)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var dispatchJob *jobs.AlertDispatchJob
	if cfg.Alerting.SlackWebhookURL != "" {
		notifier := notify.NewSlackNotifier(cfg.Alerting.SlackWebhookURL)
		dispatchJob = jobs.NewAlertDispatchJob(alertRepo, notifier, clockwork.NewRealClock(), cfg.Alerting.SweepInterval)
		go dispatchJob.Start(ctx)
	} else {
		log.Println("⚠️ SLACK_WEBHOOK_URL not set, alert dispatch disabled")
	}

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		webhookHandler:     webhookHandler,
		settlementHandler:  settlementHandler,
		feeHandler:         feeHandler,
		safetyStockHandler: safetyStockHandler,
		alertHandler:       alertHandler,
		opsAuthMiddleware:  middleware.OpsAuthMiddleware(cfg.Ops.Token),
	})

	// Print all registered routes for debugging
	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		if dispatchJob != nil {
			dispatchJob.Stop()
		}
		_ = redis.Close()
		logger.Sync()
		cancel()
	}()

	// Start server
	log.Printf("🚀 MountainShares Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
