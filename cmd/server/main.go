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
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"spot-deposits.backend/internal/config"
	"spot-deposits.backend/internal/infrastructure/blockchain"
	"spot-deposits.backend/internal/infrastructure/jobs"
	"spot-deposits.backend/internal/infrastructure/models"
	"spot-deposits.backend/internal/infrastructure/repositories"
	"spot-deposits.backend/internal/interfaces/http/handlers"
	"spot-deposits.backend/internal/interfaces/http/middleware"
	"spot-deposits.backend/internal/usecases"
	"spot-deposits.backend/pkg/jwt"
	"spot-deposits.backend/pkg/logger"
	"spot-deposits.backend/pkg/redis"
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

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

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
		if err := db.AutoMigrate(&models.Wallet{}, &models.Token{}, &models.Transaction{}); err != nil {
			log.Printf("⚠️ Auto-migration failed: %v", err)
		}
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize repositories
	walletRepo := repositories.NewWalletRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	trxRepo := repositories.NewTransactionRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize blockchain client factory and per-chain gateways
	clientFactory := blockchain.NewClientFactory()
	gateways := blockchain.NewGateways(cfg.Chains, clientFactory)

	// Initialize usecases
	provisioner := usecases.NewWalletProvisioner(uow, walletRepo, tokenRepo)
	depositUsecase := usecases.NewDepositUsecase(uow, walletRepo, trxRepo, tokenRepo)
	monitorManager := usecases.NewMonitorManager(provisioner, tokenRepo, depositUsecase, gateways, cfg.Deposit)

	// Initialize handlers
	depositHandler := handlers.NewDepositHandler(depositUsecase, monitorManager)

	// Auth middleware
	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	verificationJob := jobs.NewPendingVerificationJob(depositUsecase, trxRepo, walletRepo, tokenRepo, gateways, cfg.Deposit)
	go verificationJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		depositHandler: depositHandler,
		authMiddleware: authMiddleware,
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
		verificationJob.Stop()
		monitorManager.Shutdown()
		cancel()
	}()

	// Start server
	log.Printf("🚀 Spot Deposits Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
