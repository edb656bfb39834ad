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

	"rumfor-market.backend/internal/config"
	"rumfor-market.backend/internal/infrastructure/drafts"
	"rumfor-market.backend/internal/infrastructure/jobs"
	"rumfor-market.backend/internal/infrastructure/repositories"
	"rumfor-market.backend/internal/interfaces/http/handlers"
	"rumfor-market.backend/internal/interfaces/http/middleware"
	"rumfor-market.backend/internal/usecases"
	"rumfor-market.backend/pkg/jwt"
	"rumfor-market.backend/pkg/logger"
	"rumfor-market.backend/pkg/redis"
)

var (
	loadDotenv   = godotenv.Load
	loadCfg      = config.Load
	initLog      = logger.Init
	connectRedis = redis.Connect
	openDB       = func(dsn string) (*gorm.DB, error) {
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

	// Initialize Redis (draft snapshot store)
	redisClient, err := connectRedis(cfg.Redis.URL, cfg.Redis.PASSWORD)
	if err != nil {
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
		log.Printf("Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("Connected to PostgreSQL via GORM")
	}

	// Initialize JWT service
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	// Initialize repositories
	applicationRepo := repositories.NewApplicationRepository(db)
	marketRepo := repositories.NewMarketRepository(db)

	// Draft snapshot store and debounced autosave
	draftStore := drafts.NewRedisStore(redisClient, cfg.Form.DraftTTL)
	autosave := usecases.NewAutosaveScheduler(draftStore, cfg.Form.AutosaveDebounce)

	// Initialize usecases
	applicationUsecase := usecases.NewApplicationUsecase(applicationRepo, marketRepo, draftStore, autosave)
	marketUsecase := usecases.NewMarketUsecase(marketRepo)

	// Initialize handlers
	applicationHandler := handlers.NewApplicationHandler(applicationUsecase)
	marketHandler := handlers.NewMarketHandler(marketUsecase)

	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expiryJob := jobs.NewDraftDeadlineExpiryJob(applicationRepo, cfg.Form.ExpirySweep)
	go expiryJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		applicationHandler: applicationHandler,
		marketHandler:      marketHandler,
		authMiddleware:     authMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		expiryJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("Rumfor Market Backend starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
