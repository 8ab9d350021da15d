package main

import (
	"fmt"
	"net/http"
	"os"

	"tradefolio/internal/config"
	"tradefolio/internal/database"
	"tradefolio/internal/handlers"
	"tradefolio/internal/logger"
	"tradefolio/internal/middleware"
	"tradefolio/internal/services"
	"tradefolio/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "tradefolio/internal/docs" // Import swagger docs
)

// @title           Tradefolio API
// @version         1.0
// @description     Tradefolio is a portfolio-tracking backend that manages user accounts, cash balances, ledger transactions, and stock holdings.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	ledgerService := services.NewLedgerService(db)
	holdingService := services.NewHoldingService(db)
	portfolioService := services.NewPortfolioService(db, userService)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, auditService)
	holdingHandler := handlers.NewHoldingHandler(holdingService, auditService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", ledgerHandler.CreateTransaction)
	transactions.GET("", ledgerHandler.GetTransactions)
	transactions.GET("/recent", ledgerHandler.GetRecentTransactions)
	transactions.GET("/summary", ledgerHandler.GetTransactionSummary)
	transactions.GET("/:id", ledgerHandler.GetTransactionByID)

	// Holding routes
	holdings := protected.Group("/holdings")
	holdings.POST("", holdingHandler.CreateHolding)
	holdings.GET("", holdingHandler.GetHoldings)
	holdings.GET("/profitable", holdingHandler.GetProfitable)
	holdings.GET("/losing", holdingHandler.GetLosing)
	holdings.GET("/:id", holdingHandler.GetHoldingByID)
	holdings.PUT("/:id/price", holdingHandler.UpdatePrice)
	holdings.DELETE("/:id", holdingHandler.SellHolding)

	// Portfolio routes
	portfolio := protected.Group("/portfolio")
	portfolio.GET("/summary", portfolioHandler.GetSummary)
	portfolio.GET("/performance", portfolioHandler.GetPerformance)
	portfolio.POST("/snapshots", portfolioHandler.TakeSnapshot)
	portfolio.GET("/snapshots", portfolioHandler.GetSnapshots)

	log.Infof("Starting Tradefolio backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
