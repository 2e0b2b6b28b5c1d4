package main

import (
	"fmt"
	"kharcha/internal/clock"
	"kharcha/internal/config"
	"kharcha/internal/database"
	"kharcha/internal/handlers"
	"kharcha/internal/logger"
	"kharcha/internal/middleware"
	"kharcha/internal/services"
	"kharcha/internal/validator"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "kharcha/internal/docs" // Import swagger docs
)

// @title           Kharcha Budget API
// @version         1.0
// @description     Kharcha is the budget allocation and enforcement engine of an expense reporting platform: it manages time-boxed budgets per department, project, cost center, category or employee, tracks utilization, and decides whether expenses may proceed.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

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

	// Initialize services
	db := dbManager.DB()
	clk := clock.System()
	periodService := services.NewPeriodService(clk)
	auditService := services.NewAuditService(db)
	utilizationService := services.NewUtilizationService(db)
	budgetService := services.NewBudgetService(db, periodService, utilizationService, auditService, clk)
	enforcementService := services.NewEnforcementService(db, utilizationService)
	transferService := services.NewTransferService(db, utilizationService, auditService)

	// Initialize handlers
	budgetHandler := handlers.NewBudgetHandler(budgetService, utilizationService, enforcementService, transferService, auditService)
	periodHandler := handlers.NewPeriodHandler(periodService)

	// Register custom binding validators
	validator.Register()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")

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

	// API v1 group; the gateway injects the acting user's id
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Actor())

	// Budget routes
	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/summary", budgetHandler.GetBudgetSummary)
	budgets.POST("/check", budgetHandler.CheckExpense)
	budgets.POST("/transfer", budgetHandler.Transfer)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.RemoveBudget)
	budgets.GET("/:id/utilization", budgetHandler.GetUtilization)
	budgets.POST("/:id/check", budgetHandler.CheckBudget)
	budgets.POST("/:id/activate", budgetHandler.Activate)
	budgets.POST("/:id/close", budgetHandler.Close)
	budgets.POST("/:id/archive", budgetHandler.Archive)

	// Period routes
	periods := v1.Group("/periods")
	periods.GET("/dates", periodHandler.GetPeriodDates)
	periods.GET("/current", periodHandler.GetCurrentPeriod)

	log.Infof("Starting Kharcha backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
