// Package server assembles the HTTP routes of the fund ledger API.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fundledger/internal/handlers"
	"fundledger/internal/middleware"
	"fundledger/internal/services"
)

// ReceiptsPath is where a local receipt directory is mounted.
const ReceiptsPath = "/receipts"

// Options tune the router.
type Options struct {
	CORSOrigins     []string
	RequestTimeout  time.Duration
	RecentLimit     int
	MaxReceiptBytes int64
	ServiceAPIKey   string
	// ReceiptsDir is served under ReceiptsPath when set.
	ReceiptsDir string
	// Swagger mounts the API docs at /swagger.
	Swagger bool
}

// Services are the collaborators behind the handlers.
type Services struct {
	Users        services.UserServicer
	Persons      services.PersonServicer
	Transactions services.TransactionServicer
	Dashboard    services.DashboardServicer
	Receipts     services.ReceiptUploader
	Tokens       *middleware.TokenManager
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(opts Options, svc Services) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Tokens)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, opts.RecentLimit)
	personHandler := handlers.NewPersonHandler(svc.Persons)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	receiptHandler := handlers.NewReceiptHandler(svc.Receipts, opts.MaxReceiptBytes)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	if opts.ReceiptsDir != "" {
		router.Static(ReceiptsPath, opts.ReceiptsDir)
	}
	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	if opts.RequestTimeout > 0 {
		v1.Use(middleware.RequestTimeout(opts.RequestTimeout))
	}

	// Public dashboard
	v1.GET("/summary", dashboardHandler.GetSummary)
	v1.GET("/exchange-rate", dashboardHandler.GetExchangeRate)
	v1.GET("/categories", handlers.ListCategories)
	v1.GET("/categories/breakdown", dashboardHandler.GetCategoryBreakdown)
	v1.GET("/transactions", transactionHandler.ListTransactions)
	v1.GET("/transactions/recent", transactionHandler.RecentTransactions)
	v1.GET("/transactions/:id", transactionHandler.GetTransactionByID)
	v1.GET("/persons", personHandler.ListPersons)

	// Auth
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(svc.Tokens))
	protected.GET("/profile", authHandler.GetProfile)

	// Admin
	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/transactions", transactionHandler.CreateTransaction)
	admin.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)
	admin.POST("/persons", personHandler.CreatePerson)
	admin.DELETE("/persons/:id", personHandler.DeletePerson)
	admin.POST("/receipts", receiptHandler.UploadReceipt)

	// Service routes (API key auth)
	service := v1.Group("/internal")
	service.Use(middleware.ServiceKeyAuth(opts.ServiceAPIKey))
	service.POST("/exchange-rate/refresh", dashboardHandler.RefreshExchangeRate)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Authorization", "X-Request-ID", "X-API-Key"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
