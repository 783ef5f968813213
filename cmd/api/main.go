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

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"

	"fundledger/internal/blob"
	"fundledger/internal/config"
	"fundledger/internal/database"
	"fundledger/internal/exchangerate"
	"fundledger/internal/logger"
	"fundledger/internal/middleware"
	"fundledger/internal/server"
	"fundledger/internal/services"
	"fundledger/internal/validator"

	_ "fundledger/internal/docs" // Import swagger docs
)

// @title           Fund Ledger API
// @version         1.0
// @description     Transparency dashboard for a charitable fund: balances, recent activity, expense breakdowns and the balance in dollars.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Service API key for internal endpoints.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Exchange rate
	httpClient := &http.Client{Timeout: 10 * time.Second}
	rates := exchangerate.NewCache(
		exchangerate.NewDolarAPI(httpClient, appConfig.RateSourceURL),
		appConfig.RateTTL,
		appConfig.RateMaxStale,
	)
	if _, err := rates.Current(ctx); err != nil {
		log.Warnw("initial exchange rate fetch failed", "error", err)
	}

	// Receipts
	store, closeStore, err := newBlobStore(ctx, appConfig)
	if err != nil {
		return err
	}
	defer closeStore()

	// Services
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	transactionService := services.NewTransactionService(db, rates, auditService)

	validator.Register()

	opts := server.Options{
		CORSOrigins:     appConfig.CORSOrigins,
		RequestTimeout:  appConfig.RequestTimeout,
		RecentLimit:     appConfig.RecentLimit,
		MaxReceiptBytes: appConfig.MaxReceiptBytes,
		ServiceAPIKey:   appConfig.ServiceAPIKey,
		Swagger:         true,
	}
	if disk, ok := store.(*blob.DiskStore); ok {
		opts.ReceiptsDir = disk.Dir()
	}
	router := server.NewRouter(opts, server.Services{
		Users:        services.NewUserService(db),
		Persons:      services.NewPersonService(db, auditService),
		Transactions: transactionService,
		Dashboard:    services.NewDashboardService(transactionService, rates),
		Receipts:     services.NewReceiptService(store, appConfig.MaxReceiptBytes, auditService),
		Tokens:       middleware.NewTokenManager(appConfig.JWTSecret),
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting fund ledger server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newBlobStore builds the receipt store selected by BLOB_BACKEND. The returned
// func releases the backend's resources.
func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, func(), error) {
	switch cfg.BlobBackend {
	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create GCS client: %w", err)
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Get().Warnf("GCS client close error: %v", err)
			}
		}
		return blob.NewGCSStore(client, cfg.GCSBucket, "receipts"), closeFn, nil
	default:
		store, err := blob.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL, server.ReceiptsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to prepare upload directory: %w", err)
		}
		return store, func() {}, nil
	}
}
