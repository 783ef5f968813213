package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"fundledger/internal/apiclient"
	"fundledger/internal/config"
	"fundledger/internal/exchangerate"
	"fundledger/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("fetch-rate error: %v", err)
	}
}

// run fetches the official rate once. With -push it asks a running API to
// refresh its cache instead.
func run() error {
	push := flag.String("push", "", "base URL of a running API to refresh, e.g. http://localhost:8080")
	timeout := flag.Duration("timeout", 15*time.Second, "request timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	httpClient := &http.Client{Timeout: *timeout}
	log := logger.Get()

	if *push != "" {
		if cfg.ServiceAPIKey == "" {
			return fmt.Errorf("SERVICE_API_KEY is required with -push")
		}
		result, err := apiclient.New(*push, cfg.ServiceAPIKey, httpClient).RefreshExchangeRate(ctx)
		if err != nil {
			return err
		}
		log.Infow("exchange rate refreshed", "api", *push, "rate", result.Rate.String(), "fetched_at", result.FetchedAt)
		return nil
	}

	rate, err := exchangerate.NewDolarAPI(httpClient, cfg.RateSourceURL).Fetch(ctx)
	if err != nil {
		return err
	}
	log.Infow("exchange rate fetched", "source", cfg.RateSourceURL, "rate", rate.Value.String(), "fetched_at", rate.FetchedAt)
	return nil
}
