// Package apiclient provides an HTTP client for the fundledger service
// endpoints guarded by the service API key.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RefreshPath is the service endpoint that forces an exchange rate fetch.
const RefreshPath = "/api/v1/internal/exchange-rate/refresh"

// RateResult is the rate the API holds after a refresh.
type RateResult struct {
	Rate      decimal.Decimal `json:"rate"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Client communicates with the fundledger service endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new service API client.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// RefreshExchangeRate asks the API to fetch the rate now and returns the
// rate it cached.
func (c *Client) RefreshExchangeRate(ctx context.Context) (*RateResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefreshPath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refreshing exchange rate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Error.Code != "" {
			return nil, fmt.Errorf("refreshing exchange rate: unexpected status %d (%s)", resp.StatusCode, envelope.Error.Code)
		}
		return nil, fmt.Errorf("refreshing exchange rate: unexpected status %d", resp.StatusCode)
	}

	var result RateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding refresh response: %w", err)
	}
	return &result, nil
}
