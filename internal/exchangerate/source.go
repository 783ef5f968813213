// Package exchangerate fetches the official bolívar/dollar rate and caches it
// for a fixed freshness window.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fundledger/internal/ledger"
)

// DefaultURL is the DolarAPI endpoint for the official rate.
const DefaultURL = "https://ve.dolarapi.com/v1/dolares/oficial"

// Source fetches the current rate from a remote service.
type Source interface {
	Fetch(ctx context.Context) (ledger.Rate, error)
}

// DolarAPI reads the official average rate ("promedio") from DolarAPI.
type DolarAPI struct {
	httpClient *http.Client
	url        string
	now        func() time.Time
}

// NewDolarAPI creates a DolarAPI source. An empty url selects DefaultURL.
func NewDolarAPI(httpClient *http.Client, url string) *DolarAPI {
	if url == "" {
		url = DefaultURL
	}
	return &DolarAPI{httpClient: httpClient, url: url, now: time.Now}
}

type dolarResponse struct {
	Source    string          `json:"fuente"`
	Average   decimal.Decimal `json:"promedio"`
	UpdatedAt string          `json:"fechaActualizacion"`
}

// Fetch requests the current official rate. The returned rate is stamped with
// the local fetch time, which is what the cache freshness window uses.
func (d *DolarAPI) Fetch(ctx context.Context) (ledger.Rate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return ledger.Rate{}, fmt.Errorf("building rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return ledger.Rate{}, fmt.Errorf("rate http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ledger.Rate{}, fmt.Errorf("rate request: unexpected status %d", resp.StatusCode)
	}

	var body dolarResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ledger.Rate{}, fmt.Errorf("decoding rate response: %w", err)
	}
	if !body.Average.IsPositive() {
		return ledger.Rate{}, fmt.Errorf("invalid rate %s from %q", body.Average.String(), body.Source)
	}

	return ledger.Rate{Value: body.Average, FetchedAt: d.now()}, nil
}
