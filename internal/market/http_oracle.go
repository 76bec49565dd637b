package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

// HTTPOracle fetches live prices from an external price-feed endpoint
// using a direct-HTTP-with-timeout idiom: a plain http.Client with an
// explicit deadline, since the default client timeout is unsuitable for a
// price feed on the hot tick path.
type HTTPOracle struct {
	BaseURL string
	Client *http.Client
}

func NewHTTPOracle(baseURL string) *HTTPOracle {
	return &HTTPOracle{BaseURL: baseURL, Client: &http.Client{Timeout: 5 * time.Second}}
}

type httpPriceResponse struct {
	Prices models.PriceSet `json:"prices"`
	Changes models.PriceSet `json:"changes"`
}

func (o *HTTPOracle) Fetch(ctx context.Context, epoch int) (models.MarketSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+"/prices", nil)
	if err != nil {
		return models.MarketSnapshot{}, fmt.Errorf("market: build request: %w", err)
	}

	resp, err := o.Client.Do(req)
	if err != nil {
		return models.MarketSnapshot{}, fmt.Errorf("market: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.MarketSnapshot{}, fmt.Errorf("market: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.MarketSnapshot{}, fmt.Errorf("market: read body: %w", err)
	}

	var parsed httpPriceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.MarketSnapshot{}, fmt.Errorf("market: unmarshal: %w", err)
	}

	return models.MarketSnapshot{Prices: parsed.Prices, Changes: parsed.Changes, Timestamp: int64(epoch)}, nil
}
