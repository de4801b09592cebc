// Package quote fetches prices from the upstream quote providers.
package quote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMissingPrice is returned when a provider answers without a usable price.
var ErrMissingPrice = errors.New("provider returned no price")

// CoinbaseClient reads spot prices from the Coinbase Exchange API.
type CoinbaseClient struct {
	BaseURL string
	Client  *http.Client
}

// NewCoinbaseClient creates a client for the public Coinbase Exchange API.
func NewCoinbaseClient() *CoinbaseClient {
	return &CoinbaseClient{
		BaseURL: "https://api.exchange.coinbase.com",
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SpotPrice returns the last traded price for a product pair like "BTC-USD".
func (client *CoinbaseClient) SpotPrice(product string) (decimal.Decimal, error) {
	response, err := client.Client.Get(
		fmt.Sprintf("%s/products/%s/ticker", client.BaseURL, product),
	)

	if err != nil {
		return decimal.Zero, err
	}

	defer response.Body.Close()

	content, err := io.ReadAll(response.Body)

	if err != nil {
		return decimal.Zero, err
	}

	var result struct {
		Price   string `json:"price"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(content, &result); err != nil {
		return decimal.Zero, fmt.Errorf("coinbase api returned unexpected response: %s", string(content))
	}

	if result.Message != "" {
		return decimal.Zero, fmt.Errorf("coinbase api error: %s", result.Message)
	}

	if result.Price == "" {
		return decimal.Zero, ErrMissingPrice
	}

	return decimal.NewFromString(result.Price)
}
