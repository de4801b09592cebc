package quote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// FinnhubClient reads equity quotes from the Finnhub API.
type FinnhubClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewFinnhubClient creates a client authenticated with an API key.
func NewFinnhubClient(apiKey string) *FinnhubClient {
	return &FinnhubClient{
		BaseURL: "https://finnhub.io/api/v1",
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Quote returns the current traded price for an equity ticker.
func (client *FinnhubClient) Quote(symbol string) (decimal.Decimal, error) {
	response, err := client.Client.Get(fmt.Sprintf(
		"%s/quote?symbol=%s&token=%s",
		client.BaseURL,
		url.QueryEscape(symbol),
		url.QueryEscape(client.APIKey),
	))

	if err != nil {
		return decimal.Zero, err
	}

	defer response.Body.Close()

	content, err := io.ReadAll(response.Body)

	if err != nil {
		return decimal.Zero, err
	}

	var result struct {
		Current float64 `json:"c"`
		Error   string  `json:"error"`
	}

	if err := json.Unmarshal(content, &result); err != nil {
		return decimal.Zero, fmt.Errorf("finnhub api returned unexpected response: %s", string(content))
	}

	if result.Error != "" {
		return decimal.Zero, fmt.Errorf("finnhub api error: %s", result.Error)
	}

	// Finnhub reports unknown tickers as a current price of zero.
	if result.Current <= 0 {
		return decimal.Zero, ErrMissingPrice
	}

	return decimal.NewFromFloat(result.Current), nil
}
