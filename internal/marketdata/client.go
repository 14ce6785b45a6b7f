// Package marketdata fetches daily closing prices and live tickers from a
// CoinGecko-compatible market data API.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"grid-trade-lab/internal/coin"
	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.coingecko.com/api/v3"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultBackoffMult = 2.0
)

// Client fetches historical prices over HTTP. It implements
// coin.PriceSource.
type Client struct {
	baseURL     string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	backoffMult float64
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new market data client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Coins []struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
	} `json:"coins"`
}

type marketChartResponse struct {
	// Each entry is [unix milliseconds, price].
	Prices [][2]float64 `json:"prices"`
}

// DailyClosingPrices returns closing prices for a symbol from the given
// date (inclusive) to the present, ordered by date ASC. A nil from means
// the full available history; a from date in the future yields an empty
// result. Fails if the symbol cannot be resolved.
func (c *Client) DailyClosingPrices(ctx context.Context, symbol string, from *time.Time) ([]domain.HistoricalPrice, error) {
	id, err := c.resolveID(ctx, symbol)
	if err != nil {
		return nil, err
	}

	days := "max"
	if from != nil {
		now := time.Now().UTC()
		if from.After(now) {
			days = "0"
		} else {
			days = fmt.Sprintf("%d", int(now.Sub(*from).Hours()/24)+1)
		}
	}

	var chart marketChartResponse
	path := fmt.Sprintf("/coins/%s/market_chart?vs_currency=usd&days=%s&interval=daily", url.PathEscape(id), days)
	if err := c.get(ctx, "market_chart", path, &chart); err != nil {
		return nil, fmt.Errorf("fetch market chart for %s: %w", symbol, err)
	}

	var prices []domain.HistoricalPrice
	for _, point := range chart.Prices {
		date := time.UnixMilli(int64(point[0])).UTC()
		// The chart mixes in an intraday point for today; only exact
		// UTC-midnight timestamps are final daily closes.
		if !date.Equal(domain.Day(date)) {
			continue
		}
		prices = append(prices, domain.HistoricalPrice{Date: date, Price: point[1]})
	}
	return prices, nil
}

// resolveID looks up the API's coin id for a ticker symbol.
func (c *Client) resolveID(ctx context.Context, symbol string) (string, error) {
	var result searchResponse
	if err := c.get(ctx, "search", "/search?query="+url.QueryEscape(symbol), &result); err != nil {
		return "", fmt.Errorf("search %s: %w", symbol, err)
	}

	if len(result.Coins) == 0 || result.Coins[0].Symbol != symbol {
		return "", fmt.Errorf("failed to resolve coin id for %s", symbol)
	}
	return result.Coins[0].ID, nil
}

// get performs a GET with retries and exponential backoff, decoding the
// JSON response into result. Latency is recorded per attempt under the
// given endpoint label.
func (c *Client) get(ctx context.Context, endpoint, path string, result interface{}) error {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
		}

		started := time.Now()
		lastErr = c.getOnce(ctx, path, result)
		observability.RecordAPILatency(endpoint, time.Since(started).Seconds())
		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) getOnce(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ coin.PriceSource = (*Client)(nil)
