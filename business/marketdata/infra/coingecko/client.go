// Package coingecko fetches reference prices and daily close series from the
// CoinGecko API. The close series feeds RSI calculation for momentum scoring.
package coingecko

import (
	"context"
	"strconv"
	"strings"
	"time"

	momentumapp "github.com/dexpulse/arbscan/business/momentum/app"
	momentumdomain "github.com/dexpulse/arbscan/business/momentum/domain"
	"github.com/dexpulse/arbscan/internal/apperror"
	"github.com/dexpulse/arbscan/internal/cache"
	"github.com/dexpulse/arbscan/internal/circuitbreaker"
	"github.com/dexpulse/arbscan/internal/httpclient"
	"github.com/dexpulse/arbscan/internal/logger"
	"github.com/dexpulse/arbscan/internal/ratelimit"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Config holds the client settings.
type Config struct {
	BaseURL           string
	APIKey            string
	RequestsPerMinute int
	Timeout           time.Duration
}

// DefaultConfig returns free-tier defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:           defaultBaseURL,
		APIKey:            apiKey,
		RequestsPerMinute: 30,
		Timeout:           10 * time.Second,
	}
}

// Client is a rate-limited CoinGecko API client. Symbol→id resolutions are
// cached for the process lifetime; they change essentially never.
type Client struct {
	cfg     Config
	http    *httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*httpclient.Response]
	coinIDs *cache.Cache[string, string]
	log     *logger.Logger
}

// Compile-time interface check.
var _ momentumapp.RSIProvider = (*Client)(nil)

// New creates a Client. Call Close when done.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	http, err := httpclient.New(
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithProviderName("coingecko"),
		httpclient.WithRequestTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:     cfg,
		http:    http,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("coingecko")),
		coinIDs: cache.New[string, string](time.Hour),
		log:     log,
	}, nil
}

// Close releases the client's cache resources.
func (c *Client) Close() {
	c.coinIDs.Close()
}

type searchResponse struct {
	Coins []struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	} `json:"coins"`
}

// CoinID resolves a token symbol to a CoinGecko coin id. ok is false when no
// listed coin carries the symbol.
func (c *Client) CoinID(ctx context.Context, symbol string) (string, bool, error) {
	symbol = strings.ToLower(symbol)
	if id, ok := c.coinIDs.Get(ctx, symbol); ok {
		return id, id != "", nil
	}

	var result searchResponse
	if err := c.get(ctx, "/search", map[string]string{"query": symbol}, &result); err != nil {
		return "", false, err
	}

	// Prefer an exact symbol match; fall back to the top search hit.
	id := ""
	for _, coin := range result.Coins {
		if strings.EqualFold(coin.Symbol, symbol) {
			id = coin.ID
			break
		}
	}
	if id == "" && len(result.Coins) > 0 {
		id = result.Coins[0].ID
	}

	// Negative results are cached too: retrying an unlisted symbol every
	// scan burns the rate budget.
	c.coinIDs.Set(ctx, symbol, id, 0)
	return id, id != "", nil
}

type marketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}

// DailyCloses returns the last `days` daily closing prices for a coin id,
// oldest first.
func (c *Client) DailyCloses(ctx context.Context, coinID string, days int) ([]float64, error) {
	var result marketChartResponse
	err := c.get(ctx, "/coins/"+coinID+"/market_chart", map[string]string{
		"vs_currency": "usd",
		"days":        strconv.Itoa(days),
		"interval":    "daily",
	}, &result)
	if err != nil {
		return nil, err
	}

	closes := make([]float64, 0, len(result.Prices))
	for _, point := range result.Prices {
		if len(point) >= 2 {
			closes = append(closes, point[1])
		}
	}
	return closes, nil
}

// TokenRSI resolves the symbol and computes Wilder's RSI over its daily
// closes. ok is false when the token is unlisted or the series is too short.
func (c *Client) TokenRSI(ctx context.Context, symbol string, period int) (float64, bool, error) {
	coinID, ok, err := c.CoinID(ctx, symbol)
	if err != nil || !ok {
		return 0, false, err
	}

	closes, err := c.DailyCloses(ctx, coinID, period+1)
	if err != nil {
		return 0, false, err
	}
	if len(closes) < period+1 {
		return 0, false, apperror.New(apperror.CodePriceSeriesTooShort,
			apperror.WithContext(coinID))
	}

	value, ok := momentumdomain.RSI(closes, period)
	return value, ok, nil
}

type simplePriceResponse map[string]map[string]float64

// EthPriceUSD returns the current ETH spot price; used as a fallback native
// price source.
func (c *Client) EthPriceUSD(ctx context.Context) (float64, error) {
	var result simplePriceResponse
	err := c.get(ctx, "/simple/price", map[string]string{
		"ids":           "ethereum",
		"vs_currencies": "usd",
	}, &result)
	if err != nil {
		return 0, err
	}

	price := result["ethereum"]["usd"]
	if price <= 0 {
		return 0, apperror.New(apperror.CodeNativePriceNotFound,
			apperror.WithContext("coingecko ethereum"))
	}
	return price, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	resp, err := c.breaker.Execute(func() (*httpclient.Response, error) {
		req := c.http.NewRequest().SetQueryParams(query).SetResult(result)
		if c.cfg.APIKey != "" {
			req.SetHeader("x-cg-demo-api-key", c.cfg.APIKey)
		}
		return req.Get(ctx, path)
	})
	if err != nil {
		return apperror.New(apperror.CodeCoinGeckoAPIError,
			apperror.WithCause(err),
			apperror.WithContext(path))
	}
	if resp.IsError() {
		return apperror.New(apperror.CodeCoinGeckoAPIError,
			apperror.WithContext(path))
	}
	return nil
}
