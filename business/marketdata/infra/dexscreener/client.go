// Package dexscreener fetches trading-pair listings from the DexScreener API.
package dexscreener

import (
	"context"
	"time"

	marketdataapp "github.com/dexpulse/arbscan/business/marketdata/app"
	"github.com/dexpulse/arbscan/business/marketdata/domain"
	"github.com/dexpulse/arbscan/internal/apperror"
	"github.com/dexpulse/arbscan/internal/chain"
	"github.com/dexpulse/arbscan/internal/circuitbreaker"
	"github.com/dexpulse/arbscan/internal/httpclient"
	"github.com/dexpulse/arbscan/internal/logger"
	"github.com/dexpulse/arbscan/internal/ratelimit"
)

const defaultBaseURL = "https://api.dexscreener.com/latest/dex"

// Config holds the client settings.
type Config struct {
	BaseURL           string
	RequestsPerMinute int
	Timeout           time.Duration
}

// DefaultConfig returns settings matching DexScreener's published limits.
func DefaultConfig() Config {
	return Config{
		BaseURL:           defaultBaseURL,
		RequestsPerMinute: 300,
		Timeout:           30 * time.Second,
	}
}

// Client is a rate-limited DexScreener API client.
type Client struct {
	http    *httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*httpclient.Response]
	log     *logger.Logger
}

// Compile-time interface check.
var _ marketdataapp.PairSource = (*Client)(nil)

// New creates a Client.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	http, err := httpclient.New(
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithProviderName("dexscreener"),
		httpclient.WithRequestTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:    http,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("dexscreener")),
		log:     log,
	}, nil
}

// Search returns all pairs matching a token symbol across chains.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Pair, error) {
	var result domain.SearchResponse
	if err := c.get(ctx, "/search", map[string]string{"q": query}, &result); err != nil {
		return nil, err
	}
	return result.Pairs, nil
}

type pairResponse struct {
	Pair *domain.Pair `json:"pair"`
}

// PairByAddress fetches one pool's listing.
func (c *Client) PairByAddress(ctx context.Context, chainName, pairAddress string) (*domain.Pair, error) {
	var result pairResponse
	path := httpclient.JoinURL("/pairs", chainName, pairAddress)
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	if result.Pair == nil {
		return nil, apperror.New(apperror.CodeMalformedPairPayload,
			apperror.WithContext(chainName+" "+pairAddress))
	}
	return result.Pair, nil
}

// NativeTokenPriceUSD reads the chain's native token price from its reference
// pool.
func (c *Client) NativeTokenPriceUSD(ctx context.Context, chainName string) (float64, error) {
	info, ok := chain.Lookup(chainName)
	if !ok {
		return 0, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("unknown chain "+chainName))
	}

	pair, err := c.PairByAddress(ctx, chainName, info.NativePairAddr.Hex())
	if err != nil {
		return 0, err
	}

	price, ok := pair.PriceUsdFloat()
	if !ok || price <= 0 {
		return 0, apperror.New(apperror.CodeNativePriceNotFound,
			apperror.WithContext(chainName))
	}
	return price, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	resp, err := c.breaker.Execute(func() (*httpclient.Response, error) {
		req := c.http.NewRequest().SetResult(result)
		if query != nil {
			req.SetQueryParams(query)
		}
		return req.Get(ctx, path)
	})
	if err != nil {
		return apperror.New(apperror.CodeDexScreenerAPIError,
			apperror.WithCause(err),
			apperror.WithContext(path))
	}
	if resp.IsError() {
		return apperror.New(apperror.CodeDexScreenerAPIError,
			apperror.WithContext(path))
	}
	return nil
}
