// Package etherscan reads gas prices from the Etherscan V2 gas oracle.
package etherscan

import (
	"context"
	"strconv"
	"time"

	marketdataapp "github.com/dexpulse/arbscan/business/marketdata/app"
	"github.com/dexpulse/arbscan/internal/apperror"
	"github.com/dexpulse/arbscan/internal/chain"
	"github.com/dexpulse/arbscan/internal/circuitbreaker"
	"github.com/dexpulse/arbscan/internal/httpclient"
	"github.com/dexpulse/arbscan/internal/logger"
	"github.com/dexpulse/arbscan/internal/ratelimit"
)

const defaultBaseURL = "https://api.etherscan.io/v2/api"

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
		RequestsPerMinute: 300, // 5/s free tier
		Timeout:           15 * time.Second,
	}
}

// Client is a rate-limited Etherscan API client. The V2 API serves every
// supported chain through one endpoint, selected by chainid.
type Client struct {
	cfg     Config
	http    *httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*httpclient.Response]
	log     *logger.Logger
}

// Compile-time interface check.
var _ marketdataapp.GasPriceSource = (*Client)(nil)

// New creates a Client.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	http, err := httpclient.New(
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithProviderName("etherscan"),
		httpclient.WithRequestTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:     cfg,
		http:    http,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("etherscan")),
		log:     log,
	}, nil
}

type gasOracleResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  struct {
		SafeGasPrice    string `json:"SafeGasPrice"`
		ProposeGasPrice string `json:"ProposeGasPrice"`
		FastGasPrice    string `json:"FastGasPrice"`
	} `json:"result"`
}

// GasPriceGwei returns the proposed gas price for a chain, falling back to
// the safe price when the oracle omits it.
func (c *Client) GasPriceGwei(ctx context.Context, chainName string) (float64, error) {
	info, ok := chain.Lookup(chainName)
	if !ok {
		return 0, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("unknown chain "+chainName))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	var result gasOracleResponse
	resp, err := c.breaker.Execute(func() (*httpclient.Response, error) {
		return c.http.NewRequest().
			SetQueryParams(map[string]string{
				"module":  "gastracker",
				"action":  "gasoracle",
				"chainid": strconv.FormatUint(info.ChainID, 10),
				"apikey":  c.cfg.APIKey,
			}).
			SetResult(&result).
			Get(ctx, "")
	})
	if err != nil {
		return 0, apperror.New(apperror.CodeEtherscanAPIError,
			apperror.WithCause(err),
			apperror.WithContext(chainName))
	}
	if resp.IsError() || result.Status != "1" {
		return 0, apperror.New(apperror.CodeGasPriceFetchFailed,
			apperror.WithContext(chainName+" "+result.Message))
	}

	raw := result.Result.ProposeGasPrice
	if raw == "" {
		raw = result.Result.SafeGasPrice
	}
	gwei, err := strconv.ParseFloat(raw, 64)
	if err != nil || gwei <= 0 {
		return 0, apperror.New(apperror.CodeGasPriceFetchFailed,
			apperror.WithContext(chainName+" oracle value "+raw))
	}
	return gwei, nil
}
