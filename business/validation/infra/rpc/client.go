// Package rpc is a minimal Ethereum JSON-RPC 2.0 client used by the on-chain
// price validator.
package rpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/dexpulse/arbscan/internal/apperror"
	"github.com/dexpulse/arbscan/internal/circuitbreaker"
	"github.com/dexpulse/arbscan/internal/httpclient"
)

// Client issues JSON-RPC calls against a single endpoint. Request IDs come
// from a mutex-guarded counter so concurrent callers never reuse an id; that
// counter is the client's only mutable state.
type Client struct {
	http    *httpclient.Client
	breaker *circuitbreaker.CircuitBreaker[string]

	mu     sync.Mutex
	nextID uint64
}

// NewClient creates a Client for the given endpoint.
func NewClient(rpcURL string, timeout time.Duration) (*Client, error) {
	http, err := httpclient.New(
		httpclient.WithBaseURL(rpcURL),
		httpclient.WithProviderName("evm-rpc"),
		httpclient.WithRequestTimeout(timeout),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:    http,
		breaker: circuitbreaker.New[string](circuitbreaker.DefaultConfig("evm-rpc")),
		nextID:  1,
	}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  string    `json:"result"`
	Error   *rpcError `json:"error"`
	ID      uint64    `json:"id"`
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	result, err := c.call(ctx, "eth_blockNumber", []any{})
	if err != nil {
		return 0, err
	}
	n, err := hexutil.DecodeUint64(result)
	if err != nil {
		return 0, apperror.New(apperror.CodeRPCResponseInvalid,
			apperror.WithCause(err),
			apperror.WithContext("eth_blockNumber result "+result))
	}
	return n, nil
}

// EthCall performs a read-only contract call and returns the raw hex result.
// block is either "latest" or a hex-encoded block number.
func (c *Client) EthCall(ctx context.Context, to, data, block string) (string, error) {
	params := []any{map[string]string{"to": to, "data": data}, block}
	return c.call(ctx, "eth_call", params)
}

func (c *Client) call(ctx context.Context, method string, params []any) (string, error) {
	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.requestID(),
	}

	return c.breaker.Execute(func() (string, error) {
		var out rpcResponse
		resp, err := c.http.NewRequest().
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			SetResult(&out).
			Post(ctx, "")
		if err != nil {
			return "", apperror.New(apperror.CodeRPCError,
				apperror.WithCause(err),
				apperror.WithContext(method))
		}
		if resp.IsError() {
			return "", apperror.New(apperror.CodeRPCError,
				apperror.WithContext(fmt.Sprintf("%s status %d", method, resp.StatusCode)))
		}
		if out.Error != nil {
			return "", apperror.New(apperror.CodeContractCallFailed,
				apperror.WithMessage(out.Error.Message),
				apperror.WithContext(fmt.Sprintf("%s rpc code %d", method, out.Error.Code)))
		}
		return out.Result, nil
	})
}

func (c *Client) requestID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	return id
}
