package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dexpulse/arbscan/internal/apperror"
)

func TestClient_BlockNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.JSONRPC != "2.0" || req.Method != "eth_blockNumber" {
			t.Errorf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID, "result": "0x1e240",
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.BlockNumber(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != 123456 {
		t.Errorf("BlockNumber = %d, want 123456", got)
	}
}

func TestClient_EthCallError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID,
			"error": map[string]any{"code": -32000, "message": "execution reverted"},
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.EthCall(context.Background(), "0xpair", "0x0dfe1681", "latest")
	if !apperror.IsCode(err, apperror.CodeContractCallFailed) {
		t.Errorf("err = %v, want CONTRACT_CALL_FAILED", err)
	}
}

func TestClient_RequestIDsAreUnique(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[uint64]bool)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		if seen[req.ID] {
			t.Errorf("request id %d reused", req.ID)
		}
		seen[req.ID] = true
		mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID, "result": "0x1",
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.BlockNumber(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 20 {
		t.Errorf("saw %d distinct ids, want 20", len(seen))
	}
}
