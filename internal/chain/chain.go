// Package chain holds the static per-chain reference data used across the
// scanner: identifiers, native-token metadata, gas assumptions, and the
// token-address tables the on-chain validator matches quote tokens against.
package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Chain IDs for the supported networks.
const (
	IDEthereum uint64 = 1
	IDPolygon  uint64 = 137
	IDBase     uint64 = 8453
	IDBSC      uint64 = 56
)

// Info describes one supported chain.
type Info struct {
	Name            string // canonical name, also the DexScreener chainId value
	ChainID         uint64
	NativeSymbol    string
	NativePairAddr  common.Address // reference pool quoting the native token in USD
	GasUnitsPerSwap uint64
}

var chains = map[string]Info{
	"ethereum": {
		Name:            "ethereum",
		ChainID:         IDEthereum,
		NativeSymbol:    "ETH",
		NativePairAddr:  common.HexToAddress("0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640"), // WETH/USDC
		GasUnitsPerSwap: 150_000,
	},
	"polygon": {
		Name:            "polygon",
		ChainID:         IDPolygon,
		NativeSymbol:    "MATIC",
		NativePairAddr:  common.HexToAddress("0x6e7a5fafcec6bb1e78bae2a1f0b612012bf14827"), // WMATIC/USDC
		GasUnitsPerSwap: 100_000,
	},
	"base": {
		Name:            "base",
		ChainID:         IDBase,
		NativeSymbol:    "ETH",
		NativePairAddr:  common.HexToAddress("0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"),
		GasUnitsPerSwap: 85_000,
	},
	"bsc": {
		Name:            "bsc",
		ChainID:         IDBSC,
		NativeSymbol:    "BNB",
		NativePairAddr:  common.HexToAddress("0x16b9a82891338f9ba80e2d6970fdda79d1eb0dae"), // WBNB/USDC
		GasUnitsPerSwap: 120_000,
	},
}

// Lookup returns the Info for the named chain.
func Lookup(name string) (Info, bool) {
	info, ok := chains[strings.ToLower(name)]
	return info, ok
}

// Names returns the canonical names of all supported chains.
func Names() []string {
	out := make([]string, 0, len(chains))
	for name := range chains {
		out = append(out, name)
	}
	return out
}

// GasUnitsPerSwap returns the per-swap gas estimate for a chain, or the
// Ethereum figure when the chain is unknown.
func GasUnitsPerSwap(name string) uint64 {
	if info, ok := Lookup(name); ok {
		return info.GasUnitsPerSwap
	}
	return chains["ethereum"].GasUnitsPerSwap
}

// stablecoins maps chain name to the lowercase addresses of USD stablecoins.
// A pool quoting against one of these can be read as a USD price directly.
var stablecoins = map[string][]string{
	"ethereum": {
		"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", // USDC
		"0xdac17f958d2ee523a2206206994597c13d831ec7", // USDT
		"0x6b175474e89094c44da98b954eedeac495271d0f", // DAI
	},
	"polygon": {
		"0x3c499c542cef5e3811e1192ce70d8cc03d5c3359", // USDC
		"0xc2132d05d31c914a87c6611c10748aeb04b58e8f", // USDT
		"0x8f3cf7ad23cd3cadbd9735aff958023239c6a063", // DAI
	},
	"base": {
		"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", // USDC
	},
	"bsc": {
		"0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d", // USDC
		"0x55d398326f99059ff775485246999027b3197955", // USDT
	},
}

// wrappedNative maps chain name to the lowercase addresses of the wrapped
// native token. A pool quoting against one of these needs the native USD price
// to produce a USD figure.
var wrappedNative = map[string][]string{
	"ethereum": {"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"}, // WETH
	"polygon":  {"0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270"}, // WMATIC
	"base":     {"0x4200000000000000000000000000000000000006"}, // WETH
	"bsc":      {"0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"}, // WBNB
}

// IsStablecoin reports whether addr is a known USD stablecoin on the chain.
func IsStablecoin(chainName, addr string) bool {
	return containsAddr(stablecoins[strings.ToLower(chainName)], addr)
}

// IsWrappedNative reports whether addr is the chain's wrapped native token.
func IsWrappedNative(chainName, addr string) bool {
	return containsAddr(wrappedNative[strings.ToLower(chainName)], addr)
}

func containsAddr(addrs []string, addr string) bool {
	addr = strings.ToLower(addr)
	for _, a := range addrs {
		if a == addr {
			return true
		}
	}
	return false
}
