package apperror

// messages maps error codes to human-readable messages.
var messages = map[Code]string{
	CodeInvalidInput:       "Invalid input provided",
	CodeConfigurationError: "Configuration error",
	CodeInternalError:      "Internal error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeDexScreenerAPIError:  "DexScreener API error",
	CodeEtherscanAPIError:    "Etherscan API error",
	CodeCoinGeckoAPIError:    "CoinGecko API error",
	CodeNativePriceNotFound:  "Native token price unavailable",
	CodeGasPriceFetchFailed:  "Gas price fetch failed",
	CodePriceSeriesTooShort:  "Not enough price points",
	CodeMalformedPairPayload: "Malformed pair payload",

	CodeRPCError:           "JSON-RPC call failed",
	CodeRPCResponseInvalid: "JSON-RPC response invalid",
	CodeContractCallFailed: "Smart contract call failed",

	CodeStorageError:    "Storage operation failed",
	CodeAlertCacheError: "Alert cache operation failed",
}
