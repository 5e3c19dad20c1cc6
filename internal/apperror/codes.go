package apperror

// Code identifies a class of application error.
type Code string

// General error codes.
const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeInternalError      Code = "INTERNAL_ERROR"

	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"
)

// Market-data errors.
const (
	CodeDexScreenerAPIError  Code = "DEXSCREENER_API_ERROR"
	CodeEtherscanAPIError    Code = "ETHERSCAN_API_ERROR"
	CodeCoinGeckoAPIError    Code = "COINGECKO_API_ERROR"
	CodeNativePriceNotFound  Code = "NATIVE_PRICE_NOT_FOUND"
	CodeGasPriceFetchFailed  Code = "GAS_PRICE_FETCH_FAILED"
	CodePriceSeriesTooShort  Code = "PRICE_SERIES_TOO_SHORT"
	CodeMalformedPairPayload Code = "MALFORMED_PAIR_PAYLOAD"
)

// On-chain validation errors.
const (
	CodeRPCError           Code = "RPC_ERROR"
	CodeRPCResponseInvalid Code = "RPC_RESPONSE_INVALID"
	CodeContractCallFailed Code = "CONTRACT_CALL_FAILED"
)

// Persistence and alerting errors.
const (
	CodeStorageError    Code = "STORAGE_ERROR"
	CodeAlertCacheError Code = "ALERT_CACHE_ERROR"
)
