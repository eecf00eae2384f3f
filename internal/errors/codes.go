package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthMissingToken           ErrorCode = "AUTH_001"
	AuthExpiredToken           ErrorCode = "AUTH_002"
	AuthInvalidTokenFormat     ErrorCode = "AUTH_003"
	AuthInsufficientPermission ErrorCode = "AUTH_004"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
)

// Match error codes (MATCH_*)
const (
	MatchTimeout          ErrorCode = "MATCH_001"
	MatchFailed           ErrorCode = "MATCH_002"
	MatchUnknownAlgorithm ErrorCode = "MATCH_003"
	MatchEmptyQuery       ErrorCode = "MATCH_004"
	MatchBatchTooLarge    ErrorCode = "MATCH_005"
)

// Pattern error codes (PATTERN_*)
const (
	PatternNotFound      ErrorCode = "PATTERN_001"
	PatternInvalidType   ErrorCode = "PATTERN_002"
	PatternInvalidWeight ErrorCode = "PATTERN_003"
	PatternDuplicate     ErrorCode = "PATTERN_004"
)

// Merchant error codes (MERCHANT_*)
const (
	MerchantNotFound      ErrorCode = "MERCHANT_001"
	MerchantAlreadyExists ErrorCode = "MERCHANT_002"
	MerchantInvalidID     ErrorCode = "MERCHANT_003"
)

// Category error codes (CATEGORY_*)
const (
	CategoryNotFound    ErrorCode = "CATEGORY_001"
	CategoryInvalidName ErrorCode = "CATEGORY_002"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_005"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Authentication errors
	AuthMissingToken:           "Authorization token is required",
	AuthExpiredToken:           "Authorization token has expired",
	AuthInvalidTokenFormat:     "Invalid authorization token format",
	AuthInsufficientPermission: "Insufficient permissions to access this resource",

	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",

	// Match errors
	MatchTimeout:          "Matching timed out before completing",
	MatchFailed:           "Matching failed due to an internal error",
	MatchUnknownAlgorithm: "Unknown similarity algorithm",
	MatchEmptyQuery:       "Query text must not be empty",
	MatchBatchTooLarge:    "Batch exceeds the maximum number of texts",

	// Pattern errors
	PatternNotFound:      "Category pattern not found",
	PatternInvalidType:   "Invalid pattern type",
	PatternInvalidWeight: "Pattern confidence weight must be between 0 and 1",
	PatternDuplicate:     "A pattern with this value already exists for the category",

	// Merchant errors
	MerchantNotFound:      "Merchant not found",
	MerchantAlreadyExists: "A merchant with this name already exists",
	MerchantInvalidID:     "Invalid merchant ID format",

	// Category errors
	CategoryNotFound:    "Category not found",
	CategoryInvalidName: "Invalid category name",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
