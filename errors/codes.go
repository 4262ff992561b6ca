package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates an upstream service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConnectionFailed indicates a failed connection to a service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Authentication errors. All map to HTTP 401; the distinct codes exist so
// internal logging and metrics can tell rejection causes apart.
const (
	// ErrCodeUnauthorized indicates the request carries no valid credentials.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeMalformedToken indicates the token is not structurally a JWT.
	ErrCodeMalformedToken ErrorCode = "MALFORMED_TOKEN"
	// ErrCodeUnknownKey indicates the token's key id is not in the key set.
	ErrCodeUnknownKey ErrorCode = "UNKNOWN_KEY"
	// ErrCodeInvalidSignature indicates signature verification failed.
	ErrCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"
	// ErrCodeTokenExpired indicates the token is past its expiry.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	// ErrCodeInvalidIssuer indicates the token issuer does not match configuration.
	ErrCodeInvalidIssuer ErrorCode = "INVALID_ISSUER"
	// ErrCodeInvalidAudience indicates the token audience does not match configuration.
	ErrCodeInvalidAudience ErrorCode = "INVALID_AUDIENCE"
)

// Authorization errors
const (
	// ErrCodeForbidden indicates the caller is authenticated but lacks permission.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
)

// Configuration and internal errors
const (
	// ErrCodeConfiguration indicates invalid or unusable configuration. Fatal at startup.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsAuthCode returns true for codes that describe an authentication failure.
// These map to HTTP 401 and are never retried.
func IsAuthCode(code ErrorCode) bool {
	switch code {
	case ErrCodeUnauthorized, ErrCodeMalformedToken, ErrCodeUnknownKey,
		ErrCodeInvalidSignature, ErrCodeTokenExpired, ErrCodeInvalidIssuer,
		ErrCodeInvalidAudience:
		return true
	}
	return false
}
