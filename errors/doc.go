// Package errors provides unified error handling for the kit.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection following RFC 7807 and Google AIP-193.
//
// Authentication failures deserve a note: every 401-class constructor
// (MalformedToken, UnknownKey, InvalidSignature, TokenExpired, InvalidIssuer,
// InvalidAudience) carries a generic client-facing message. The specific
// rejection reason lives in Code and Details, which are logged internally
// and stripped from ToResponse, so a caller probing the validator cannot
// learn which check failed.
//
// Usage:
//
//	err := errors.UnknownKey(kid)
//	if appErr, ok := errors.AsAppError(err); ok {
//	    log.Warn("token rejected", logger.Fields("code", appErr.Code))
//	    c.JSON(appErr.HTTPStatus, appErr.ToResponse())
//	}
package errors
