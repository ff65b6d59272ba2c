// Package errors provides structured error handling for the auth server.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request validation errors
	CodeMissingParam Code = "MISSING_PARAM"
	CodeInvalidParam Code = "INVALID_PARAM"

	// Lookup errors
	CodeNotFound Code = "NOT_FOUND"

	// Credential errors
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeUnknownAccount Code = "UNKNOWN_ACCOUNT"

	// Uniqueness conflicts
	CodeAccountExists     Code = "ACCOUNT_EXISTS"
	CodeAlreadyRegistered Code = "ALREADY_REGISTERED"

	// Persistence errors
	CodeStoreFailure Code = "STORE_FAILURE"
)

// HTTPStatus maps domain codes to HTTP status codes.
//
// Two mappings are kept for compatibility with existing RadioTAG clients:
// a duplicate account id reports 401 rather than 409, and an
// already-registered pairing key reports 400. Both are pinned by tests.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeMissingParam, CodeInvalidParam:
		return http.StatusBadRequest

	case CodeNotFound:
		return http.StatusNotFound

	case CodeUnauthorized,
		CodeUnknownAccount,
		CodeAccountExists:
		return http.StatusUnauthorized

	case CodeAlreadyRegistered:
		return http.StatusBadRequest

	case CodeStoreFailure:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
