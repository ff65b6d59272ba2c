// Package token provides opaque bearer token issuance and verification.
package token

import "github.com/google/uuid"

// NewTokenString generates a fresh opaque token string.
//
// Token strings are random UUIDv4 values, the format RadioTAG receivers
// already expect when no explicit token is supplied.
func NewTokenString() string {
	return uuid.NewString()
}
