// Package pairing implements the registration-key + PIN device pairing
// protocol.
//
// Pairing is a two-phase exchange: Begin binds a device-chosen registration
// key to an account and hands back a server-generated PIN out-of-band;
// Complete trades the key and PIN for a long-lived token. The registration
// key is single-use for Begin but remains a spent record afterwards, so
// Complete can be repeated and mints a fresh token each time.
package pairing

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/bbc/radiotag-authserver/internal/jsonval"
)

const (
	// DefaultPINDigits is the PIN width used when no policy overrides it.
	DefaultPINDigits = 4

	minPINDigits = 4
	maxPINDigits = 8
)

// Claims are the pairing facts recorded on a registration-key token.
type Claims struct {
	AccountID   string
	AccountName string
	PIN         string
}

// Value returns the claims as a JSON claims document.
func (c Claims) Value() jsonval.Value {
	return map[string]any{
		"account_id":   c.AccountID,
		"account_name": c.AccountName,
		"pin":          c.PIN,
	}
}

// GeneratePIN returns a random fixed-width numeric PIN. Leading zeros are
// preserved, so the result is always exactly digits characters long.
func GeneratePIN(digits int) (string, error) {
	if digits < minPINDigits || digits > maxPINDigits {
		return "", fmt.Errorf("pin width must be between %d and %d digits, got %d", minPINDigits, maxPINDigits, digits)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
