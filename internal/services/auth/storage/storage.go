// Package storage defines persistence contracts for token and account
// records.
//
// These interfaces exist so the token, pairing, and account services can
// depend on stable record semantics without coupling to SQLite schema
// details. Uniqueness and find-or-create atomicity are store obligations:
// callers never implement read-then-write themselves.
package storage

import (
	"context"
	"time"

	"github.com/bbc/radiotag-authserver/internal/jsonval"
	"github.com/bbc/radiotag-authserver/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// ErrAlreadyExists indicates a creation collided with an existing unique key.
var ErrAlreadyExists = errors.New(errors.CodeAlreadyRegistered, "record already exists")

// Token is an opaque bearer credential record: a globally unique token
// string paired with an arbitrary JSON claims document. Records are never
// mutated after creation.
type Token struct {
	ID        string
	Token     string
	Value     jsonval.Value
	CreatedAt time.Time
}

// Account is an identity record keyed by a caller-supplied identifier.
type Account struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// TokenStore persists token records.
//
// GetToken and CreateToken provide exact-match lookup and unique-constrained
// creation. The FindOrCreate variants must be atomic: two concurrent callers
// presenting the same token string or structurally equal value must observe
// the same resulting record, never two distinct ones.
type TokenStore interface {
	// GetToken returns the record whose token equals tokenString, or
	// ErrNotFound.
	GetToken(ctx context.Context, tokenString string) (Token, error)

	// CreateToken inserts a new record. It returns ErrAlreadyExists when a
	// record with the same token string is present; no partial state is left
	// behind.
	CreateToken(ctx context.Context, tok Token) (Token, error)

	// FindOrCreateTokenByString returns the record matching tok.Token,
	// creating tok when absent. The supplied value is ignored on a hit.
	FindOrCreateTokenByString(ctx context.Context, tok Token) (Token, bool, error)

	// FindOrCreateTokenByValue returns the record whose value is structurally
	// equal to tok.Value, creating tok when no match exists. Repeated calls
	// observe a stable record even when later creations duplicate the value.
	FindOrCreateTokenByValue(ctx context.Context, tok Token) (Token, bool, error)

	// DeleteToken removes the record whose token equals tokenString and
	// returns a pre-deletion snapshot, or ErrNotFound.
	DeleteToken(ctx context.Context, tokenString string) (Token, error)

	// CountTokens returns the total number of token records.
	CountTokens(ctx context.Context) (int64, error)
}

// AccountStore persists account records.
type AccountStore interface {
	// CreateAccount inserts a new account. It returns ErrAlreadyExists when
	// the id is taken.
	CreateAccount(ctx context.Context, account Account) (Account, error)

	// GetAccount returns the account with the given id, or ErrNotFound.
	GetAccount(ctx context.Context, id string) (Account, error)

	// DeleteAccount removes the account and returns a pre-deletion snapshot,
	// or ErrNotFound. Associated tokens are not cascaded.
	DeleteAccount(ctx context.Context, id string) (Account, error)
}
