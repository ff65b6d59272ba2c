package token

import (
	"context"
	stderrors "errors"

	"github.com/bbc/radiotag-authserver/internal/jsonval"
	"github.com/bbc/radiotag-authserver/internal/platform/errors"
	"github.com/bbc/radiotag-authserver/internal/services/auth/storage"
)

// Presented is a credential offered for an authorization check: either a bare
// token string or a grant document carrying a nested "token" field.
type Presented struct {
	Token string
	Grant jsonval.Value
}

// Service issues and verifies tokens against a token store.
type Service struct {
	store storage.TokenStore
}

// NewService creates a token service backed by store.
func NewService(store storage.TokenStore) *Service {
	return &Service{store: store}
}

// Lookup returns the token record whose token string equals tokenString.
// It performs no writes.
func (s *Service) Lookup(ctx context.Context, tokenString string) (storage.Token, error) {
	tok, err := s.store.GetToken(ctx, tokenString)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.Token{}, errors.New(errors.CodeNotFound, "token not found")
		}
		return storage.Token{}, errors.Wrap(errors.CodeStoreFailure, "lookup token", err)
	}
	return tok, nil
}

// IssueByGrant returns the token whose value is structurally equal to value,
// creating one with a fresh token string when no match exists. Calling it
// twice with equal values yields the same record.
func (s *Service) IssueByGrant(ctx context.Context, value jsonval.Value) (storage.Token, error) {
	candidate := storage.Token{
		Token: NewTokenString(),
		Value: value,
	}
	tok, _, err := s.store.FindOrCreateTokenByValue(ctx, candidate)
	if err != nil {
		return storage.Token{}, errors.Wrap(errors.CodeStoreFailure, "issue token by grant", err)
	}
	return tok, nil
}

// IssueByTokenString returns the token whose token string equals tokenString,
// creating one carrying value when absent. On a hit the supplied value is
// ignored.
func (s *Service) IssueByTokenString(ctx context.Context, tokenString string, value jsonval.Value) (storage.Token, error) {
	candidate := storage.Token{
		Token: tokenString,
		Value: value,
	}
	tok, _, err := s.store.FindOrCreateTokenByString(ctx, candidate)
	if err != nil {
		return storage.Token{}, errors.Wrap(errors.CodeStoreFailure, "issue token by string", err)
	}
	return tok, nil
}

// CheckAuthorized verifies that presented corresponds to an existing token
// record and returns its token string. Unlike issuance, this path never
// creates a record, even when given a grant shape.
func (s *Service) CheckAuthorized(ctx context.Context, presented Presented) (string, error) {
	tokenString := presented.Token
	if tokenString == "" {
		nested, ok := jsonval.StringField(presented.Grant, "token")
		if !ok {
			return "", errors.New(errors.CodeUnauthorized, "no token presented")
		}
		tokenString = nested
	}

	tok, err := s.store.GetToken(ctx, tokenString)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return "", errors.New(errors.CodeUnauthorized, "unknown token")
		}
		return "", errors.Wrap(errors.CodeStoreFailure, "check authorization", err)
	}
	return tok.Token, nil
}
