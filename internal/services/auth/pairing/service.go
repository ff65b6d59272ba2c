package pairing

import (
	"context"
	stderrors "errors"

	"github.com/bbc/radiotag-authserver/internal/jsonval"
	"github.com/bbc/radiotag-authserver/internal/platform/errors"
	"github.com/bbc/radiotag-authserver/internal/services/auth/storage"
	"github.com/bbc/radiotag-authserver/internal/services/auth/token"
)

// Service orchestrates the pairing protocol over token and account records.
type Service struct {
	tokens    storage.TokenStore
	accounts  storage.AccountStore
	pinDigits int
}

// NewService creates a pairing service. pinDigits of zero selects the
// default PIN width.
func NewService(tokens storage.TokenStore, accounts storage.AccountStore, pinDigits int) *Service {
	if pinDigits == 0 {
		pinDigits = DefaultPINDigits
	}
	return &Service{
		tokens:    tokens,
		accounts:  accounts,
		pinDigits: pinDigits,
	}
}

// Begin registers a device against an account and returns the PIN gating the
// exchange. The registration key is one-shot: a second Begin with the same
// key fails regardless of account. The PIN is returned once and never
// re-readable through any other operation.
func (s *Service) Begin(ctx context.Context, registrationKey, accountID string) (string, error) {
	// Read check first so an already-registered key reports as such even
	// when the account is also unknown. The CreateToken unique constraint
	// below re-checks atomically.
	if _, err := s.tokens.GetToken(ctx, registrationKey); err == nil {
		return "", errors.New(errors.CodeAlreadyRegistered, "registration key already registered")
	} else if !stderrors.Is(err, storage.ErrNotFound) {
		return "", errors.Wrap(errors.CodeStoreFailure, "check registration key", err)
	}

	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return "", errors.New(errors.CodeUnknownAccount, "unknown account")
		}
		return "", errors.Wrap(errors.CodeStoreFailure, "look up account", err)
	}

	pin, err := GeneratePIN(s.pinDigits)
	if err != nil {
		return "", errors.Wrap(errors.CodeStoreFailure, "generate pin", err)
	}

	claims := Claims{
		AccountID:   account.ID,
		AccountName: account.Name,
		PIN:         pin,
	}
	_, err = s.tokens.CreateToken(ctx, storage.Token{
		Token: registrationKey,
		Value: claims.Value(),
	})
	if err != nil {
		if stderrors.Is(err, storage.ErrAlreadyExists) {
			return "", errors.New(errors.CodeAlreadyRegistered, "registration key already registered")
		}
		return "", errors.Wrap(errors.CodeStoreFailure, "create registration token", err)
	}

	return pin, nil
}

// Complete exchanges a registration key and PIN for a fresh long-lived token
// string. The new token copies the registration record's claims but never
// reuses its token string; the registration record itself stays in place, so
// repeated completions each mint a distinct token.
func (s *Service) Complete(ctx context.Context, registrationKey, pin string) (string, error) {
	registered, err := s.tokens.GetToken(ctx, registrationKey)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return "", errors.New(errors.CodeUnauthorized, "unknown registration key")
		}
		return "", errors.Wrap(errors.CodeStoreFailure, "look up registration key", err)
	}

	recordedPIN, ok := jsonval.StringField(registered.Value, "pin")
	if !ok || recordedPIN != pin {
		return "", errors.New(errors.CodeUnauthorized, "pin mismatch")
	}

	issued, err := s.tokens.CreateToken(ctx, storage.Token{
		Token: token.NewTokenString(),
		Value: registered.Value,
	})
	if err != nil {
		return "", errors.Wrap(errors.CodeStoreFailure, "issue paired token", err)
	}
	return issued.Token, nil
}

// Revoke deletes the pairing record for a registration key, ending the
// device's ability to complete pairing with it. Already-issued tokens are
// untouched.
func (s *Service) Revoke(ctx context.Context, registrationKey string) error {
	if _, err := s.tokens.DeleteToken(ctx, registrationKey); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return errors.New(errors.CodeNotFound, "registration key not found")
		}
		return errors.Wrap(errors.CodeStoreFailure, "revoke registration key", err)
	}
	return nil
}
