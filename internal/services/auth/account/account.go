// Package account provides CRUD over account identity records.
package account

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/bbc/radiotag-authserver/internal/platform/errors"
	"github.com/bbc/radiotag-authserver/internal/platform/id"
	"github.com/bbc/radiotag-authserver/internal/services/auth/storage"
)

// Service manages account records keyed by caller-supplied identifiers.
type Service struct {
	store storage.AccountStore
}

// NewService creates an account service backed by store.
func NewService(store storage.AccountStore) *Service {
	return &Service{store: store}
}

// Create stores a new account. When accountID is empty a surrogate id is
// minted; otherwise the caller-supplied id must be unused.
func (s *Service) Create(ctx context.Context, accountID, name string) (storage.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Account{}, errors.New(errors.CodeInvalidParam, "account name is required")
	}

	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		minted, err := id.NewID()
		if err != nil {
			return storage.Account{}, errors.Wrap(errors.CodeStoreFailure, "mint account id", err)
		}
		accountID = minted
	}

	created, err := s.store.CreateAccount(ctx, storage.Account{
		ID:   accountID,
		Name: name,
	})
	if err != nil {
		if stderrors.Is(err, storage.ErrAlreadyExists) {
			return storage.Account{}, errors.WithMetadata(errors.CodeAccountExists, "account already exists", map[string]string{"id": accountID})
		}
		return storage.Account{}, errors.Wrap(errors.CodeStoreFailure, "create account", err)
	}
	return created, nil
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, accountID string) (storage.Account, error) {
	found, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.Account{}, errors.New(errors.CodeNotFound, "account not found")
		}
		return storage.Account{}, errors.Wrap(errors.CodeStoreFailure, "get account", err)
	}
	return found, nil
}

// Delete removes the account and returns its pre-deletion snapshot. Tokens
// referring to the account are not cascaded.
func (s *Service) Delete(ctx context.Context, accountID string) (storage.Account, error) {
	deleted, err := s.store.DeleteAccount(ctx, accountID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.Account{}, errors.New(errors.CodeNotFound, "account not found")
		}
		return storage.Account{}, errors.Wrap(errors.CodeStoreFailure, "delete account", err)
	}
	return deleted, nil
}
