package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bbc/radiotag-authserver/internal/services/auth/storage"
)

const accountColumns = "id, name, created_at"

func scanAccount(row tokenScanner) (storage.Account, error) {
	var account storage.Account
	var createdAt int64
	if err := row.Scan(&account.ID, &account.Name, &createdAt); err != nil {
		return storage.Account{}, err
	}
	account.CreatedAt = fromMillis(createdAt)
	return account, nil
}

// CreateAccount inserts a new account record, enforcing id uniqueness.
func (s *Store) CreateAccount(ctx context.Context, account storage.Account) (storage.Account, error) {
	if account.ID == "" {
		return storage.Account{}, fmt.Errorf("account id is required")
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	result, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO accounts (id, name, created_at)
VALUES (?, ?, ?)
ON CONFLICT(id) DO NOTHING
`,
		account.ID,
		account.Name,
		toMillis(account.CreatedAt),
	)
	if err != nil {
		return storage.Account{}, fmt.Errorf("create account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.Account{}, fmt.Errorf("create account rows affected: %w", err)
	}
	if affected == 0 {
		return storage.Account{}, storage.ErrAlreadyExists
	}
	return account, nil
}

// GetAccount returns the account with the given id.
func (s *Store) GetAccount(ctx context.Context, id string) (storage.Account, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	account, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return storage.Account{}, storage.ErrNotFound
		}
		return storage.Account{}, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// DeleteAccount removes the account and returns a pre-deletion snapshot.
func (s *Store) DeleteAccount(ctx context.Context, id string) (storage.Account, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"DELETE FROM accounts WHERE id = ? RETURNING "+accountColumns, id)
	account, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return storage.Account{}, storage.ErrNotFound
		}
		return storage.Account{}, fmt.Errorf("delete account: %w", err)
	}
	return account, nil
}
