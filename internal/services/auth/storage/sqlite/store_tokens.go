package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bbc/radiotag-authserver/internal/jsonval"
	"github.com/bbc/radiotag-authserver/internal/platform/id"
	"github.com/bbc/radiotag-authserver/internal/services/auth/storage"
)

const tokenColumns = "id, token, value_json, created_at"

// normalizeToken fills store-assigned fields and computes the encodings a
// token row needs. The canonical form backs value-based deduplication.
func normalizeToken(tok storage.Token) (storage.Token, string, string, error) {
	if tok.Token == "" {
		return storage.Token{}, "", "", fmt.Errorf("token string is required")
	}
	if tok.ID == "" {
		surrogate, err := id.NewID()
		if err != nil {
			return storage.Token{}, "", "", fmt.Errorf("mint token id: %w", err)
		}
		tok.ID = surrogate
	}
	if tok.CreatedAt.IsZero() {
		tok.CreatedAt = time.Now().UTC()
	}

	valueJSON, err := jsonval.Encode(tok.Value)
	if err != nil {
		return storage.Token{}, "", "", fmt.Errorf("encode token value: %w", err)
	}
	canonical, err := jsonval.Canonical(tok.Value)
	if err != nil {
		return storage.Token{}, "", "", fmt.Errorf("canonicalize token value: %w", err)
	}
	return tok, valueJSON, canonical, nil
}

type tokenScanner interface {
	Scan(dest ...any) error
}

func scanToken(row tokenScanner) (storage.Token, error) {
	var tok storage.Token
	var valueJSON string
	var createdAt int64
	if err := row.Scan(&tok.ID, &tok.Token, &valueJSON, &createdAt); err != nil {
		return storage.Token{}, err
	}
	value, err := jsonval.DecodeString(valueJSON)
	if err != nil {
		return storage.Token{}, fmt.Errorf("decode token value: %w", err)
	}
	tok.Value = value
	tok.CreatedAt = fromMillis(createdAt)
	return tok, nil
}

// GetToken returns the record whose token equals tokenString.
func (s *Store) GetToken(ctx context.Context, tokenString string) (storage.Token, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+tokenColumns+" FROM tokens WHERE token = ?", tokenString)
	tok, err := scanToken(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return storage.Token{}, storage.ErrNotFound
		}
		return storage.Token{}, fmt.Errorf("get token: %w", err)
	}
	return tok, nil
}

// CreateToken inserts a new token record. The unique index on the token
// column makes the existence check and the insert one atomic step.
func (s *Store) CreateToken(ctx context.Context, tok storage.Token) (storage.Token, error) {
	normalized, valueJSON, canonical, err := normalizeToken(tok)
	if err != nil {
		return storage.Token{}, err
	}

	result, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO tokens (id, token, value_json, value_canonical, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(token) DO NOTHING
`,
		normalized.ID,
		normalized.Token,
		valueJSON,
		canonical,
		toMillis(normalized.CreatedAt),
	)
	if err != nil {
		return storage.Token{}, fmt.Errorf("create token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.Token{}, fmt.Errorf("create token rows affected: %w", err)
	}
	if affected == 0 {
		return storage.Token{}, storage.ErrAlreadyExists
	}
	return normalized, nil
}

// FindOrCreateTokenByString returns the record matching tok.Token, creating
// it when absent.
func (s *Store) FindOrCreateTokenByString(ctx context.Context, tok storage.Token) (storage.Token, bool, error) {
	normalized, valueJSON, canonical, err := normalizeToken(tok)
	if err != nil {
		return storage.Token{}, false, err
	}

	result, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO tokens (id, token, value_json, value_canonical, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(token) DO NOTHING
`,
		normalized.ID,
		normalized.Token,
		valueJSON,
		canonical,
		toMillis(normalized.CreatedAt),
	)
	if err != nil {
		return storage.Token{}, false, fmt.Errorf("find or create token by string: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.Token{}, false, fmt.Errorf("find or create token rows affected: %w", err)
	}

	found, err := s.GetToken(ctx, normalized.Token)
	if err != nil {
		return storage.Token{}, false, fmt.Errorf("read back token: %w", err)
	}
	return found, affected > 0, nil
}

// FindOrCreateTokenByValue returns the record whose value matches tok.Value
// structurally, creating tok when no match exists.
//
// The insert and existence check run as one statement, so SQLite's writer
// serialization guarantees at most one of any set of concurrent callers
// inserts. The oldest matching row wins on read-back, which keeps repeated
// calls stable even after other flows duplicate the value.
func (s *Store) FindOrCreateTokenByValue(ctx context.Context, tok storage.Token) (storage.Token, bool, error) {
	normalized, valueJSON, canonical, err := normalizeToken(tok)
	if err != nil {
		return storage.Token{}, false, err
	}

	result, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO tokens (id, token, value_json, value_canonical, created_at)
SELECT ?, ?, ?, ?, ?
WHERE NOT EXISTS (SELECT 1 FROM tokens WHERE value_canonical = ?)
`,
		normalized.ID,
		normalized.Token,
		valueJSON,
		canonical,
		toMillis(normalized.CreatedAt),
		canonical,
	)
	if err != nil {
		return storage.Token{}, false, fmt.Errorf("find or create token by value: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.Token{}, false, fmt.Errorf("find or create token rows affected: %w", err)
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+tokenColumns+" FROM tokens WHERE value_canonical = ? ORDER BY rowid LIMIT 1", canonical)
	found, err := scanToken(row)
	if err != nil {
		return storage.Token{}, false, fmt.Errorf("read back token by value: %w", err)
	}
	return found, affected > 0, nil
}

// DeleteToken removes the record whose token equals tokenString and returns
// a pre-deletion snapshot.
func (s *Store) DeleteToken(ctx context.Context, tokenString string) (storage.Token, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"DELETE FROM tokens WHERE token = ? RETURNING "+tokenColumns, tokenString)
	tok, err := scanToken(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return storage.Token{}, storage.ErrNotFound
		}
		return storage.Token{}, fmt.Errorf("delete token: %w", err)
	}
	return tok, nil
}

// CountTokens returns the total number of token records.
func (s *Store) CountTokens(ctx context.Context) (int64, error) {
	var count int64
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM tokens").Scan(&count); err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return count, nil
}
