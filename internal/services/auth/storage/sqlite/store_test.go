package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bbc/radiotag-authserver/internal/jsonval"
	"github.com/bbc/radiotag-authserver/internal/services/auth/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir() + "/auth.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustDecode(t *testing.T, raw string) jsonval.Value {
	t.Helper()
	value, err := jsonval.DecodeString(raw)
	if err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return value
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCreateAndGetToken(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateToken(ctx, storage.Token{
		Token: "VALID_TOKEN",
		Value: mustDecode(t, `{"id": 42}`),
	})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected store-assigned id")
	}

	found, err := store.GetToken(ctx, "VALID_TOKEN")
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected id %s, got %s", created.ID, found.ID)
	}
	if !jsonval.Equal(found.Value, mustDecode(t, `{"id": 42}`)) {
		t.Fatalf("unexpected value round trip: %v", found.Value)
	}
}

func TestGetTokenNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetToken(context.Background(), "MISSING")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateTokenDuplicate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateToken(ctx, storage.Token{Token: "KEY"}); err != nil {
		t.Fatalf("create token: %v", err)
	}
	_, err := store.CreateToken(ctx, storage.Token{Token: "KEY", Value: mustDecode(t, `{"other": true}`)})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	count, err := store.CountTokens(ctx)
	if err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 token after duplicate create, got %d", count)
	}
}

func TestCreateTokenNilValue(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateToken(ctx, storage.Token{Token: "BARE"}); err != nil {
		t.Fatalf("create token without value: %v", err)
	}
	found, err := store.GetToken(ctx, "BARE")
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if found.Value != nil {
		t.Fatalf("expected nil value, got %v", found.Value)
	}
}

func TestFindOrCreateTokenByStringIgnoresSecondValue(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, created, err := store.FindOrCreateTokenByString(ctx, storage.Token{
		Token: "BOB",
		Value: mustDecode(t, `{"scope": "unpaired"}`),
	})
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if !created {
		t.Fatal("expected first call to create")
	}

	second, created, err := store.FindOrCreateTokenByString(ctx, storage.Token{
		Token: "BOB",
		Value: mustDecode(t, `{"scope": "different"}`),
	})
	if err != nil {
		t.Fatalf("find or create again: %v", err)
	}
	if created {
		t.Fatal("expected second call to hit")
	}
	if second.ID != first.ID {
		t.Fatalf("expected stable record, got %s then %s", first.ID, second.ID)
	}
	if !jsonval.Equal(second.Value, mustDecode(t, `{"scope": "unpaired"}`)) {
		t.Fatalf("expected original value preserved, got %v", second.Value)
	}
}

func TestFindOrCreateTokenByValueIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, created, err := store.FindOrCreateTokenByValue(ctx, storage.Token{
		Token: "token-one",
		Value: mustDecode(t, `{"scope": "unpaired", "token": "ABCD"}`),
	})
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if !created {
		t.Fatal("expected first call to create")
	}

	// Key order differs; structural equality must still match.
	second, created, err := store.FindOrCreateTokenByValue(ctx, storage.Token{
		Token: "token-two",
		Value: mustDecode(t, `{"token": "ABCD", "scope": "unpaired"}`),
	})
	if err != nil {
		t.Fatalf("find or create again: %v", err)
	}
	if created {
		t.Fatal("expected second call to hit")
	}
	if second.Token != first.Token {
		t.Fatalf("expected same token string, got %s then %s", first.Token, second.Token)
	}

	third, created, err := store.FindOrCreateTokenByValue(ctx, storage.Token{
		Token: "token-three",
		Value: mustDecode(t, `{"scope": "can_register"}`),
	})
	if err != nil {
		t.Fatalf("find or create distinct: %v", err)
	}
	if !created {
		t.Fatal("expected distinct value to create")
	}
	if third.Token == first.Token {
		t.Fatal("expected distinct values to yield distinct tokens")
	}
}

func TestFindOrCreateTokenByValueStableAfterDuplicates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	value := mustDecode(t, `{"account_id": "99", "pin": "1234"}`)
	first, _, err := store.FindOrCreateTokenByValue(ctx, storage.Token{Token: "first", Value: value})
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}

	// Pairing completion copies values into fresh records; grant lookups must
	// keep resolving to the original.
	if _, err := store.CreateToken(ctx, storage.Token{Token: "copy", Value: value}); err != nil {
		t.Fatalf("create duplicate-value token: %v", err)
	}

	again, created, err := store.FindOrCreateTokenByValue(ctx, storage.Token{Token: "unused", Value: value})
	if err != nil {
		t.Fatalf("find or create after duplicate: %v", err)
	}
	if created {
		t.Fatal("expected hit after duplicate")
	}
	if again.Token != first.Token {
		t.Fatalf("expected oldest record %s, got %s", first.Token, again.Token)
	}
}

func TestFindOrCreateTokenByValueConcurrent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	value := mustDecode(t, `{"scope": "unpaired"}`)

	const callers = 8
	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, _, err := store.FindOrCreateTokenByValue(ctx, storage.Token{
				Token: "candidate-" + string(rune('a'+i)),
				Value: value,
			})
			if err != nil {
				t.Errorf("concurrent find or create: %v", err)
				return
			}
			results[i] = tok.Token
		}()
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatalf("concurrent callers observed distinct tokens: %s vs %s", results[0], results[i])
		}
	}
	count, err := store.CountTokens(ctx)
	if err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one record, got %d", count)
	}
}

func TestDeleteToken(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateToken(ctx, storage.Token{Token: "qwertz", Value: mustDecode(t, `{"pin": "0000"}`)}); err != nil {
		t.Fatalf("create token: %v", err)
	}

	deleted, err := store.DeleteToken(ctx, "qwertz")
	if err != nil {
		t.Fatalf("delete token: %v", err)
	}
	if deleted.Token != "qwertz" {
		t.Fatalf("expected snapshot of deleted token, got %s", deleted.Token)
	}

	if _, err := store.GetToken(ctx, "qwertz"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := store.DeleteToken(ctx, "qwertz"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

func TestAccountLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateAccount(ctx, storage.Account{ID: "99", Name: "brian"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	_, err = store.CreateAccount(ctx, storage.Account{ID: "99", Name: "bob"})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for duplicate id, got %v", err)
	}

	found, err := store.GetAccount(ctx, "99")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if found.Name != "brian" {
		t.Fatalf("expected original name preserved, got %s", found.Name)
	}

	deleted, err := store.DeleteAccount(ctx, "99")
	if err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if deleted.Name != "brian" {
		t.Fatalf("expected pre-deletion snapshot, got %s", deleted.Name)
	}
	if _, err := store.GetAccount(ctx, "99"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
