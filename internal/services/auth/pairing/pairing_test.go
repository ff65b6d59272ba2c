package pairing

import (
	"testing"

	"github.com/bbc/radiotag-authserver/internal/jsonval"
)

func TestGeneratePINFixedWidth(t *testing.T) {
	for _, digits := range []int{4, 6, 8} {
		for range 50 {
			pin, err := GeneratePIN(digits)
			if err != nil {
				t.Fatalf("generate pin: %v", err)
			}
			if len(pin) != digits {
				t.Fatalf("expected %d digits, got %q", digits, pin)
			}
			for _, r := range pin {
				if r < '0' || r > '9' {
					t.Fatalf("expected numeric pin, got %q", pin)
				}
			}
		}
	}
}

func TestGeneratePINRejectsBadWidth(t *testing.T) {
	for _, digits := range []int{0, 3, 9, -1} {
		if _, err := GeneratePIN(digits); err == nil {
			t.Fatalf("expected error for width %d", digits)
		}
	}
}

func TestGeneratePINVaries(t *testing.T) {
	seen := make(map[string]bool)
	for range 20 {
		pin, err := GeneratePIN(8)
		if err != nil {
			t.Fatalf("generate pin: %v", err)
		}
		seen[pin] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected pins to vary across calls")
	}
}

func TestClaimsValue(t *testing.T) {
	claims := Claims{AccountID: "99", AccountName: "brian", PIN: "1234"}
	value := claims.Value()

	decoded, err := jsonval.DecodeString(`{"account_id": "99", "account_name": "brian", "pin": "1234"}`)
	if err != nil {
		t.Fatalf("decode expected claims: %v", err)
	}
	if !jsonval.Equal(value, decoded) {
		t.Fatalf("unexpected claims document: %v", value)
	}
}
