package jsonval

import (
	"testing"
)

func TestEqualIgnoresKeyOrder(t *testing.T) {
	a, err := DecodeString(`{"scope": "unpaired", "token": "ABCD"}`)
	if err != nil {
		t.Fatalf("decode a: %v", err)
	}
	b, err := DecodeString(`{"token": "ABCD", "scope": "unpaired"}`)
	if err != nil {
		t.Fatalf("decode b: %v", err)
	}
	if !Equal(a, b) {
		t.Fatal("expected objects with reordered keys to be equal")
	}
}

func TestEqualDistinguishesNumberFromString(t *testing.T) {
	a, err := DecodeString(`{"account_id": 99}`)
	if err != nil {
		t.Fatalf("decode a: %v", err)
	}
	b, err := DecodeString(`{"account_id": "99"}`)
	if err != nil {
		t.Fatalf("decode b: %v", err)
	}
	if Equal(a, b) {
		t.Fatal("expected number and string values to differ")
	}
}

func TestEqualNested(t *testing.T) {
	a, err := DecodeString(`{"grant": {"scope": "unpaired", "ids": [1, 2, 3]}}`)
	if err != nil {
		t.Fatalf("decode a: %v", err)
	}
	b, err := DecodeString(`{"grant": {"ids": [1, 2, 3], "scope": "unpaired"}}`)
	if err != nil {
		t.Fatalf("decode b: %v", err)
	}
	if !Equal(a, b) {
		t.Fatal("expected nested structures to compare deeply")
	}

	c, err := DecodeString(`{"grant": {"ids": [3, 2, 1], "scope": "unpaired"}}`)
	if err != nil {
		t.Fatalf("decode c: %v", err)
	}
	if Equal(a, c) {
		t.Fatal("expected array order to matter")
	}
}

func TestCanonicalStable(t *testing.T) {
	v, err := DecodeString(`{"b": 1, "a": {"d": null, "c": true}}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	canonical, err := Canonical(v)
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	want := `{"a":{"c":true,"d":null},"b":1}`
	if canonical != want {
		t.Fatalf("expected %s, got %s", want, canonical)
	}
}

func TestCanonicalGoNativeValues(t *testing.T) {
	native := map[string]any{
		"account_id":   "99",
		"account_name": "brian",
		"pin":          "1234",
	}
	decoded, err := DecodeString(`{"pin": "1234", "account_name": "brian", "account_id": "99"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !Equal(native, decoded) {
		t.Fatal("expected values built in Go to match their decoded form")
	}
}

func TestCanonicalNil(t *testing.T) {
	canonical, err := Canonical(nil)
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	if canonical != "null" {
		t.Fatalf("expected null, got %s", canonical)
	}
}

func TestStringField(t *testing.T) {
	v, err := DecodeString(`{"pin": "1234", "attempts": 3}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	pin, ok := StringField(v, "pin")
	if !ok || pin != "1234" {
		t.Fatalf("expected pin field, got %q ok=%v", pin, ok)
	}
	if _, ok := StringField(v, "attempts"); ok {
		t.Fatal("expected non-string field to report absent")
	}
	if _, ok := StringField("not an object", "pin"); ok {
		t.Fatal("expected non-object value to report absent")
	}
}

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	if _, err := DecodeString(`{"unterminated`); err == nil {
		t.Fatal("expected error for invalid json")
	}
}
