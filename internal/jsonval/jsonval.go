// Package jsonval models the schema-less JSON claims documents carried by
// tokens.
//
// A Value is any decoded JSON value: nil, bool, string, json.Number, []any,
// or map[string]any. Equality is structural: object key order is irrelevant
// but value types must match, so the number 1 and the string "1" are never
// equal. The canonical form is a deterministic encoding (objects with sorted
// keys) used by the store to deduplicate grant documents.
package jsonval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a decoded JSON value.
type Value = any

// Decode parses data into a Value, preserving number literals.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v Value
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json value: %w", err)
	}
	return v, nil
}

// DecodeString parses s into a Value.
func DecodeString(s string) (Value, error) {
	return Decode([]byte(s))
}

// Encode serializes a Value as JSON.
func Encode(v Value) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json value: %w", err)
	}
	return string(data), nil
}

// Canonical returns a deterministic encoding of v: object keys are sorted,
// and number literals are preserved. Two structurally equal values always
// produce the same canonical string.
func Canonical(v Value) (string, error) {
	var b strings.Builder
	if err := writeCanonical(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Equal reports whether two values are structurally equal.
func Equal(a, b Value) bool {
	ca, err := Canonical(a)
	if err != nil {
		return false
	}
	cb, err := Canonical(b)
	if err != nil {
		return false
	}
	return ca == cb
}

// Object returns v as a JSON object when it is one.
func Object(v Value) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok
}

// StringField returns the string held under key when v is an object with a
// string value at that key.
func StringField(v Value, key string) (string, bool) {
	obj, ok := Object(v)
	if !ok {
		return "", false
	}
	s, ok := obj[key].(string)
	return s, ok
}

func writeCanonical(b *strings.Builder, v Value) error {
	switch value := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(value))
	case string:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode string: %w", err)
		}
		b.Write(data)
	case json.Number:
		b.WriteString(value.String())
	case float64:
		b.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
	case int:
		b.WriteString(strconv.Itoa(value))
	case int64:
		b.WriteString(strconv.FormatInt(value, 10))
	case []any:
		b.WriteByte('[')
		for i, item := range value {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonical(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			data, err := json.Marshal(key)
			if err != nil {
				return fmt.Errorf("encode key: %w", err)
			}
			b.Write(data)
			b.WriteByte(':')
			if err := writeCanonical(b, value[key]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("unsupported json value type %T", v)
	}
	return nil
}
