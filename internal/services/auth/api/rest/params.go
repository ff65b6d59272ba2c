package rest

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/bbc/radiotag-authserver/internal/jsonval"
	"github.com/bbc/radiotag-authserver/internal/platform/errors"
)

// params holds decoded request parameters from the query string, form body,
// or a JSON body.
type params struct {
	values map[string]any
}

// bindParams collects request parameters. Form fields arrive as strings;
// bracketed names (grant[scope]=unpaired) fold into nested objects, matching
// the Rack binding existing RadioTAG clients encode. A JSON body contributes
// decoded values directly.
func bindParams(r *http.Request) (params, error) {
	p := params{values: make(map[string]any)}

	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			p.setBracketed(key, vals[0])
		}
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil && mediaType == "application/json" {
			var body map[string]any
			dec := json.NewDecoder(r.Body)
			dec.UseNumber()
			if err := dec.Decode(&body); err != nil {
				return params{}, errors.Wrap(errors.CodeInvalidParam, "invalid JSON body", err)
			}
			for key, value := range body {
				p.values[key] = value
			}
			return p, nil
		}
	}

	if err := r.ParseForm(); err != nil {
		return params{}, errors.Wrap(errors.CodeInvalidParam, "invalid form data", err)
	}
	for key, vals := range r.PostForm {
		if len(vals) > 0 {
			p.setBracketed(key, vals[0])
		}
	}
	return p, nil
}

// setBracketed stores a form value, folding names like grant[scope] into a
// nested object under "grant".
func (p params) setBracketed(key, value string) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		p.values[key] = value
		return
	}

	outer := key[:open]
	inner := key[open+1 : len(key)-1]
	if inner == "" {
		p.values[key] = value
		return
	}

	obj, ok := p.values[outer].(map[string]any)
	if !ok {
		obj = make(map[string]any)
		p.values[outer] = obj
	}
	obj[inner] = value
}

func (p params) has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// str returns the parameter as a string. JSON numbers and booleans convert
// to their literal form so callers can treat ids uniformly.
func (p params) str(key string) (string, bool) {
	raw, ok := p.values[key]
	if !ok {
		return "", false
	}
	switch value := raw.(type) {
	case string:
		return value, true
	case json.Number:
		return value.String(), true
	case bool:
		return fmt.Sprintf("%t", value), true
	default:
		return "", false
	}
}

// require returns the named string parameter or a MISSING_PARAM error,
// before any store access happens.
func (p params) require(key string) (string, error) {
	value, ok := p.str(key)
	if !ok {
		return "", errors.WithMetadata(errors.CodeMissingParam, "Missing param: "+key, map[string]string{"param": key})
	}
	return value, nil
}

// doc returns the parameter as a JSON claims document. Objects pass through;
// strings holding valid JSON decode; any other string stands as a bare JSON
// string value.
func (p params) doc(key string) (jsonval.Value, bool) {
	raw, ok := p.values[key]
	if !ok {
		return nil, false
	}
	switch value := raw.(type) {
	case string:
		if decoded, err := jsonval.DecodeString(value); err == nil {
			return decoded, true
		}
		return value, true
	default:
		return value, true
	}
}
