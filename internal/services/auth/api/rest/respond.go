package rest

import (
	"encoding/json"
	"net/http"

	"github.com/bbc/radiotag-authserver/internal/platform/errors"
	"github.com/bbc/radiotag-authserver/internal/services/auth/storage"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps a domain error onto its HTTP status with the internal
// message as a plain-text body.
func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), errors.HTTPStatus(err))
}

// tokenDocument is the full token record shape returned by lookups.
func tokenDocument(tok storage.Token) map[string]any {
	return map[string]any{
		"id":    tok.ID,
		"token": tok.Token,
		"value": tok.Value,
	}
}

func accountDocument(account storage.Account) map[string]any {
	return map[string]any{
		"id":   account.ID,
		"name": account.Name,
	}
}
