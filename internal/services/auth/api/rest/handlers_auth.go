package rest

import (
	"net/http"

	"github.com/bbc/radiotag-authserver/internal/services/auth/token"
)

// handleLookup serves GET /auth: exact-match token lookup, no side effects.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	p, err := bindParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	tokenString, _ := p.str("token")

	found, err := s.tokens.Lookup(r.Context(), tokenString)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenDocument(found))
}

// handleIssue serves POST /auth. The branch is chosen by which parameters
// are present, in fixed precedence: registration_key + pin exchange, then
// grant, then explicit token string.
func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	p, err := bindParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	switch {
	case p.has("registration_key"):
		s.issueByRegistrationKey(w, r, p)
	case p.has("grant"):
		s.issueByGrant(w, r, p)
	case p.has("token"):
		s.issueByTokenString(w, r, p)
	default:
		http.Error(w, "no token, grant, or registration_key", http.StatusBadRequest)
	}
}

func (s *Server) issueByRegistrationKey(w http.ResponseWriter, r *http.Request, p params) {
	registrationKey, err := p.require("registration_key")
	if err != nil {
		writeError(w, err)
		return
	}
	pin, err := p.require("pin")
	if err != nil {
		writeError(w, err)
		return
	}

	issued, err := s.pairing.Complete(r.Context(), registrationKey, pin)
	if err != nil {
		// Bad key or pin reports a bare 401: the response must leak
		// neither the pin nor the claims.
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": issued})
}

func (s *Server) issueByGrant(w http.ResponseWriter, r *http.Request, p params) {
	grant, _ := p.doc("grant")

	issued, err := s.tokens.IssueByGrant(r.Context(), grant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": issued.Token})
}

func (s *Server) issueByTokenString(w http.ResponseWriter, r *http.Request, p params) {
	tokenString, _ := p.str("token")
	value, _ := p.doc("value")

	issued, err := s.tokens.IssueByTokenString(r.Context(), tokenString, value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": issued.Token})
}

// handleAuthorized serves POST /authorized: a read-only authorization check
// that never creates records.
func (s *Server) handleAuthorized(w http.ResponseWriter, r *http.Request) {
	p, err := bindParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	presented := token.Presented{}
	if tokenString, ok := p.str("token"); ok {
		presented.Token = tokenString
	} else if grant, ok := p.doc("grant"); ok {
		presented.Grant = grant
	}

	tokenString, err := s.tokens.CheckAuthorized(r.Context(), presented)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": tokenString})
}

// handleBeginPairing serves POST /assoc: registers a device against an
// account and returns the gating PIN.
func (s *Server) handleBeginPairing(w http.ResponseWriter, r *http.Request) {
	p, err := bindParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	registrationKey, err := p.require("registration_key")
	if err != nil {
		writeError(w, err)
		return
	}
	accountID, err := p.require("id")
	if err != nil {
		writeError(w, err)
		return
	}

	pin, err := s.pairing.Begin(r.Context(), registrationKey, accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"pin": pin})
}

// handleRevokePairing serves DELETE /assoc/{registration_key}.
func (s *Server) handleRevokePairing(w http.ResponseWriter, r *http.Request) {
	registrationKey := r.PathValue("registration_key")

	if err := s.pairing.Revoke(r.Context(), registrationKey); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
