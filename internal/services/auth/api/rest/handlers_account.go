package rest

import (
	"net/http"
)

// handleCreateAccount serves POST /account. The id is caller-supplied and
// must be unused; when absent the service mints one.
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	p, err := bindParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	name, err := p.require("name")
	if err != nil {
		writeError(w, err)
		return
	}
	accountID, _ := p.str("id")

	created, err := s.accounts.Create(r.Context(), accountID, name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountDocument(created))
}

// accountIDFromRequest resolves the account id from the path or, failing
// that, the request parameters.
func accountIDFromRequest(r *http.Request) (string, error) {
	if id := r.PathValue("id"); id != "" {
		return id, nil
	}
	p, err := bindParams(r)
	if err != nil {
		return "", err
	}
	return p.require("id")
}

// handleGetAccount serves GET /account and GET /account/{id}.
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	found, err := s.accounts.Get(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountDocument(found))
}

// handleDeleteAccount serves DELETE /account and DELETE /account/{id},
// returning the pre-deletion snapshot.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	deleted, err := s.accounts.Delete(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountDocument(deleted))
}
