// Package rest exposes the auth server's HTTP surface.
//
// It binds Rack-style request parameters (flat form fields, bracketed nested
// fields, or JSON bodies) onto the token, pairing, and account services, and
// maps domain error codes onto the statuses RadioTAG clients observe.
package rest

import (
	"net/http"

	"github.com/bbc/radiotag-authserver/internal/services/auth/account"
	"github.com/bbc/radiotag-authserver/internal/services/auth/pairing"
	"github.com/bbc/radiotag-authserver/internal/services/auth/token"
)

// Server routes HTTP requests to the auth services.
type Server struct {
	tokens   *token.Service
	pairing  *pairing.Service
	accounts *account.Service
}

// NewServer creates an HTTP server over the given services.
func NewServer(tokens *token.Service, pairing *pairing.Service, accounts *account.Service) *Server {
	return &Server{
		tokens:   tokens,
		pairing:  pairing,
		accounts: accounts,
	}
}

// RegisterRoutes registers auth endpoints on the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}

	mux.HandleFunc("GET /auth", s.handleLookup)
	mux.HandleFunc("POST /auth", s.handleIssue)
	mux.HandleFunc("POST /authorized", s.handleAuthorized)
	mux.HandleFunc("POST /assoc", s.handleBeginPairing)
	mux.HandleFunc("DELETE /assoc/{registration_key}", s.handleRevokePairing)
	mux.HandleFunc("POST /account", s.handleCreateAccount)
	mux.HandleFunc("GET /account", s.handleGetAccount)
	mux.HandleFunc("GET /account/{id}", s.handleGetAccount)
	mux.HandleFunc("DELETE /account", s.handleDeleteAccount)
	mux.HandleFunc("DELETE /account/{id}", s.handleDeleteAccount)
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
