// Package auth defines the token-issuance and device-pairing boundary.
//
// It owns opaque bearer token lifecycle, the registration-key + PIN pairing
// exchange, and the account records pairing claims refer to, so transport
// layers can depend on stable issuance and authorization semantics instead
// of re-implementing them.
//
// Subpackages:
//   - app: auth server wiring and lifecycle
//   - api/rest: HTTP handlers and request binding
//   - token: token issuance and authorization checks
//   - pairing: registration-key + PIN pairing protocol
//   - account: account records and validation
//   - storage: persistence interfaces and the SQLite implementation
package auth
