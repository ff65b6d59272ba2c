package server

import (
	"context"
	"fmt"

	"github.com/bbc/radiotag-authserver/internal/services/auth/token"
)

// Well-known bootstrap tokens issued at startup so freshly provisioned
// receivers can present a usable scope token before pairing.
var bootstrapTokens = []struct {
	token string
	scope string
}{
	{token: "b86bfdfb-5ff5-4cc7-8c61-daaa4804f188", scope: "unpaired"},
	{token: "ddc7f510-9353-45ad-9202-746ffe3b663a", scope: "can_register"},
}

// seedTokens issues the bootstrap scope tokens. Issuance is idempotent, so
// repeated startups leave existing records untouched.
func seedTokens(ctx context.Context, tokens *token.Service) error {
	for _, seed := range bootstrapTokens {
		value := map[string]any{"scope": seed.scope}
		if _, err := tokens.IssueByTokenString(ctx, seed.token, value); err != nil {
			return fmt.Errorf("seed %s token: %w", seed.scope, err)
		}
	}
	return nil
}
