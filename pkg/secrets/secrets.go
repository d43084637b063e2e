// Package secrets resolves sensitive configuration (the NLU API key,
// the captcha secret, the database password) from HashiCorp Vault,
// falling back to environment variables when Vault is disabled or the
// key is absent there.
package secrets

import (
	"context"

	"sentiment-analyzer/backend/pkg/logger"
)

// Manager provides access to secrets from various sources
type Manager interface {
	// GetSecret retrieves a secret by key
	GetSecret(ctx context.Context, key string) (string, error)

	// GetSecretWithDefault retrieves a secret with a default value if not found
	GetSecretWithDefault(ctx context.Context, key, defaultValue string) string
}

// NewManager initializes the secrets manager. With VAULT_ENABLED
// unset or false this degrades to a plain environment-variable lookup.
func NewManager(log *logger.Logger) (Manager, error) {
	return NewVaultManager(log)
}
