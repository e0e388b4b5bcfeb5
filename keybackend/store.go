// Package keybackend loads the secret capability links are signed with.
package keybackend

import (
	"fmt"
)

// MinSecretLength is the minimum accepted secret size in bytes.
const MinSecretLength = 16

// SecretConfig holds configuration for loading the link signing secret.
type SecretConfig struct {
	Inline string `mapstructure:"inline"` // Secret given directly in config or env
	File   string `mapstructure:"file"`   // Path to a file containing the secret
}

// LoadSecret returns the configured signing secret. When both are set the
// file takes precedence over the inline value.
func LoadSecret(cfg SecretConfig) ([]byte, error) {
	var secret []byte

	switch {
	case cfg.File != "":
		fileSecret, err := LoadSecretFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		secret = fileSecret
	case cfg.Inline != "":
		secret = []byte(cfg.Inline)
	default:
		return nil, ErrSecretNotConfigured
	}

	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrSecretTooShort, len(secret), MinSecretLength)
	}

	return secret, nil
}
