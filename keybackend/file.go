package keybackend

import (
	"bytes"
	"fmt"
	"os"
)

// LoadSecretFromFile reads a signing secret from a file.
// The whole file is the secret, except for trailing whitespace and newlines,
// so files written by `openssl rand -hex 32 > secret` work as is.
func LoadSecretFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read secret file: %w", err)
	}

	return bytes.TrimRight(data, " \t\r\n"), nil
}
