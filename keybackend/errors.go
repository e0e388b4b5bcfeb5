package keybackend

import "errors"

var (
	// ErrSecretNotConfigured is returned when neither an inline secret nor a secret file is set.
	ErrSecretNotConfigured = errors.New("link signing secret not configured")
	// ErrSecretTooShort is returned when the secret is shorter than MinSecretLength bytes.
	ErrSecretTooShort = errors.New("link signing secret too short")
)
