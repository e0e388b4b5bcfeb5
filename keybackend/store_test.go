package keybackend_test

import (
	"testing"

	"github.com/sagarc03/sharelink/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSecret_InlineOnly(t *testing.T) {
	t.Parallel()

	secret, err := keybackend.LoadSecret(keybackend.SecretConfig{Inline: "inline-secret-0123"})
	require.NoError(t, err)

	assert.Equal(t, "inline-secret-0123", string(secret))
}

func TestLoadSecret_FileOnly(t *testing.T) {
	t.Parallel()

	path := writeTestFile(t, "file-secret-0123456\n")

	secret, err := keybackend.LoadSecret(keybackend.SecretConfig{File: path})
	require.NoError(t, err)

	assert.Equal(t, "file-secret-0123456", string(secret))
}

func TestLoadSecret_FileTakesPrecedence(t *testing.T) {
	t.Parallel()

	path := writeTestFile(t, "file-secret-0123456")

	secret, err := keybackend.LoadSecret(keybackend.SecretConfig{Inline: "inline-secret-0123", File: path})
	require.NoError(t, err)

	assert.Equal(t, "file-secret-0123456", string(secret))
}

func TestLoadSecret_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := keybackend.LoadSecret(keybackend.SecretConfig{})

	assert.ErrorIs(t, err, keybackend.ErrSecretNotConfigured)
}

func TestLoadSecret_TooShort(t *testing.T) {
	t.Parallel()

	_, err := keybackend.LoadSecret(keybackend.SecretConfig{Inline: "short"})
	assert.ErrorIs(t, err, keybackend.ErrSecretTooShort)

	path := writeTestFile(t, "short\n\n\n\n\n\n\n\n\n\n\n\n")
	_, err = keybackend.LoadSecret(keybackend.SecretConfig{File: path})
	assert.ErrorIs(t, err, keybackend.ErrSecretTooShort, "trailing newlines do not count")
}

func TestLoadSecret_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := keybackend.LoadSecret(keybackend.SecretConfig{Inline: "inline-secret-0123", File: "/nonexistent/secret"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read secret file")
}
