package sharelink_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/sagarc03/sharelink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkParams_URL(t *testing.T) {
	p := sharelink.LinkParams{ContentID: "c1", OwnerID: "alice smith", ExpiresAt: 1700000000, Signature: "abc"}

	raw := p.URL("https://files.example.com/")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "files.example.com", u.Host)
	assert.Equal(t, sharelink.DownloadPath, u.Path)

	parsed, err := sharelink.ParseLinkParams(u.Query())
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
}

func TestParseLinkParams_Missing(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		message string
	}{
		{
			name:    "all missing",
			query:   url.Values{},
			message: "missing parameters: file_id, owner_id, exp, sig",
		},
		{
			name:    "signature missing",
			query:   url.Values{"file_id": {"c1"}, "owner_id": {"alice"}, "exp": {"1"}},
			message: "missing parameters: sig",
		},
		{
			name:    "empty values count as missing",
			query:   url.Values{"file_id": {""}, "owner_id": {"alice"}, "exp": {"1"}, "sig": {"x"}},
			message: "missing parameters: file_id",
		},
		{
			name:    "non integer expiry",
			query:   url.Values{"file_id": {"c1"}, "owner_id": {"alice"}, "exp": {"soon"}, "sig": {"x"}},
			message: "exp must be an integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sharelink.ParseLinkParams(tt.query)
			require.ErrorIs(t, err, sharelink.ErrInvalidRequest)

			var reqErr *sharelink.RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, tt.message, reqErr.Message)
		})
	}
}
