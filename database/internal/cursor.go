// Package internal holds helpers shared by the metadata backends.
package internal

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/sagarc03/sharelink"
)

// Cursor is the keyset position after which the next page starts.
type Cursor struct {
	UploadedAt time.Time
	ContentID  string
}

// EncodeCursor encodes the position of the last item of a page.
func EncodeCursor(uploadedAt time.Time, contentID string) string {
	raw := uploadedAt.UTC().Format(time.RFC3339Nano) + "|" + contentID
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor decodes a cursor produced by EncodeCursor. An empty string
// decodes to the zero Cursor. Malformed cursors match sharelink.ErrInvalidRequest.
func DecodeCursor(cursor string) (Cursor, error) {
	if cursor == "" {
		return Cursor{}, nil
	}

	data, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid encoding: %w", sharelink.ErrInvalidRequest)
	}

	ts, contentID, found := strings.Cut(string(data), "|")
	if !found {
		return Cursor{}, fmt.Errorf("decode cursor: invalid format: %w", sharelink.ErrInvalidRequest)
	}

	if contentID == "" {
		return Cursor{}, fmt.Errorf("decode cursor: empty content id: %w", sharelink.ErrInvalidRequest)
	}

	uploadedAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid timestamp: %w", sharelink.ErrInvalidRequest)
	}

	return Cursor{UploadedAt: uploadedAt, ContentID: contentID}, nil
}
