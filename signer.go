package sharelink

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
)

// SignatureAlgorithm names the MAC used for capability links.
const SignatureAlgorithm = "HMAC-SHA256"

// Signer derives and verifies capability signatures under a process-wide secret.
// It holds no mutable state and is safe for concurrent use.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer. The secret is copied; later changes to the
// caller's slice do not affect issued or verified links.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("new signer: secret cannot be empty")
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &Signer{secret: key}, nil
}

// Sign returns the lowercase hex HMAC-SHA256 of "contentID:ownerID:expiresAt".
func (s *Signer) Sign(contentID, ownerID string, expiresAt int64) string {
	return hex.EncodeToString(s.mac(contentID, ownerID, expiresAt))
}

// Verify recomputes the signature and compares it to signature in constant time.
func (s *Signer) Verify(contentID, ownerID string, expiresAt int64, signature string) bool {
	expected := s.Sign(contentID, ownerID, expiresAt)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *Signer) mac(contentID, ownerID string, expiresAt int64) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(canonicalMessage(contentID, ownerID, expiresAt)))
	return h.Sum(nil)
}

func canonicalMessage(contentID, ownerID string, expiresAt int64) string {
	return contentID + ":" + ownerID + ":" + strconv.FormatInt(expiresAt, 10)
}
