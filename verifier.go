package sharelink

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// LinkVerifier authorizes downloads presented with capability link parameters.
type LinkVerifier struct {
	repo   MetadataStore
	signer *Signer
}

func NewLinkVerifier(repo MetadataStore, signer *Signer) (*LinkVerifier, error) {
	if signer == nil {
		return nil, errors.New("new link verifier: signer is required")
	}
	return &LinkVerifier{repo: repo, signer: signer}, nil
}

// Authorize returns the file record (and so the locator) a valid link grants access to.
//
// The expiry is checked first: a link is expired once now reaches its deadline.
// The signature is checked next, before the metadata store is consulted, so a
// forged link for a missing file fails exactly like a forged link for an
// existing one. Signature, existence and ownership failures all match
// ErrAccessDenied in addition to their specific error.
func (v *LinkVerifier) Authorize(ctx context.Context, p LinkParams, now time.Time) (FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return FileRecord{}, fmt.Errorf("authorize: %w", err)
	}

	if p.ExpiresAt <= now.Unix() {
		return FileRecord{}, fmt.Errorf("authorize: %w", ErrLinkExpired)
	}

	if !v.signer.Verify(p.ContentID, p.OwnerID, p.ExpiresAt, p.Signature) {
		return FileRecord{}, fmt.Errorf("authorize: %w: %w", ErrAccessDenied, ErrInvalidSignature)
	}

	record, err := v.repo.GetFile(ctx, p.ContentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return FileRecord{}, fmt.Errorf("authorize %s: %w: %w", p.ContentID, ErrAccessDenied, ErrNotFound)
		}
		return FileRecord{}, fmt.Errorf("authorize %s: %w", p.ContentID, err)
	}

	if record.OwnerID != p.OwnerID {
		return FileRecord{}, fmt.Errorf("authorize %s: %w: %w", p.ContentID, ErrAccessDenied, ErrForbidden)
	}

	return record, nil
}
