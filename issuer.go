package sharelink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// LinkIssuer mints capability links for files their owner asks to share.
type LinkIssuer struct {
	repo   MetadataStore
	signer *Signer
	policy TTLPolicy
}

func NewLinkIssuer(repo MetadataStore, signer *Signer, policy TTLPolicy) (*LinkIssuer, error) {
	if signer == nil {
		return nil, errors.New("new link issuer: signer is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("new link issuer: %w", err)
	}
	return &LinkIssuer{repo: repo, signer: signer, policy: policy}, nil
}

// Policy returns the ttl bounds the issuer enforces.
func (i *LinkIssuer) Policy() TTLPolicy {
	return i.policy
}

// Issue validates the request and returns signed link parameters expiring at now+ttlSeconds.
//
// Checks run in this order, each failing with its own error:
//  1. ttlSeconds within the policy bounds, inclusive (ErrInvalidTTL)
//  2. contentID has a file record (ErrNotFound)
//  3. ownerID owns that record (ErrForbidden)
//
// A successful issuance appends one audit event. If that append fails the
// failure is logged and the link is still returned.
func (i *LinkIssuer) Issue(ctx context.Context, contentID, ownerID string, ttlSeconds int64, now time.Time) (LinkParams, error) {
	if err := ctx.Err(); err != nil {
		return LinkParams{}, fmt.Errorf("issue link: %w", err)
	}

	if contentID == "" || ownerID == "" {
		return LinkParams{}, fmt.Errorf("issue link: %w", newRequestError(ErrInvalidRequest, "file_id and owner_id are required"))
	}

	if ttlSeconds < i.policy.MinSeconds {
		return LinkParams{}, fmt.Errorf("issue link: %w",
			newRequestError(ErrInvalidTTL, fmt.Sprintf("ttl_seconds must be >= %d", i.policy.MinSeconds)))
	}
	if ttlSeconds > i.policy.MaxSeconds {
		return LinkParams{}, fmt.Errorf("issue link: %w",
			newRequestError(ErrInvalidTTL, fmt.Sprintf("ttl_seconds must be <= %d", i.policy.MaxSeconds)))
	}

	record, err := i.repo.GetFile(ctx, contentID)
	if err != nil {
		return LinkParams{}, fmt.Errorf("issue link %s: %w", contentID, err)
	}

	if record.OwnerID != ownerID {
		return LinkParams{}, fmt.Errorf("issue link %s: %w", contentID, ErrForbidden)
	}

	expiresAt := now.Unix() + ttlSeconds
	params := LinkParams{
		ContentID: contentID,
		OwnerID:   ownerID,
		ExpiresAt: expiresAt,
		Signature: i.signer.Sign(contentID, ownerID, expiresAt),
	}

	event := LinkAuditEvent{
		ContentID:   contentID,
		OwnerID:     ownerID,
		TTLSeconds:  ttlSeconds,
		GeneratedAt: now.UTC(),
	}
	if auditErr := i.repo.AppendLinkAudit(ctx, event); auditErr != nil {
		slog.Warn("link issued without audit record",
			"file_id", contentID,
			"owner_id", ownerID,
			"err", fmt.Errorf("%w: %w", ErrAuditWriteFailed, auditErr),
		)
	}

	return params, nil
}
