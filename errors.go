package sharelink

import "errors"

var (
	// ErrInvalidRequest is returned when parameters are missing or malformed
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidTTL is returned when a requested link ttl is outside policy bounds
	ErrInvalidTTL = errors.New("invalid ttl")
	// ErrQuotaExceeded is returned when an upload exceeds the size cap
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrNotFound is returned when a file record does not exist
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the presented owner does not own the file
	ErrForbidden = errors.New("forbidden")
	// ErrLinkExpired is returned when a link deadline has passed
	ErrLinkExpired = errors.New("link expired")
	// ErrInvalidSignature is returned when a link signature does not verify
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrContentMissing is returned when metadata exists but the stored bytes do not
	ErrContentMissing = errors.New("content missing")
	// ErrAuditWriteFailed wraps link audit failures. It is logged, never returned to callers.
	ErrAuditWriteFailed = errors.New("audit write failed")
	// ErrDuplicateID is returned when a content id is already recorded
	ErrDuplicateID = errors.New("duplicate content id")
	// ErrAccessDenied groups the download failures a bearer must not be able to tell apart
	ErrAccessDenied = errors.New("access denied")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)

// RequestError carries a caller-facing message for a user-correctable failure.
// It unwraps to one of the sentinel errors above.
type RequestError struct {
	Kind    error
	Message string
}

func (e *RequestError) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Kind
}

func newRequestError(kind error, message string) error {
	return &RequestError{Kind: kind, Message: message}
}
