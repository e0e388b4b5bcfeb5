package sharelink

import (
	"net/url"
	"strconv"
	"strings"
)

// DownloadPath is the route a capability link points at.
const DownloadPath = "/v1/files/download"

// Query parameter names of a capability link.
const (
	ParamFileID    = "file_id"
	ParamOwnerID   = "owner_id"
	ParamExpires   = "exp"
	ParamSignature = "sig"
)

// LinkParams are the four values a capability link carries.
type LinkParams struct {
	ContentID string `json:"file_id"`
	OwnerID   string `json:"owner_id"`
	ExpiresAt int64  `json:"expires_at"`
	Signature string `json:"sig"`
}

// Query encodes the parameters as URL query values.
func (p LinkParams) Query() url.Values {
	q := url.Values{}
	q.Set(ParamFileID, p.ContentID)
	q.Set(ParamOwnerID, p.OwnerID)
	q.Set(ParamExpires, strconv.FormatInt(p.ExpiresAt, 10))
	q.Set(ParamSignature, p.Signature)
	return q
}

// URL returns the download URL for the link under base (scheme and host, optionally a path prefix).
func (p LinkParams) URL(base string) string {
	return strings.TrimSuffix(base, "/") + DownloadPath + "?" + p.Query().Encode()
}

// ParseLinkParams extracts link parameters from query values.
// A missing parameter or a non-integer expiry is an ErrInvalidRequest, not a capability failure.
func ParseLinkParams(q url.Values) (LinkParams, error) {
	var missing []string
	for _, name := range []string{ParamFileID, ParamOwnerID, ParamExpires, ParamSignature} {
		if q.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return LinkParams{}, newRequestError(ErrInvalidRequest, "missing parameters: "+strings.Join(missing, ", "))
	}

	exp, err := strconv.ParseInt(q.Get(ParamExpires), 10, 64)
	if err != nil {
		return LinkParams{}, newRequestError(ErrInvalidRequest, "exp must be an integer")
	}

	return LinkParams{
		ContentID: q.Get(ParamFileID),
		OwnerID:   q.Get(ParamOwnerID),
		ExpiresAt: exp,
		Signature: q.Get(ParamSignature),
	}, nil
}
