// Package sharelink stores private files and grants time-limited access to
// them through self-certifying capability links.
//
// A link carries four values: the content id, the owner id, an absolute expiry
// (Unix seconds) and an HMAC-SHA256 signature over the first three. Nothing
// about a link is stored; verification recomputes the signature, so links
// cannot be revoked before they expire. Only their issuance is audited.
//
// # Key Components
//
//   - ContentStore: streaming, size-bounded, owner-scoped byte storage (see the filesystem package)
//   - Signer: derives and verifies link signatures
//   - LinkIssuer: enforces the ttl policy and ownership, signs, and audits
//   - LinkVerifier: checks expiry, signature, existence and ownership, in that order
//   - MetadataStore: durable file records and the issuance log (see the database package)
//   - Service: wires the above together for transports
//
// # Example Usage
//
//	signer, err := sharelink.NewSigner(secret)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	service, err := sharelink.NewService(repo, storage, signer, sharelink.ServiceConfig{
//	    MaxUploadSize: 50 << 20,
//	    Policy:        sharelink.TTLPolicy{MinSeconds: 30, MaxSeconds: 86400},
//	})
//
//	record, err := service.Upload(ctx, sharelink.UploadRequest{OwnerID: "u-1", Filename: "a.txt"}, body)
//	link, err := service.IssueLink(ctx, record.ContentID, "u-1", 600)
//	url := link.URL("https://files.example.com")
//
// See the http package for the REST API and the database package for the
// metadata backends.
package sharelink
