package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sharelink/config"
)

var signCmd = &cobra.Command{
	Use:   "sign <file_id>",
	Short: "Issue a signed download link",
	Long: `Issue a time-limited download link for a stored file.

The same rules apply as for the HTTP API: the ttl must be within
links.min_ttl_seconds and links.max_ttl_seconds, and the owner must match the
file's owner. The issuance is recorded in the link audit log.

Examples:
  # Link valid for ten minutes
  sharelink sign 5f0c... --owner alice --ttl 600

  # Print the link parameters as JSON
  sharelink sign 5f0c... --owner alice --ttl 600 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSign,
}

var (
	signOwner string
	signTTL   int64
	signBase  string
	signJSON  bool
)

func init() {
	signCmd.Flags().StringVar(&signOwner, "owner", "", "owner id of the file (required)")
	signCmd.Flags().Int64Var(&signTTL, "ttl", 3600, "link lifetime in seconds")
	signCmd.Flags().StringVar(&signBase, "base-url", "", "base of the printed URL (default: server.public_url, then http://localhost:<port>)")
	signCmd.Flags().BoolVar(&signJSON, "json", false, "print the link as JSON")
	_ = signCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(signCmd)
}

type signOutput struct {
	FileID    string `json:"file_id"`
	OwnerID   string `json:"owner_id"`
	ExpiresAt int64  `json:"expires_at"`
	Signature string `json:"sig"`
	SignedURL string `json:"signed_url"`
}

func runSign(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if signOwner == "" {
		return errors.New("--owner is required")
	}

	ctx := cmd.Context()

	a, err := openApp(ctx, cfg, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	params, err := a.service.IssueLink(ctx, args[0], signOwner, signTTL)
	if err != nil {
		return fmt.Errorf("sign %s: %w", args[0], err)
	}

	base := signBase
	if base == "" {
		base = cfg.Server.PublicURL
	}
	if base == "" {
		base = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	out := signOutput{
		FileID:    params.ContentID,
		OwnerID:   params.OwnerID,
		ExpiresAt: params.ExpiresAt,
		Signature: params.Signature,
		SignedURL: params.URL(base),
	}

	if signJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.SignedURL)
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", time.Unix(out.ExpiresAt, 0).UTC().Format(time.RFC3339))
	return nil
}
