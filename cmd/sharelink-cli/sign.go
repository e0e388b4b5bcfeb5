package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sharelink/clientcli"
)

var (
	signTTL   time.Duration
	signOwner string
)

var signCmd = &cobra.Command{
	Use:   "sign <file-id>",
	Short: "Issue a time-limited download link",
	Long: `Ask the server for a signed download link to one of your files.

Anyone holding the link can download the file until it expires; the server
refuses lifetimes outside its configured bounds.

Examples:
  sharelink-cli sign 5f0c...
  sharelink-cli sign --ttl 10m 5f0c...
  sharelink-cli -q sign 5f0c... | xargs sharelink-cli download`,
	Args: cobra.ExactArgs(1),
	RunE: runSign,
}

func init() {
	signCmd.Flags().DurationVarP(&signTTL, "ttl", "t", clientcli.DefaultTTL, "link lifetime, whole seconds")
	signCmd.Flags().StringVar(&signOwner, "owner", "", "owner id (default: the configured user)")
}

func runSign(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	link, err := client.Sign(cmd.Context(), clientcli.SignOptions{
		FileID:  args[0],
		OwnerID: signOwner,
		TTL:     signTTL,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatSign(os.Stdout, link)
}
