package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sharelink/clientcli"
)

var (
	listLimit  int
	listAll    bool
	listCursor string
)

var listCmd = &cobra.Command{
	Use:   "list [user-id]",
	Short: "List a user's files",
	Long: `List the files stored for a user, newest first.

The user defaults to the configured one.

Examples:
  sharelink-cli list
  sharelink-cli list bob --limit 10
  sharelink-cli list --all
  sharelink-cli list --cursor "MTcwMDAwMDAwMDAwMDAwMDAwMHxjMQ"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", clientcli.DefaultListLimit, "max results per page (max: 1000)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "fetch all pages")
	listCmd.Flags().StringVar(&listCursor, "cursor", "", "pagination cursor")
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.ListOptions{
		Limit:  listLimit,
		Cursor: listCursor,
		All:    listAll,
	}
	if len(args) > 0 {
		opts.UserID = args[0]
	}

	result, err := client.List(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatList(os.Stdout, result)
}
