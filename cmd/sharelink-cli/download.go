package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sharelink/clientcli"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <signed-url> [local-path]",
	Short: "Download a file through a signed link",
	Long: `Download a file through a signed link.

No profile or user is needed: the link carries everything the server checks.
Without a local path the file is saved under the name the server reports.

Examples:
  sharelink-cli download "http://localhost:5708/v1/files/download?file_id=...&sig=..."
  sharelink-cli download "$URL" ./copy.pdf
  sharelink-cli download --stdout "$URL" | less`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := clientcli.New(&clientcli.Config{})
	if err != nil {
		return err
	}

	result, reader, err := client.Download(cmd.Context(), clientcli.DownloadOptions{
		SignedURL: args[0],
		LocalPath: localPath,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		// Metadata goes to stderr so stdout stays the file content
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
