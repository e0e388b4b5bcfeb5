package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sharelink/clientcli"
)

var (
	uploadRecursive bool
	uploadName      string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path>",
	Short: "Upload files for the configured user",
	Long: `Upload files to the server for the configured user.

Each file gets a fresh file id, printed on success. Use that id with
'sharelink-cli sign' to hand out a download link.

Examples:
  sharelink-cli upload ./report.pdf
  sharelink-cli upload --name q3.pdf ./report.pdf
  sharelink-cli upload -r ./invoices/
  sharelink-cli -q upload ./report.pdf   # prints only the file id`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
	uploadCmd.Flags().StringVarP(&uploadName, "name", "n", "", "filename recorded on the server (default: local base name)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.UploadOptions{
		LocalPath: args[0],
		Filename:  uploadName,
		Recursive: uploadRecursive,
	}

	results, err := client.Upload(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}

