package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sharelink"
	"github.com/sagarc03/sharelink/config"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] --owner <owner_id> <file1> [file2] ...",
	Short: "Import local files for an owner",
	Long: `Import files from local paths into sharelink storage.

Each file goes through the same path as an HTTP upload: it is streamed into
storage under a fresh file id, bounded by storage.max_upload_size, and then
recorded in the metadata database. The new file ids are printed so links can
be issued for them.

Examples:
  # Add a single file
  sharelink add --owner alice /path/to/report.pdf

  # Add a directory recursively
  sharelink add --owner alice -r /path/to/invoices

  # Print the created records as JSON lines
  sharelink add --owner alice --json a.txt b.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addOwner     string
	addRecursive bool
	addQuiet     bool
	addJSON      bool
)

func init() {
	addCmd.Flags().StringVar(&addOwner, "owner", "", "owner id the files are stored for (required)")
	addCmd.Flags().BoolVarP(&addRecursive, "recursive", "r", false, "recursively add directories")
	addCmd.Flags().BoolVarP(&addQuiet, "quiet", "q", false, "suppress per-file output")
	addCmd.Flags().BoolVar(&addJSON, "json", false, "print each created record as a JSON line")
	_ = addCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if !sharelink.IsValidOwnerID(addOwner) {
		return fmt.Errorf("invalid owner id: %q", addOwner)
	}

	ctx := cmd.Context()

	// Collect files from all arguments
	var files []string
	for _, arg := range args {
		entries, collectErr := collectFiles(arg, addRecursive)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, entries...)
	}

	if len(files) == 0 {
		slog.Info("no files to add")
		return nil
	}

	a, err := openApp(ctx, cfg, openOptions{createStorage: true})
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	added := 0

	for _, path := range files {
		f, openErr := os.Open(path) //nolint:gosec // Paths are given by the operator
		if openErr != nil {
			return fmt.Errorf("open %s: %w", path, openErr)
		}

		req := sharelink.UploadRequest{OwnerID: addOwner, Filename: filepath.Base(path)}
		record, uploadErr := a.service.Upload(ctx, req, f)
		_ = f.Close()

		if uploadErr != nil {
			var reqErr *sharelink.RequestError
			if errors.As(uploadErr, &reqErr) {
				return fmt.Errorf("add %s: %s", path, reqErr.Message)
			}
			return fmt.Errorf("add %s: %w", path, uploadErr)
		}

		added++
		switch {
		case addJSON:
			if encErr := enc.Encode(record); encErr != nil {
				return fmt.Errorf("encode record: %w", encErr)
			}
		case !addQuiet:
			_, _ = fmt.Fprintf(out, "%s\t%s\n", record.ContentID, path)
		}
	}

	slog.Info("add complete", "added", added, "owner", addOwner)
	return nil
}

// collectFiles gathers files from a path, optionally recursively.
func collectFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to add recursively)", path)
	}

	var entries []string
	walkErr := filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		entries = append(entries, walkPath)
		return nil
	})

	if walkErr != nil {
		return nil, walkErr
	}

	return entries, nil
}
