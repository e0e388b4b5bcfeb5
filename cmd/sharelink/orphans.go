package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sharelink/config"
)

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Find stored files that have no metadata record",
	Long: `Scan the storage directory for files that no metadata record points at.

Orphans are left behind when the process dies between writing an upload's
bytes and recording its metadata, or when a cleanup after a failed metadata
write could not finish. Files younger than --grace are skipped so uploads in
flight are never reported.

With --remove the orphans are deleted. Run this periodically to reclaim space.`,
	RunE: runOrphans,
}

var (
	orphansRemove bool
	orphansGrace  time.Duration
	orphansJSON   bool
)

func init() {
	orphansCmd.Flags().BoolVar(&orphansRemove, "remove", false, "delete the orphans found")
	orphansCmd.Flags().DurationVar(&orphansGrace, "grace", time.Hour, "skip files modified more recently than this")
	orphansCmd.Flags().BoolVar(&orphansJSON, "json", false, "print the orphans as JSON")
	rootCmd.AddCommand(orphansCmd)
}

func runOrphans(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	a, err := openApp(ctx, cfg, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	slog.Info("scanning for orphans", "path", cfg.Storage.Path, "grace", orphansGrace)

	if orphansRemove {
		removed, removeErr := a.service.RemoveOrphans(ctx, orphansGrace)
		if removeErr != nil {
			return fmt.Errorf("remove orphans: %w", removeErr)
		}
		slog.Info("cleanup complete", "files_removed", removed)
		return nil
	}

	orphans, err := a.service.Orphans(ctx, orphansGrace)
	if err != nil {
		return fmt.Errorf("find orphans: %w", err)
	}

	out := cmd.OutOrStdout()
	if orphansJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(orphans)
	}

	for _, o := range orphans {
		_, _ = fmt.Fprintf(out, "%s\t%d\t%s\n", o.Locator, o.SizeBytes, o.ModifiedAt.UTC().Format(time.RFC3339))
	}
	slog.Info("scan complete", "orphans", len(orphans))
	return nil
}
