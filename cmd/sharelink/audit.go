package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sharelink/config"
)

var auditCmd = &cobra.Command{
	Use:   "audit <file_id>",
	Short: "Show the link issuance log of a file",
	Long: `Print every link issued for a file, oldest first.

Links themselves are never stored, so this log shows when links were handed
out and for how long, not which of them were used.`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

var auditJSON bool

func init() {
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "print the events as JSON")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	db, err := openDatabase(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	events, err := db.GetRepo().ListLinkAudit(ctx, args[0])
	if err != nil {
		return fmt.Errorf("audit %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if auditJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	if len(events) == 0 {
		_, _ = fmt.Fprintln(out, "No links issued.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "GENERATED AT\tOWNER\tTTL\tEXPIRES AT")
	for _, e := range events {
		expires := e.GeneratedAt.Add(time.Duration(e.TTLSeconds) * time.Second)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%ds\t%s\n",
			e.GeneratedAt.UTC().Format(time.RFC3339),
			e.OwnerID,
			e.TTLSeconds,
			expires.UTC().Format(time.RFC3339),
		)
	}
	return w.Flush()
}
