package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sharelink/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "sharelink",
	Short:   "Private file storage with time-limited signed download links",
	Long: `sharelink stores private files on the local filesystem and hands out
self-certifying download links that expire after a bounded lifetime.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeatable; later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("env", "", "environment: dev, prod (default: dev, env: SHARELINK_ENV)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: SHARELINK_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: sharelink.db, env: SHARELINK_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-path", "", "storage directory path (default: ./data, env: SHARELINK_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("secret-file", "", "file holding the link signing secret (env: SHARELINK_LINKS_SECRET_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info, env: SHARELINK_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
