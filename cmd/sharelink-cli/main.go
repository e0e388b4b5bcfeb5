package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sharelink/clientcli"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	endpoint    string
	userID      string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:           "sharelink-cli",
	Version:       version,
	Short:         "Client for a sharelink server",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `sharelink-cli - Client for a sharelink file sharing server

Upload files as a user, list them, and hand out time-limited download links:
  - upload:   Store local files for the configured user
  - list:     List the configured user's files
  - sign:     Issue a download link for a file
  - download: Fetch a file through a signed link (no credentials needed)

Connection settings come from, in increasing precedence, the selected
profile in ~/.sharelink/config.yaml, SHARELINK_ENDPOINT and SHARELINK_USER,
and the --endpoint and --user flags.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.sharelink/config.yaml, env: SHARELINK_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (env: SHARELINK_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:5708, env: SHARELINK_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user id (env: SHARELINK_USER)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if !errors.As(err, &exitErr) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// getConfigPath resolves the profile file: flag, then env, then the default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from the profile file, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	explicit := cfgFile != "" || clientcli.ConfigPathFromEnv() != "" || name != ""

	if configPath := getConfigPath(); configPath != "" {
		cf, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := cf.GetProfile(name)
			if profileErr != nil && (name != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, clientcli.ConfigFromProfile(p))
		case explicit:
			// Only error if the user asked for a config file or profile
			return nil, err
		}
	}

	configs = append(configs,
		clientcli.ConfigFromEnv(),
		&clientcli.Config{Endpoint: endpoint, UserID: userID},
	)

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	return clientcli.New(cfg)
}

// handleError prints err through the formatter and returns an exitError so
// main does not print it a second time.
func handleError(w io.Writer, err error) error {
	_ = getFormatter().FormatError(w, err)
	return &exitError{code: 1}
}

// exitError is returned when we want to exit with a specific code
// but don't want main to print an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
