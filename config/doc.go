// Package config provides configuration loading and validation for sharelink.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (SHARELINK_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with SHARELINK_ prefix:
//   - server.port → SHARELINK_SERVER_PORT
//   - database.dsn → SHARELINK_DATABASE_DSN
//   - links.secret.inline → SHARELINK_LINKS_SECRET_INLINE
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: dev or prod, which selects the log format
//   - Server: port and the public base URL of signed links
//   - Service: cleanup_timeout for background operations
//   - Database: type, DSN, and table names
//   - Storage: file storage path and the upload size cap
//   - Links: ttl bounds and the signing secret (inline or file)
//   - Cache: optional in-process cache of file records
//   - Metrics: Prometheus exposition on /metrics
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - max_ttl_seconds must be at least min_ttl_seconds, which must be positive
//   - Table names must be valid, distinct SQL identifiers
//   - Log level must be debug, info, warn, or error
//
// The signing secret is optional at load time. Commands that need it load it
// with keybackend.LoadSecret, which enforces a minimum length.
package config
