// Package database provides a unified interface for connecting to metadata backends.
//
// The package supports multiple database backends (PostgreSQL and SQLite) and handles
// connection management, migrations, and schema validation.
//
// # Supported Backends
//
//   - PostgreSQL: Production-ready backend using pgx connection pool
//   - SQLite: Lightweight backend suitable for development and single-node deployments
//
// # Usage
//
//	cfg := database.Config{
//	    Type: "sqlite",
//	    DSN:  "sharelink.db",
//	    Tables: sharelink.Tables{
//	        Files:     "sharelink_files",
//	        LinkAudit: "sharelink_link_audit",
//	    },
//	}
//
//	db, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := db.Validate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	repo := database.NewCachedStore(db.GetRepo(), 1024, 5*time.Minute)
//
// File records never change once written, so GetFile results can be served
// from the CachedStore without invalidation.
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
