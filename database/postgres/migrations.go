package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/sharelink"
)

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, pool *pgxpool.Pool) error
	Down      func(ctx context.Context, pool *pgxpool.Pool) error
}

// getTableMigrations returns all table migrations for the app
func getTableMigrations(tables sharelink.Tables) []TableMigration {
	return []TableMigration{
		{
			TableName: tables.Files,
			Up:        createFilesTable(tables.Files),
			Down:      dropTable(tables.Files),
		},
		{
			TableName: tables.LinkAudit,
			Up:        createLinkAuditTable(tables.LinkAudit),
			Down:      dropTable(tables.LinkAudit),
		},
	}
}

func Migrate(ctx context.Context, pool *pgxpool.Pool, tables sharelink.Tables) error {
	for _, migration := range getTableMigrations(tables) {
		if err := migration.Up(ctx, pool); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func DropTables(ctx context.Context, pool *pgxpool.Pool, tables sharelink.Tables) error {
	migrations := getTableMigrations(tables)

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if err := migration.Down(ctx, pool); err != nil {
			return fmt.Errorf("migrate down %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func createFilesTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		quotedTable := pgx.Identifier{tableName}.Sanitize()
		indexOwnerList := pgx.Identifier{fmt.Sprintf("idx_%s_owner_list", tableName)}.Sanitize()

		sql := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				content_id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				filename TEXT NOT NULL,
				locator TEXT NOT NULL,
				size_bytes BIGINT NOT NULL,
				etag TEXT NOT NULL,
				uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS %s
			ON %s (owner_id, uploaded_at DESC, content_id DESC);
		`,
			quotedTable,
			indexOwnerList, quotedTable,
		)

		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("create files table: %w", err)
		}
		return nil
	}
}

func createLinkAuditTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		quotedTable := pgx.Identifier{tableName}.Sanitize()
		indexContent := pgx.Identifier{fmt.Sprintf("idx_%s_content", tableName)}.Sanitize()

		sql := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
				content_id TEXT NOT NULL,
				owner_id TEXT NOT NULL,
				ttl_seconds BIGINT NOT NULL,
				generated_at TIMESTAMPTZ NOT NULL
			);

			CREATE INDEX IF NOT EXISTS %s
			ON %s (content_id, id);
		`,
			quotedTable,
			indexContent, quotedTable,
		)

		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("create link audit table: %w", err)
		}
		return nil
	}
}

func dropTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		quotedTable := pgx.Identifier{tableName}.Sanitize()
		_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTable))
		return err
	}
}
