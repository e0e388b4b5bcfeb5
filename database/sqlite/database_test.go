package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/sagarc03/sharelink"
	"github.com/sagarc03/sharelink/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestDatabase_Migrate_Idempotent(t *testing.T) {
	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:", newTables(t))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, db.Migrate(ctx), "first migrate should succeed")
	require.NoError(t, db.Migrate(ctx), "second migrate should succeed")
	assert.NoError(t, db.Validate(ctx))
}

func TestDatabase_Validate_BeforeMigration(t *testing.T) {
	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:", newTables(t))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = db.Validate(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidateSchema_Mismatch(t *testing.T) {
	ctx := context.Background()
	tables := newTables(t)

	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	defer func() { _ = conn.Close() }()

	_, err = conn.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %q (content_id TEXT NOT NULL, owner_id INTEGER)`, tables.Files))
	require.NoError(t, err)

	err = sqlite.ValidateSchema(ctx, conn, tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "owner_id: expected text, got integer")
}

func TestDropTables(t *testing.T) {
	ctx := context.Background()
	tables := newTables(t)

	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	defer func() { _ = conn.Close() }()

	require.NoError(t, sqlite.Migrate(ctx, conn, tables))
	require.NoError(t, sqlite.ValidateSchema(ctx, conn, tables))

	require.NoError(t, sqlite.DropTables(ctx, conn, tables))
	assert.Error(t, sqlite.ValidateSchema(ctx, conn, tables))
}

func TestNewRepo_InvalidTables(t *testing.T) {
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	_, err = sqlite.NewRepo(conn, sharelink.Tables{Files: "files", LinkAudit: "files"})
	assert.Error(t, err)

	_, err = sqlite.NewRepo(conn, sharelink.Tables{Files: "Bad-Name", LinkAudit: "audit"})
	assert.Error(t, err)
}
