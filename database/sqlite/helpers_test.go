package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/sagarc03/sharelink"
	"github.com/sagarc03/sharelink/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

func newTables(t *testing.T) sharelink.Tables {
	t.Helper()
	suffix := getRandomString(t)
	return sharelink.Tables{
		Files:     "files_" + suffix,
		LinkAudit: "link_audit_" + suffix,
	}
}

// setupTestRepo creates a migrated in-memory store with unique table names.
func setupTestRepo(t *testing.T) sharelink.MetadataStore {
	t.Helper()

	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:", newTables(t))
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	err = db.Migrate(ctx)
	require.NoError(t, err, "failed to migrate")

	return db.GetRepo()
}
