package postgres_test

import (
	"testing"

	"github.com/sagarc03/sharelink"
	"github.com/sagarc03/sharelink/database/internal/storetest"
)

func TestRepo(t *testing.T) {
	storetest.Run(t, func(t *testing.T) sharelink.MetadataStore {
		return setupTestRepo(t)
	})
}
