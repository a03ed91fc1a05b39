// Package sampledbtest hands tests a freshly seeded in-memory sample database.
package sampledbtest

import (
	"context"
	"testing"

	"github.com/coderi421/ormsample/sampledb"
	"github.com/stretchr/testify/require"
)

// New opens and seeds a private in-memory SQLite sample database.
// The database is closed when the test ends.
func New(t testing.TB) *sampledb.DB {
	t.Helper()
	ctx := context.Background()
	db, err := sampledb.Open(ctx, "sqlite3", "")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	require.NoError(t, db.Seed(ctx))
	return db
}
