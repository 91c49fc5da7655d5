// Package dbtest opens throwaway SQLite databases carrying the production
// schema.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"unlockmart/internal/database"
)

func New(t testing.TB) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "unlockmart.db")
	db, err := database.NewDB(database.DriverSQLite, DSN(path))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(context.Background(), db) })

	require.NoError(t, database.InitSchema(db, database.DriverSQLite))
	return db
}

func DSN(path string) string {
	return "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)"
}
