package database_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unlockmart/internal/database"
	"unlockmart/internal/database/dbtest"
)

func TestNewDB_UnsupportedDriver(t *testing.T) {
	_, err := database.NewDB("mysql", "whatever")
	require.Error(t, err)
}

func TestInitSchema_Idempotent(t *testing.T) {
	db := dbtest.New(t)
	require.NoError(t, database.InitSchema(db, database.DriverSQLite))
}

func TestIsUniqueViolation_SQLite(t *testing.T) {
	db := dbtest.New(t)
	insert := `INSERT INTO accounts (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := db.Exec(insert, "a1", "Ann", "ann@example.com", []byte("x"), time.Now())
	require.NoError(t, err)

	_, err = db.Exec(insert, "a2", "Ann", "ann@example.com", []byte("x"), time.Now())
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestIsUniqueViolation_Postgres(t *testing.T) {
	assert.True(t, database.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, database.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, database.IsUniqueViolation(errors.New("duplicate key")))
	assert.False(t, database.IsUniqueViolation(nil))
}
