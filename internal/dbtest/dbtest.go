// Package dbtest opens a migrated Postgres database for tests
package dbtest

import (
	"database/sql"
	"lieng-server/internal/util"
	"lieng-server/pkg/db"
	"testing"

	"github.com/google/uuid"
)

// Open returns a migrated database, or skips the test if LIENG_TEST_PG_DSN is not set
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dsn := util.Getenv("LIENG_TEST_PG_DSN", "")
	if dsn == "" {
		t.Skip("LIENG_TEST_PG_DSN is not set")
	}

	dbh, err := db.Open(dsn)
	if err != nil {
		t.Fatal(err)
	}

	if err := db.Migrate(dbh, util.Getenv("LIENG_TEST_MIGRATIONS_PATH", "../../sql")); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		_ = dbh.Close()
	})

	return dbh
}

// CreatePlayer inserts a player with a random ID and returns the ID
func CreatePlayer(t *testing.T, dbh *sql.DB, name string, balance int) string {
	t.Helper()

	id := "test-" + uuid.New().String()
	const query = `INSERT INTO players (id, display_name, balance) VALUES ($1, $2, $3)`
	if _, err := dbh.Exec(query, id, name, balance); err != nil {
		t.Fatal(err)
	}

	return id
}
