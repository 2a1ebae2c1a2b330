package database

import (
	"database/sql"
	"fmt"
)

// A Migration advances the schema from one user_version to the next.
// Up runs inside a transaction together with the version bump, so a
// failed body leaves both the schema and the stored version untouched.
type Migration struct {
	From int
	To   int
	Name string
	Up   func(tx *sql.Tx) error
}

// registry holds every known migration. The chain is walked by matching
// From against the current user_version, not by slice order.
var registry = []Migration{
	{From: 0, To: 1, Name: "initial", Up: migrateInitial},
}

func nextMigration(chain []Migration, version int) *Migration {
	for i := range chain {
		if chain[i].From == version {
			return &chain[i]
		}
	}
	return nil
}

// runMigrations applies pending migrations until no step matches the
// stored version. A gap in the chain stops the walk without error,
// leaving the store at the last reached version.
func runMigrations(conn *sql.DB, chain []Migration) error {
	version, err := schemaVersion(conn)
	if err != nil {
		return err
	}

	for {
		m := nextMigration(chain, version)
		if m == nil {
			return nil
		}
		if err := apply(conn, m); err != nil {
			return fmt.Errorf("migration %04d %s: %w", m.To, m.Name, err)
		}
		version = m.To
	}
}

func schemaVersion(conn *sql.DB) (int, error) {
	var v int
	if err := conn.QueryRow(`PRAGMA user_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}

func apply(conn *sql.DB, m *Migration) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := m.Up(tx); err != nil {
		return err
	}

	// user_version lives in the database header and is transactional,
	// so the bump commits or rolls back with the schema change itself.
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, m.To)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return tx.Commit()
}

// migrateInitial creates the two grocery tables and their indexes. All
// statements are idempotent so the migration tolerates a pre-populated
// file whose version counter was never set.
func migrateInitial(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS GroceryLists (
			Id           INTEGER PRIMARY KEY AUTOINCREMENT,
			Name         TEXT    NOT NULL,
			CreatedUtc   TEXT    NOT NULL,
			PurchasedUtc TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS GroceryListItems (
			Id            INTEGER PRIMARY KEY AUTOINCREMENT,
			ListId        INTEGER NOT NULL,
			Name          TEXT    NOT NULL,
			Cost          NUMERIC NOT NULL,
			PurchasedDate TEXT,
			FOREIGN KEY (ListId) REFERENCES GroceryLists(Id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS IX_GroceryListItems_ListId ON GroceryListItems(ListId)`,
		`CREATE INDEX IF NOT EXISTS IX_GroceryLists_CreatedUtc ON GroceryLists(CreatedUtc)`,
		`CREATE INDEX IF NOT EXISTS IX_GroceryLists_PurchasedUtc ON GroceryLists(PurchasedUtc)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
