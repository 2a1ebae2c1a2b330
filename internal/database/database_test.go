package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func TestInitializeCreatesSchema(t *testing.T) {
	db := New(":memory:")
	if err := db.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	conn, err := db.Conn()
	if err != nil {
		t.Fatalf("conn: %v", err)
	}

	for _, table := range []string{"GroceryLists", "GroceryListItems"} {
		var name string
		err := conn.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	v, err := schemaVersion(conn)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if v != 1 {
		t.Errorf("user_version = %d, want 1", v)
	}
}

func TestInitializeIdempotent(t *testing.T) {
	db := New(filepath.Join(t.TempDir(), "pantry.db"))
	if err := db.Initialize(); err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	conn, _ := db.Conn()
	v, err := schemaVersion(conn)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if v != 1 {
		t.Errorf("user_version = %d after redundant initialize, want 1", v)
	}
}

func TestInitializeExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pantry.db")

	first := New(path)
	if err := first.Initialize(); err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A fresh DB over the same file finds version 1, no migration has
	// From == 1, and the chain stops without error.
	second := New(path)
	if err := second.Initialize(); err != nil {
		t.Fatalf("reopen initialize: %v", err)
	}
	t.Cleanup(func() { second.Close() })

	conn, _ := second.Conn()
	v, _ := schemaVersion(conn)
	if v != 1 {
		t.Errorf("user_version = %d after reopen, want 1", v)
	}
}

func TestConnBeforeInitialize(t *testing.T) {
	db := New(":memory:")
	if _, err := db.Conn(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("conn error = %v, want ErrNotReady", err)
	}
}

func openRaw(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFailedMigrationRollsBack(t *testing.T) {
	conn := openRaw(t)

	boom := errors.New("boom")
	chain := []Migration{
		{From: 0, To: 1, Name: "bad", Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`CREATE TABLE Partial (Id INTEGER PRIMARY KEY)`); err != nil {
				return err
			}
			return boom
		}},
	}

	err := runMigrations(conn, chain)
	if !errors.Is(err, boom) {
		t.Fatalf("runMigrations error = %v, want wrapped boom", err)
	}

	v, _ := schemaVersion(conn)
	if v != 0 {
		t.Errorf("user_version = %d after failed migration, want 0", v)
	}

	var name string
	scanErr := conn.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'Partial'`,
	).Scan(&name)
	if scanErr != sql.ErrNoRows {
		t.Errorf("Partial table survived the rollback (err = %v)", scanErr)
	}
}

func TestBrokenChainStopsSilently(t *testing.T) {
	conn := openRaw(t)

	chain := []Migration{
		{From: 0, To: 1, Name: "one", Up: func(tx *sql.Tx) error { return nil }},
		// Nothing leads from 1 to 2.
		{From: 2, To: 3, Name: "three", Up: func(tx *sql.Tx) error {
			t.Error("unreachable migration ran")
			return nil
		}},
	}

	if err := runMigrations(conn, chain); err != nil {
		t.Fatalf("runMigrations: %v", err)
	}

	v, _ := schemaVersion(conn)
	if v != 1 {
		t.Errorf("user_version = %d, want 1", v)
	}
}

func TestChainDiscoveredByVersionNotOrder(t *testing.T) {
	conn := openRaw(t)

	var applied []string
	step := func(name string) func(*sql.Tx) error {
		return func(*sql.Tx) error {
			applied = append(applied, name)
			return nil
		}
	}
	// Registered out of order on purpose.
	chain := []Migration{
		{From: 1, To: 2, Name: "second", Up: step("second")},
		{From: 0, To: 1, Name: "first", Up: step("first")},
	}

	if err := runMigrations(conn, chain); err != nil {
		t.Fatalf("runMigrations: %v", err)
	}

	if len(applied) != 2 || applied[0] != "first" || applied[1] != "second" {
		t.Errorf("applied = %v, want [first second]", applied)
	}
	v, _ := schemaVersion(conn)
	if v != 2 {
		t.Errorf("user_version = %d, want 2", v)
	}
}
