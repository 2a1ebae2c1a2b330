// Package database owns the SQLite file behind PantryPal: it opens the
// connection, applies versioned migrations, and hands out the shared
// handle once the schema is ready.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrNotReady is returned by Conn before Initialize has completed
// successfully.
var ErrNotReady = errors.New("database not initialized")

// DB wraps the single shared SQLite connection. Foreign keys, busy
// timeout, and journal mode are set per-connection through the DSN so
// they hold for the pooled connection.
type DB struct {
	path string

	mu    sync.Mutex
	conn  *sql.DB
	ready bool
}

// New configures a DB for the given file path without opening it.
// Call Initialize before using the connection.
func New(path string) *DB {
	return &DB{path: path}
}

// Initialize opens or creates the SQLite file and brings the schema up
// to date. It is idempotent: only the first successful call performs
// work. On failure the DB stays not ready and a later call retries from
// scratch.
func (d *DB) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ready {
		return nil
	}

	conn, err := sql.Open("sqlite", d.path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	// The store serializes access itself; one connection keeps the
	// per-connection pragmas and in-memory databases coherent.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(conn, registry); err != nil {
		conn.Close()
		return fmt.Errorf("run migrations: %w", err)
	}

	d.conn = conn
	d.ready = true
	return nil
}

// Conn returns the shared connection, or ErrNotReady if Initialize has
// not completed.
func (d *DB) Conn() (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready {
		return nil, ErrNotReady
	}
	return d.conn, nil
}

// Close releases the connection. A closed DB can be initialized again.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	d.ready = false
	return err
}
