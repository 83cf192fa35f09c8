package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Database is the persistence gateway. Every operation is a single
// parameterized statement; there is no batching and no multi-statement
// transaction anywhere in this layer.
type Database struct {
	db   *sqlx.DB
	path string
	log  zerolog.Logger
}

// NewDatabase opens (or creates) the SQLite database at dbPath, creates the
// schema if absent, and seeds the two default accounts when the users table
// is empty. A store that cannot be opened here is fatal to the caller.
func NewDatabase(dbPath string, log zerolog.Logger) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	d := &Database{db: db, path: dbPath, log: log}
	if err := d.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.seedIfEmpty(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func open(dbPath string) (*sqlx.DB, error) {
	// Enable busy_timeout and foreign keys.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// Close closes the underlying handle.
func (d *Database) Close() error { return d.db.Close() }

// EnsureConnected pings the store and lazily reopens the connection when the
// previous one was dropped. It does not retry failed statements.
func (d *Database) EnsureConnected() error {
	if err := d.db.Ping(); err == nil {
		return nil
	}
	d.log.Warn().Str("path", d.path).Msg("store connection lost, reopening")
	d.db.Close()
	db, err := open(d.path)
	if err != nil {
		return storeErr("reconnect", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return storeErr("reconnect", err)
	}
	d.db = db
	return nil
}

// ---------------------------------------------------------------------------
// Schema bootstrap
// ---------------------------------------------------------------------------

func (d *Database) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            full_name TEXT NOT NULL,
            username TEXT UNIQUE NOT NULL,
            password TEXT NOT NULL,
            is_admin BOOLEAN NOT NULL DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS books (
            isbn TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            genre TEXT NOT NULL,
            shelf_number TEXT NOT NULL,
            status TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            cover_image BLOB
        );`,
		// No enforced reference from loans.isbn to books: deleting a book
		// keeps its returned-loan history around, and the active-loan guard
		// lives in the manager, not the store.
		`CREATE TABLE IF NOT EXISTS loans (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            isbn TEXT NOT NULL,
            borrower_id TEXT NOT NULL,
            borrower_name TEXT NOT NULL,
            loan_date DATETIME NOT NULL,
            return_date DATETIME NOT NULL,
            returned BOOLEAN NOT NULL DEFAULT 0
        );`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.Exec(stmt); err != nil {
			return storeErr("init schema", err)
		}
	}
	return nil
}

// SeedDefaultAccounts runs the account seeding on demand, outside of startup.
// It obeys the same emptiness guard as startup seeding: existing users make
// it a no-op.
func (d *Database) SeedDefaultAccounts() error { return d.seedIfEmpty() }

// seedIfEmpty inserts the administrator and librarian accounts the first time
// the store comes up with no users. The only guard is the emptiness check:
// wiping the users table by hand makes the next start reseed.
func (d *Database) seedIfEmpty() error {
	var n int
	if err := d.db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return storeErr("count users", err)
	}
	if n > 0 {
		return nil
	}

	seed := []User{
		{FullName: "Admin User", Username: "admin", Password: HashPassword("admin123"), IsAdmin: true},
		{FullName: "Library Staff", Username: "librarian", Password: HashPassword("lib123"), IsAdmin: false},
	}
	for _, u := range seed {
		if err := d.InsertUser(u); err != nil {
			return err
		}
	}
	d.log.Info().Msg("seeded default accounts")
	return nil
}
