package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteFileName is the name of the cache database inside its directory.
const SQLiteFileName = "pluginreviews.db"

// SQLiteStore persists cache entries in a SQLite database file.
// Expired rows stay on disk until Purge removes them; Get never returns them.
type SQLiteStore struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now reports the current time for expiry checks.
	now func() time.Time
}

// SQLiteOptions configures SQLiteStore behavior.
type SQLiteOptions struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so readers don't block the writer.
	EnableWAL bool

	// Now overrides the clock used for expiry. Nil means time.Now.
	Now func() time.Time
}

// DefaultSQLiteOptions returns the default database options.
func DefaultSQLiteOptions() SQLiteOptions {
	return SQLiteOptions{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// OpenSQLite opens or creates the cache database in dir.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrStoreNotFound is returned.
func OpenSQLite(dir string, opts SQLiteOptions) (*SQLiteStore, error) {
	dbPath := filepath.Join(dir, SQLiteFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
		now:    opts.Now,
	}
	if store.now == nil {
		store.now = time.Now
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *SQLiteStore) createTables() error {
	schema := `
	-- One row per cache key. expires_at is Unix milliseconds, 0 means never.
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache_entries(expires_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `
	SELECT value, expires_at FROM cache_entries
	WHERE key = ?
	`

	var value []byte
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	if expiresAt != 0 && expiresAt <= s.now().UnixMilli() {
		return nil, false, nil
	}
	return value, true, nil
}

// Set implements Store.
// Uses UPSERT so concurrent writers of the same key leave the last value.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixMilli()
	}

	query := `
	INSERT INTO cache_entries (key, value, expires_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		expires_at = excluded.expires_at,
		updated_at = CURRENT_TIMESTAMP
	`

	if _, err := s.db.ExecContext(ctx, query, key, value, expiresAt); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Purge implements Purger.
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	query := `
	DELETE FROM cache_entries
	WHERE expires_at != 0 AND expires_at <= ?
	`

	result, err := s.db.ExecContext(ctx, query, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache entries: %w", err)
	}
	return result.RowsAffected()
}

// EntryInfo describes a stored cache entry without its value.
type EntryInfo struct {
	Key       string
	Size      int
	ExpiresAt time.Time // zero means no expiry
	UpdatedAt time.Time
}

// Entries lists every stored entry, expired ones included, newest first.
func (s *SQLiteStore) Entries(ctx context.Context) ([]EntryInfo, error) {
	query := `
	SELECT key, length(value), expires_at, updated_at
	FROM cache_entries
	ORDER BY updated_at DESC, key
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	defer rows.Close()

	var results []EntryInfo
	for rows.Next() {
		var info EntryInfo
		var expiresAt int64
		var updatedAt string

		if err := rows.Scan(&info.Key, &info.Size, &expiresAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		if expiresAt != 0 {
			info.ExpiresAt = time.UnixMilli(expiresAt).UTC()
		}
		info.UpdatedAt = parseTimestamp(updatedAt)
		results = append(results, info)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp parses a timestamp returned by SQLite.
// It returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
