package source

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tzfold/tzfold/internal/tzif"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema: zone blob table plus bundle metadata
const currentSchemaVersion = 1

// Bundle is a zone source backed by a packed SQLite file. One bundle
// carries a whole tzdata release plus provenance metadata, so a fleet
// can pin the exact rules it resolves against.
type Bundle struct {
	db   *sql.DB
	path string
}

// BundleMeta is the provenance a bundle records about itself.
type BundleMeta struct {
	BuildID       string // unique id minted at pack time
	TZDataVersion string // tzdata release the blobs came from, like "2025a"
	CreatedAt     string // RFC 3339 pack timestamp
}

// OpenBundle opens a packed bundle for reading. The schema version
// must match exactly; bundles are rebuilt, not migrated in place.
func OpenBundle(path string) (*Bundle, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != currentSchemaVersion {
		db.Close()
		return nil, fmt.Errorf("bundle %s: schema version %d, want %d", path, version, currentSchemaVersion)
	}

	return &Bundle{db: db, path: path}, nil
}

// Close closes the underlying database.
func (b *Bundle) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *Bundle) Lookup(name string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRow("SELECT data FROM zones WHERE name = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, name, b)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read zone %q: %w", name, err)
	}
	return data, nil
}

func (b *Bundle) Zones() ([]string, error) {
	rows, err := b.db.Query("SELECT name FROM zones ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan zone name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	return names, nil
}

// Meta returns the provenance recorded when the bundle was packed.
func (b *Bundle) Meta() (BundleMeta, error) {
	rows, err := b.db.Query("SELECT key, value FROM meta")
	if err != nil {
		return BundleMeta{}, fmt.Errorf("failed to read metadata: %w", err)
	}
	defer rows.Close()

	var meta BundleMeta
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return BundleMeta{}, fmt.Errorf("failed to scan metadata: %w", err)
		}
		switch key {
		case "build_id":
			meta.BuildID = value
		case "tzdata_version":
			meta.TZDataVersion = value
		case "created_at":
			meta.CreatedAt = value
		}
	}
	if err := rows.Err(); err != nil {
		return BundleMeta{}, fmt.Errorf("failed to read metadata: %w", err)
	}
	return meta, nil
}

func (b *Bundle) String() string { return "bundle:" + b.path }

// Pack writes zones into a bundle at path, creating or replacing its
// contents in one transaction. Every blob must decode as TZif before
// it is admitted; a bundle never carries data its readers would
// reject. tzdataVersion records the tzdata release the blobs came
// from.
func Pack(path, tzdataVersion string, zones map[string][]byte) (BundleMeta, error) {
	for name, data := range zones {
		if _, err := tzif.Decode(name, data); err != nil {
			return BundleMeta{}, fmt.Errorf("failed to validate zone %q: %w", name, err)
		}
	}

	db, err := openDB(path)
	if err != nil {
		return BundleMeta{}, err
	}
	defer db.Close()

	if _, err := db.Exec(schemaSQL); err != nil {
		return BundleMeta{}, fmt.Errorf("failed to apply schema: %w", err)
	}

	meta := BundleMeta{
		BuildID:       uuid.Must(uuid.NewV7()).String(),
		TZDataVersion: tzdataVersion,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	tx, err := db.Begin()
	if err != nil {
		return BundleMeta{}, fmt.Errorf("failed to begin pack: %w", err)
	}
	defer tx.Rollback()

	names := make([]string, 0, len(zones))
	for name := range zones {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO zones (name, data) VALUES (?, ?)",
			name, zones[name],
		); err != nil {
			return BundleMeta{}, fmt.Errorf("failed to pack zone %q: %w", name, err)
		}
	}
	for key, value := range map[string]string{
		"build_id":       meta.BuildID,
		"tzdata_version": meta.TZDataVersion,
		"created_at":     meta.CreatedAt,
	} {
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
			key, value,
		); err != nil {
			return BundleMeta{}, fmt.Errorf("failed to record %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return BundleMeta{}, fmt.Errorf("failed to commit pack: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return BundleMeta{}, fmt.Errorf("failed to set schema version: %w", err)
	}
	return meta, nil
}

// openDB opens a SQLite file with the pragmas every bundle runs under.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to bundle: %w", err)
	}

	// SQLite supports one writer at a time; a single connection also
	// keeps readers from tripping SQLITE_BUSY while packing.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
