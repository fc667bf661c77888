package kvstore

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/typedkv/kvsvc/internal/txnlog"
)

//go:embed schema.sql
var schemaSQL string

// currentSchemaVersion tracks PRAGMA user_version.
// 0 - no schema applied yet
// 1 - kv_records table plus the type index
const currentSchemaVersion = 1

// Store is the typed key-value store: a single SQLite database holding
// one (type, key) -> value relation, with all writes serialized
// through a single write lane and driving a TxnLogger with
// before/after images of every mutation.
type Store struct {
	db     *sql.DB
	logger txnlog.Logger
	lane   *writeLane
	clock  Clock
	txids  TxIDGenerator

	defaultListLimit int
	maxListLimit     int
	maxValueBytes    int64
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithListLimits overrides the stored default list limit and the
// maximum List clamps its limit argument to. Defaults are 100 and
// 1000. List does not substitute the default limit for any argument;
// only the maximum affects its result.
func WithListLimits(defaultLimit, maxLimit int) Option {
	return func(s *Store) {
		s.defaultListLimit = defaultLimit
		s.maxListLimit = maxLimit
	}
}

// WithMaxValueBytes overrides the maximum accepted value size for put.
// Zero means unbounded. Default is unbounded; callers hosting an HTTP
// surface are expected to set this from their own config.
func WithMaxValueBytes(n int64) Option {
	return func(s *Store) {
		s.maxValueBytes = n
	}
}

// WithClock overrides the Clock a Store stamps mutations with.
// Defaults to the system wall clock; tests substitute a FixedClock for
// reproducible ts/updated_at values.
func WithClock(c Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithTxIDGenerator overrides how a Store mints the txid shared
// between a mutation's before/after log lines. Defaults to random
// UUIDs; tests substitute a FixedTxIDGenerator for reproducible
// output.
func WithTxIDGenerator(g TxIDGenerator) Option {
	return func(s *Store) {
		s.txids = g
	}
}

// Open creates or opens a SQLite database at path, applies required
// pragmas and schema migrations, and wires it to logger (the
// TxnLogger every mutation will drive). Idempotent: safe to call
// multiple times against the same path.
func Open(path string, logger txnlog.Logger, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite has exactly one writer; pin the pool to one connection so
	// our own write lane and SQLite's reality agree, and so readers
	// never race a writer's connection setup.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{
		db:               db,
		logger:           logger,
		lane:             newWriteLane(),
		clock:            systemClock{},
		txids:            uuidTxIDGenerator{},
		defaultListLimit: 100,
		maxListLimit:     1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close stops the write lane and closes the database connection. It
// does not close the logger; callers own the logger's lifecycle
// independently since a logger may outlive or be shared in tests.
func (s *Store) Close() error {
	s.lane.close()
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("exec %q: %w", p, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	return runMigrations(db)
}

// runMigrations applies the migration ladder based on PRAGMA
// user_version. New databases get the full schema straight from
// schema.sql; this ladder only matters for databases created by an
// older version of this package.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
		version = 1
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 adds the type index for databases created before it was
// part of schema.sql. CREATE INDEX IF NOT EXISTS is a no-op for
// databases that already have it.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_kv_records_type ON kv_records(type)`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}
