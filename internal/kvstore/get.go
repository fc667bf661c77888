package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Get returns the exact bytes previously stored for (typ, key), or
// (nil, false, nil) if no record exists. No side effects.
func (s *Store) Get(ctx context.Context, typ, key string) ([]byte, bool, error) {
	if typ == "" || key == "" {
		return nil, false, fmt.Errorf("%w: type and key must be nonempty", ErrInvalidArgument)
	}
	value, found, err := s.readValue(ctx, typ, key)
	if err != nil {
		return nil, false, fmt.Errorf("%w: get: %v", ErrStorage, err)
	}
	return value, found, nil
}

// Exists reports whether a record exists for (typ, key). Equivalent
// to Get(...) returning found=true, but cheaper since it never reads
// the value column.
func (s *Store) Exists(ctx context.Context, typ, key string) (bool, error) {
	if typ == "" || key == "" {
		return false, fmt.Errorf("%w: type and key must be nonempty", ErrInvalidArgument)
	}
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM kv_records WHERE type = ? AND key = ?`, typ, key).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%w: exists: %v", ErrStorage, err)
	}
	return count > 0, nil
}

// readValue is the shared keyed point-read used by Get directly and
// by put/delete internally to capture a pre-image before logging.
// Returns (nil, false, nil) when no record exists.
func (s *Store) readValue(ctx context.Context, typ, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_records WHERE type = ? AND key = ?`, typ, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}
