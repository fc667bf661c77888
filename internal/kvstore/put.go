package kvstore

import (
	"context"
	"fmt"
)

// Put inserts or overwrites the record for (typ, key) with value.
// Empty type, key, or value are rejected outright. If maxValueBytes is
// set and value exceeds it, the write is rejected before touching the
// write lane.
//
// Put logs update-before/update-after around an overwrite, or a bare
// insert-after for a brand new key, sharing one ts/updated_at/txid
// pair between the two log lines of an overwrite.
func (s *Store) Put(ctx context.Context, typ, key string, value []byte) error {
	if typ == "" || key == "" || len(value) == 0 {
		return fmt.Errorf("%w: type, key, and value must be nonempty", ErrInvalidArgument)
	}
	if s.maxValueBytes > 0 && int64(len(value)) > s.maxValueBytes {
		return fmt.Errorf("%w: value exceeds %d bytes", ErrInvalidArgument, s.maxValueBytes)
	}

	return s.lane.submit(ctx, func(ctx context.Context) error {
		return s.putLocked(ctx, typ, key, value)
	})
}

// putLocked runs on the write lane goroutine: read-then-upsert with
// the pre-image captured before the mutation lands, matching the
// order the transaction log expects to see them in.
func (s *Store) putLocked(ctx context.Context, typ, key string, value []byte) error {
	existing, found, err := s.readValue(ctx, typ, key)
	if err != nil {
		return fmt.Errorf("%w: read existing: %v", ErrStorage, err)
	}

	now := s.clock.Now()
	txid := s.txids.Generate()

	if found {
		s.logger.LogUpdateBefore(typ, key, now, now, txid, existing)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv_records (type, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(type, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, typ, key, value, now)
	if err != nil {
		return fmt.Errorf("%w: upsert: %v", ErrStorage, err)
	}

	if found {
		s.logger.LogUpdateAfter(typ, key, now, now, txid, value)
	} else {
		s.logger.LogInsertAfter(typ, key, now, now, txid, value)
	}
	return nil
}
