package kvstore

import (
	"context"
	"fmt"
)

// Delete removes the record for (typ, key). Idempotent: deleting a
// key that doesn't exist succeeds and logs delete-before-missing
// rather than returning an error.
func (s *Store) Delete(ctx context.Context, typ, key string) error {
	if typ == "" || key == "" {
		return fmt.Errorf("%w: type and key must be nonempty", ErrInvalidArgument)
	}
	return s.lane.submit(ctx, func(ctx context.Context) error {
		return s.deleteLocked(ctx, typ, key)
	})
}

func (s *Store) deleteLocked(ctx context.Context, typ, key string) error {
	existing, found, err := s.readValue(ctx, typ, key)
	if err != nil {
		return fmt.Errorf("%w: read existing: %v", ErrStorage, err)
	}

	now := s.clock.Now()
	txid := s.txids.Generate()

	if !found {
		s.logger.LogDeleteBeforeMissing(typ, key, now, now, txid)
		return nil
	}

	s.logger.LogDeleteBefore(typ, key, now, now, txid, existing)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_records WHERE type = ? AND key = ?`, typ, key); err != nil {
		return fmt.Errorf("%w: delete: %v", ErrStorage, err)
	}
	return nil
}
