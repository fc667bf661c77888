package kvstore

import (
	"context"
	"fmt"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// StoreStats summarizes the store's current contents for operational
// inspection: per-type row counts plus SQLite's own page accounting.
type StoreStats struct {
	TypeCounts map[string]int64
	PageCount  int64
	PageSize   int64
}

// Stats reports per-type row counts and on-disk page usage. It is
// read-only: it bypasses both the write lane and the transaction
// logger, since it mutates nothing and has no before/after image to
// record.
func (s *Store) Stats(ctx context.Context) (StoreStats, error) {
	stats := StoreStats{TypeCounts: make(map[string]int64)}

	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(1) FROM kv_records GROUP BY type`)
	if err != nil {
		return stats, fmt.Errorf("%w: stats: %v", ErrStorage, err)
	}
	defer rows.Close()

	for rows.Next() {
		var typ string
		var count int64
		if err := rows.Scan(&typ, &count); err != nil {
			return stats, fmt.Errorf("%w: scan: %v", ErrStorage, err)
		}
		stats.TypeCounts[typ] = count
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("%w: iterate: %v", ErrStorage, err)
	}

	if err := s.db.QueryRowContext(ctx, `PRAGMA page_count`).Scan(&stats.PageCount); err != nil {
		return stats, fmt.Errorf("%w: page_count: %v", ErrStorage, err)
	}
	if err := s.db.QueryRowContext(ctx, `PRAGMA page_size`).Scan(&stats.PageSize); err != nil {
		return stats, fmt.Errorf("%w: page_size: %v", ErrStorage, err)
	}
	return stats, nil
}

// SortedTypes orders the types found in stats for display purposes,
// using a locale-aware collator. This has no bearing on List's key
// ordering, which stays fixed to SQL's raw BINARY collation.
func SortedTypes(stats StoreStats) []string {
	types := make([]string, 0, len(stats.TypeCounts))
	for t := range stats.TypeCounts {
		types = append(types, t)
	}
	col := collate.New(language.Und)
	col.SortStrings(types)
	return types
}
