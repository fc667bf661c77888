package kvstore

import (
	"context"
	"fmt"
	"strings"
)

const escapeChar = `\`

// List returns keys of the given type whose name starts with prefix,
// ordered lexicographically ascending (SQL's default BINARY
// collation), capped at limit entries. An empty prefix matches every
// key of the type. limit is clamped to [0, maxListLimit].
//
// prefix is embedded in a raw SQL LIKE pattern: '%' and '_' inside it
// act as wildcards rather than literal characters. Use ListEscaped
// when prefix may itself contain those characters and must match
// literally.
func (s *Store) List(ctx context.Context, typ, prefix string, limit int) ([]string, error) {
	if typ == "" {
		return nil, fmt.Errorf("%w: type must be nonempty", ErrInvalidArgument)
	}
	return s.listByPattern(ctx, typ, prefix+"%", limit, "")
}

// ListEscaped behaves like List, except '%', '_', and the escape
// character itself are escaped in prefix first, so a prefix containing
// those characters matches only keys that literally start with them.
func (s *Store) ListEscaped(ctx context.Context, typ, prefix string, limit int) ([]string, error) {
	if typ == "" {
		return nil, fmt.Errorf("%w: type must be nonempty", ErrInvalidArgument)
	}
	return s.listByPattern(ctx, typ, escapeLike(prefix)+"%", limit, escapeChar)
}

func (s *Store) listByPattern(ctx context.Context, typ, pattern string, limit int, escape string) ([]string, error) {
	limit = clampInt(limit, 0, s.maxListLimit)

	query := `SELECT key FROM kv_records WHERE type = ? AND key LIKE ?`
	args := []any{typ, pattern}
	if escape != "" {
		query += ` ESCAPE ?`
		args = append(args, escape)
	}
	query += ` ORDER BY key ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStorage, err)
	}
	defer rows.Close()

	keys := make([]string, 0, limit)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrStorage, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %v", ErrStorage, err)
	}
	return keys, nil
}

// escapeLike prefixes each LIKE metacharacter in s with escapeChar so
// it is matched literally under `ESCAPE '\'`.
func escapeLike(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '%', '_', '\\':
			b.WriteString(escapeChar)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
