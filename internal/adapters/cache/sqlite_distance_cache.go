package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"osrm-route-service/internal/platform/obs"
	"osrm-route-service/internal/ports"
	"strings"
	"time"
)

// SQLite backed cache (modernc.org/sqlite) for origin->destination results.
// Keys are expected to be consistent (Point.Key()) by the caller.
type SqliteDistanceCache struct {
	DB  *sql.DB
	TTL time.Duration

	now func() time.Time
}

var _ ports.DistanceCache = (*SqliteDistanceCache)(nil)

func NewSqliteDistanceCache(db *sql.DB, ttl time.Duration) *SqliteDistanceCache {
	return &SqliteDistanceCache{DB: db, TTL: ttl, now: time.Now}
}

// Fetch cached distances for one origin and multiple destinations.
func (s *SqliteDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}
	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	args := make([]any, 0, 2+len(uniq))
	args = append(args, origin, freshSince(s.now, s.TTL))
	for _, d := range uniq {
		args = append(args, d)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(uniq)), ",")
	q := fmt.Sprintf(`
	SELECT destination, distance_meters, duration_seconds
	FROM distance_cache
	WHERE origin = ?
		AND updated_at >= ?
		AND destination IN (%s);
	`, placeholders)

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	out, err := scanResults(rows, len(uniq))
	if err != nil {
		return nil, err
	}

	recordLookup("sqlite", len(out), len(uniq))
	return out, nil
}

// Store many cached distance results for a single origin.
func (s *SqliteDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) (err error) {
	defer obs.Time(ctx, "distance.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}
	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO distance_cache (
		origin,
		destination,
		distance_meters,
		duration_seconds,
		updated_at
	)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	now := s.now().Unix()
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return errors.New("insert distance cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, origin, dest, r.DistanceMeters, r.DurationSeconds, now); err != nil {
			return fmt.Errorf("insert distance cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}

	return nil
}
