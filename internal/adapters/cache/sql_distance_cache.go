package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"osrm-route-service/internal/platform/obs"
	"osrm-route-service/internal/ports"
	"time"
)

// SQLDistanceCache is a Postgres-backed cache (pgx stdlib driver) for
// origin->destination results keyed by point keys. Rows older than TTL are
// ignored on read; zero TTL keeps rows forever.
type SQLDistanceCache struct {
	DB  *sql.DB
	TTL time.Duration

	now func() time.Time
}

var _ ports.DistanceCache = (*SQLDistanceCache)(nil)

func NewSQLDistanceCache(db *sql.DB, ttl time.Duration) *SQLDistanceCache {
	return &SQLDistanceCache{DB: db, TTL: ttl, now: time.Now}
}

// Fetch cached distances for one origin and multiple destinations.
func (s *SQLDistanceCache) GetMany(
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

	q := `
	SELECT destination, distance_meters, duration_seconds
	FROM distance_cache
	WHERE origin = $1
		AND destination = ANY($2::text[])
		AND updated_at >= $3;
	`

	rows, err := s.DB.QueryContext(ctx, q, origin, uniq, freshSince(s.now, s.TTL))
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	out, err := scanResults(rows, len(uniq))
	if err != nil {
		return nil, err
	}

	recordLookup("postgres", len(out), len(uniq))
	return out, nil
}

// Store many cached distance results for a single origin in one upsert.
func (s *SQLDistanceCache) PutMany(
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

	dests := make([]string, 0, len(results))
	meters := make([]int64, 0, len(results))
	seconds := make([]int64, 0, len(results))
	for dest, r := range results {
		if dest == "" {
			return errors.New("insert distance cache: empty destination key")
		}
		dests = append(dests, dest)
		meters = append(meters, int64(r.DistanceMeters))
		seconds = append(seconds, int64(r.DurationSeconds))
	}

	q := `
	INSERT INTO distance_cache (origin, destination, distance_meters, duration_seconds, updated_at)
	SELECT $1, d, m, s, $5
	FROM unnest($2::text[], $3::bigint[], $4::bigint[]) AS t(d, m, s)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		updated_at = EXCLUDED.updated_at;
	`

	if _, err := s.DB.ExecContext(ctx, q, origin, dests, meters, seconds, s.now().Unix()); err != nil {
		return fmt.Errorf("insert distance cache origin=%q: %w", origin, err)
	}
	return nil
}
