package cache

import (
	"database/sql"
	"fmt"
	"osrm-route-service/internal/platform/obs"
	"osrm-route-service/internal/ports"
	"strings"
	"time"
)

// uniqueKeys trims, drops empties and dedupes, keeping first-seen order.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// freshSince is the oldest updated_at (unix seconds) still served.
func freshSince(now func() time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now().Add(-ttl).Unix()
}

func scanResults(rows *sql.Rows, sizeHint int) (map[string]ports.DistanceResult, error) {
	out := make(map[string]ports.DistanceResult, sizeHint)
	for rows.Next() {
		var dest string
		var meters, seconds int
		if err := rows.Scan(&dest, &meters, &seconds); err != nil {
			return nil, fmt.Errorf("get distance cache: scan rows: %w", err)
		}
		out[dest] = ports.DistanceResult{
			DistanceMeters:  meters,
			DurationSeconds: seconds,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distance cache: row iteration: %w", err)
	}
	return out, nil
}

func recordLookup(backend string, hits, requested int) {
	obs.CacheHits.WithLabelValues(backend).Add(float64(hits))
	obs.CacheMisses.WithLabelValues(backend).Add(float64(requested - hits))
}
