package distance

import (
	"context"
	"errors"
	"fmt"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/platform/obs"
	"osrm-route-service/internal/ports"
	"time"

	"go.uber.org/zap"
)

// OSRMDistanceProvider implements DistanceMatrixProvider on top of the
// local routing engine.
//
// It coordinates:
//   - Point deduplication by key
//   - Persistent distance caching
//   - Bounded concurrent engine queries for cache misses
//
// The provider is safe for concurrent use.
type OSRMDistanceProvider struct {
	engine      ports.RoutingEngine
	cache       ports.DistanceCache
	concurrency int
	timeout     time.Duration
	logger      *zap.Logger
}

type OSRMProviderConfig struct {
	// Engine queries in flight per GetDistances call. Zero means 4.
	Concurrency int
	// Upper bound on a single engine query. Zero means no bound beyond ctx.
	Timeout time.Duration
}

// NewOSRMDistanceProvider wires a provider. cache may be nil.
func NewOSRMDistanceProvider(
	engine ports.RoutingEngine,
	cache ports.DistanceCache,
	cfg OSRMProviderConfig,
	logger *zap.Logger,
) (*OSRMDistanceProvider, error) {
	if engine == nil {
		return nil, errors.New("osrm provider: engine is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	return &OSRMDistanceProvider{
		engine:      engine,
		cache:       cache,
		concurrency: concurrency,
		timeout:     cfg.Timeout,
		logger:      logger,
	}, nil
}

var _ ports.DistanceMatrixProvider = (*OSRMDistanceProvider)(nil)

// Delegate to batched path to reuse caching.
func (o *OSRMDistanceProvider) GetDistance(
	ctx context.Context,
	origin domain.Point,
	destination domain.Point,
) (ports.DistanceResult, error) {
	results, err := o.GetDistances(ctx, origin, []domain.Point{destination})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf(
			"get distances %q -> %q: %w",
			origin.Key(), destination.Key(), err,
		)
	}

	result, ok := results[destination.Key()]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("no distance result for %q -> %q", origin.Key(), destination.Key())
	}

	return result, nil
}

// Compute distances from a single origin to many destinations. Results are
// keyed by destination Point.Key(); a destination equal to the origin costs
// nothing.
func (o *OSRMDistanceProvider) GetDistances(
	ctx context.Context,
	origin domain.Point,
	destinations []domain.Point,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "osrm.GetDistances")(&err)

	out := make(map[string]ports.DistanceResult, len(destinations))
	if len(destinations) == 0 {
		return out, nil
	}

	originKey := origin.Key()

	seen := make(map[string]struct{}, len(destinations))
	destList := make([]domain.Point, 0, len(destinations))
	for _, d := range destinations {
		k := d.Key()
		if k == originKey {
			out[k] = ports.DistanceResult{}
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = struct{}{}
		destList = append(destList, d)
	}

	if len(destList) == 0 {
		return out, nil
	}

	// Check persistent distance cache before querying the engine.
	if o.cache != nil {
		keys := make([]string, 0, len(destList))
		for _, d := range destList {
			keys = append(keys, d.Key())
		}

		hits, err := o.cache.GetMany(ctx, originKey, keys)
		if err != nil {
			return nil, fmt.Errorf("osrm get distance cache: %w", err)
		}
		for k, v := range hits {
			out[k] = v
		}
	}

	misses := make([]domain.Point, 0, len(destList))
	for _, d := range destList {
		if _, ok := out[d.Key()]; !ok {
			misses = append(misses, d)
		}
	}

	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := o.fetchRow(ctx, origin, misses)
	if err != nil {
		return nil, fmt.Errorf("fetching engine row: %w", err)
	}

	if o.cache != nil {
		if err := o.cache.PutMany(ctx, originKey, fetched); err != nil {
			o.logger.Warn("distance cache write failed", zap.String("origin", originKey), zap.Error(err))
		}
	}

	for k, v := range fetched {
		out[k] = v
	}

	return out, nil
}
