package services

import (
	"context"
	"fmt"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/ports"
	"time"
)

// Plan the visit order of stops from start for a single vehicle using a
// greedy nearest-neighbor algorithm.
//
// The algorithm minimizes immediate travel duration at each step.
// It does not attempt global route optimization (e.g., VRP solvers).
// The design prioritizes determinism and simplicity over optimality.
func PlanRoute(
	ctx context.Context,
	departAt time.Time,
	start domain.Point,
	stops []domain.Point,
	distanceProvider ports.DistanceProvider,
	returnToStart bool,
) (*domain.VisitPlan, error) {
	return nearestNeighbor(ctx, 1, start, departAt, indexStops(stops), returnToStart, providerLookup(distanceProvider))
}

// providerLookup prefers batched lookups when the provider supports them.
func providerLookup(provider ports.DistanceProvider) distanceLookup {
	if mp, ok := provider.(ports.DistanceMatrixProvider); ok {
		return func(ctx context.Context, origin domain.Point, candidates []domain.Point) (map[string]ports.DistanceResult, error) {
			results, err := mp.GetDistances(ctx, origin, candidates)
			if err != nil {
				return nil, fmt.Errorf("get distances matrix from %q: %w", origin.Key(), err)
			}
			return results, nil
		}
	}

	return func(ctx context.Context, origin domain.Point, candidates []domain.Point) (map[string]ports.DistanceResult, error) {
		out := make(map[string]ports.DistanceResult, len(candidates))
		for _, c := range candidates {
			r, err := provider.GetDistance(ctx, origin, c)
			if err != nil {
				return nil, fmt.Errorf("get distance: from %q to %q: %w", origin.Key(), c.Key(), err)
			}
			out[c.Key()] = r
		}
		return out, nil
	}
}
