package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/ports"
	"time"
)

// indexedStop is a stop together with its position in the caller's list.
type indexedStop struct {
	index int
	point domain.Point
}

func indexStops(stops []domain.Point) []indexedStop {
	out := make([]indexedStop, 0, len(stops))
	for i, p := range stops {
		out = append(out, indexedStop{index: i, point: p})
	}
	return out
}

// distanceLookup returns results from origin to every candidate, keyed by
// candidate Point.Key().
type distanceLookup func(ctx context.Context, origin domain.Point, candidates []domain.Point) (map[string]ports.DistanceResult, error)

func pairKey(from, to string) string { return from + "|" + to }

// Plan a visit order using a greedy nearest-neighbor algorithm over a
// precomputed pairwise map keyed "originKey|destinationKey".
//
// Stops sharing a key are visited together. A missing pair is an error.
func NearestNeighborRoute(
	start domain.Point,
	departAt time.Time,
	stops []domain.Point,
	distances map[string]ports.DistanceResult,
	returnToStart bool,
) (*domain.VisitPlan, error) {
	lookup := func(_ context.Context, origin domain.Point, candidates []domain.Point) (map[string]ports.DistanceResult, error) {
		out := make(map[string]ports.DistanceResult, len(candidates))
		for _, c := range candidates {
			r, ok := distances[pairKey(origin.Key(), c.Key())]
			if !ok {
				return nil, fmt.Errorf("missing distance result from %q to %q", origin.Key(), c.Key())
			}
			out[c.Key()] = r
		}
		return out, nil
	}

	return nearestNeighbor(context.Background(), 1, start, departAt, indexStops(stops), returnToStart, lookup)
}

func nearestNeighbor(
	ctx context.Context,
	vehicle int,
	start domain.Point,
	departAt time.Time,
	stops []indexedStop,
	returnToStart bool,
	lookup distanceLookup,
) (*domain.VisitPlan, error) {
	plan := &domain.VisitPlan{
		Vehicle:       vehicle,
		Start:         start,
		DepartAt:      departAt,
		Stops:         []domain.VisitStop{},
		ReturnToStart: returnToStart,
	}
	if len(stops) == 0 {
		return plan, nil
	}

	byKey := make(map[string][]indexedStop)
	for _, s := range stops {
		byKey[s.point.Key()] = append(byKey[s.point.Key()], s)
	}

	currentTime := departAt
	current := start

	for len(byKey) > 0 {
		candidates := make([]domain.Point, 0, len(byKey))
		for _, group := range byKey {
			candidates = append(candidates, group[0].point)
		}

		results, err := distancesFrom(ctx, current, candidates, lookup)
		if err != nil {
			return nil, fmt.Errorf("plan route: %w", err)
		}

		var bestKey string
		minDuration := math.MaxInt64

		// Tie-breaker keeps the order deterministic when durations are equal.
		for _, c := range candidates {
			k := c.Key()
			d := results[k].DurationSeconds
			if d < minDuration || (d == minDuration && (bestKey == "" || k < bestKey)) {
				minDuration = d
				bestKey = k
			}
		}
		if bestKey == "" {
			return nil, errors.New("plan route: failed to select next stop")
		}
		best := results[bestKey]

		currentTime = currentTime.Add(time.Duration(best.DurationSeconds) * time.Second)
		plan.TotalDurationSeconds += best.DurationSeconds
		plan.TotalDistanceMeters += best.DistanceMeters

		for _, s := range byKey[bestKey] {
			plan.Stops = append(plan.Stops, domain.VisitStop{
				Index:    s.index,
				Point:    s.point,
				ArriveAt: currentTime,
			})
		}

		current = byKey[bestKey][0].point
		delete(byKey, bestKey)
	}

	if returnToStart {
		results, err := distancesFrom(ctx, current, []domain.Point{start}, lookup)
		if err != nil {
			return nil, fmt.Errorf("plan route: return leg: %w", err)
		}
		back := results[start.Key()]
		plan.TotalDurationSeconds += back.DurationSeconds
		plan.TotalDistanceMeters += back.DistanceMeters
	}

	return plan, nil
}

// distancesFrom resolves origin->candidate results. A candidate at the
// origin itself costs nothing and is never looked up.
func distancesFrom(
	ctx context.Context,
	origin domain.Point,
	candidates []domain.Point,
	lookup distanceLookup,
) (map[string]ports.DistanceResult, error) {
	out := make(map[string]ports.DistanceResult, len(candidates))

	remote := make([]domain.Point, 0, len(candidates))
	for _, c := range candidates {
		if c.Key() == origin.Key() {
			out[c.Key()] = ports.DistanceResult{}
			continue
		}
		remote = append(remote, c)
	}
	if len(remote) == 0 {
		return out, nil
	}

	results, err := lookup(ctx, origin, remote)
	if err != nil {
		return nil, err
	}
	for _, c := range remote {
		r, ok := results[c.Key()]
		if !ok {
			return nil, fmt.Errorf("missing distance result from %q to %q", origin.Key(), c.Key())
		}
		out[c.Key()] = r
	}
	return out, nil
}
