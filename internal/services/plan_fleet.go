package services

import (
	"context"
	"errors"
	"fmt"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/ports"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type FleetRequest struct {
	Start         domain.Point
	Stops         []domain.Point
	Vehicles      int
	DepartAt      time.Time
	ReturnToStart bool
	// Pairwise lookups in flight. Zero means 5.
	Concurrency int
}

// PlanFleet splits stops across req.Vehicles and plans each vehicle's visit
// order. Every pairwise distance is fetched once up front, concurrently,
// and the per-vehicle plans are computed from that table.
func PlanFleet(
	ctx context.Context,
	req FleetRequest,
	provider ports.DistanceProvider,
) ([]*domain.VisitPlan, error) {
	if req.Vehicles < 1 {
		return nil, errors.New("plan fleet: vehicle count must be positive")
	}

	stopsByKey := make(map[string][]indexedStop)
	points := make(map[string]domain.Point)
	keys := make([]string, 0, len(req.Stops))
	for i, p := range req.Stops {
		k := p.Key()
		if _, ok := stopsByKey[k]; !ok {
			keys = append(keys, k)
			points[k] = p
		}
		stopsByKey[k] = append(stopsByKey[k], indexedStop{index: i, point: p})
	}

	lookup := providerLookup(provider)

	if len(keys) == 0 {
		plans := make([]*domain.VisitPlan, 0, req.Vehicles)
		for v := 1; v <= req.Vehicles; v++ {
			plans = append(plans, emptyPlan(v, req))
		}
		return plans, nil
	}

	dests := make([]domain.Point, 0, len(keys))
	for _, k := range keys {
		dests = append(dests, points[k])
	}

	fromStart, err := distancesFrom(ctx, req.Start, dests, lookup)
	if err != nil {
		return nil, fmt.Errorf("plan fleet: distances from start: %w", err)
	}

	bands, err := AssignStopsByDistance(keys, fromStart, req.Vehicles)
	if err != nil {
		return nil, fmt.Errorf("plan fleet: %w", err)
	}

	// pairwise: "origin|destination" for every pair the planner may need.
	pairwise := make(map[string]ports.DistanceResult, len(keys)*(len(keys)+1))
	startKey := req.Start.Key()
	for k, r := range fromStart {
		pairwise[pairKey(startKey, k)] = r
	}

	limit := req.Concurrency
	if limit <= 0 {
		limit = 5
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, origin := range keys {
		origin := origin
		targets := make([]domain.Point, 0, len(keys))
		targets = append(targets, req.Start)
		for _, k := range keys {
			if k != origin {
				targets = append(targets, points[k])
			}
		}

		g.Go(func() error {
			res, err := distancesFrom(gctx, points[origin], targets, lookup)
			if err != nil {
				return fmt.Errorf("plan fleet: pairwise distances from %q: %w", origin, err)
			}

			mu.Lock()
			defer mu.Unlock()
			for k, r := range res {
				pairwise[pairKey(origin, k)] = r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := func(_ context.Context, origin domain.Point, candidates []domain.Point) (map[string]ports.DistanceResult, error) {
		out := make(map[string]ports.DistanceResult, len(candidates))
		for _, c := range candidates {
			r, ok := pairwise[pairKey(origin.Key(), c.Key())]
			if !ok {
				return nil, fmt.Errorf("missing pairwise distance from %q to %q", origin.Key(), c.Key())
			}
			out[c.Key()] = r
		}
		return out, nil
	}

	plans := make([]*domain.VisitPlan, 0, req.Vehicles)
	for vi, band := range bands {
		stops := make([]indexedStop, 0, len(band))
		for _, k := range band {
			stops = append(stops, stopsByKey[k]...)
		}

		plan, err := nearestNeighbor(ctx, vi+1, req.Start, req.DepartAt, stops, req.ReturnToStart, table)
		if err != nil {
			return nil, fmt.Errorf("plan fleet: vehicle %d: %w", vi+1, err)
		}
		plans = append(plans, plan)
	}

	return plans, nil
}

func emptyPlan(vehicle int, req FleetRequest) *domain.VisitPlan {
	return &domain.VisitPlan{
		Vehicle:       vehicle,
		Start:         req.Start,
		DepartAt:      req.DepartAt,
		Stops:         []domain.VisitStop{},
		ReturnToStart: req.ReturnToStart,
	}
}
