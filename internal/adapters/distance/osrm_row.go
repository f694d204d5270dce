package distance

import (
	"context"
	"fmt"
	"math"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/ports"
	"sync"

	"golang.org/x/sync/errgroup"
)

// fetchRow retrieves distance and duration from one origin to many
// destinations with one SimpleRoute per destination, at most o.concurrency
// at a time. The first failure cancels the rest.
func (o *OSRMDistanceProvider) fetchRow(
	ctx context.Context,
	origin domain.Point,
	destinations []domain.Point,
) (map[string]ports.DistanceResult, error) {
	out := make(map[string]ports.DistanceResult, len(destinations))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, dest := range destinations {
		dest := dest
		g.Go(func() error {
			r, err := o.simpleRoute(gctx, origin, dest)
			if err != nil {
				return fmt.Errorf("%q -> %q: %w", origin.Key(), dest.Key(), err)
			}

			// The engine returns float metrics; round to nearest integer for
			// domain consistency.
			res := ports.DistanceResult{
				DistanceMeters:  int(math.Round(r.Distance)),
				DurationSeconds: int(math.Round(r.Durations)),
			}

			mu.Lock()
			out[dest.Key()] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type simpleRouteResult struct {
	resp *domain.SimpleRouteResponse
	err  error
}

// simpleRoute runs one engine query on its own goroutine so the caller can
// give up on ctx. The engine call itself cannot be interrupted and finishes
// in the background.
func (o *OSRMDistanceProvider) simpleRoute(
	ctx context.Context,
	from domain.Point,
	to domain.Point,
) (*domain.SimpleRouteResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	done := make(chan simpleRouteResult, 1)
	go func() {
		resp, err := o.engine.SimpleRoute(from, to)
		done <- simpleRouteResult{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.resp, r.err
	}
}
