package ports

import (
	"context"
	"osrm-route-service/internal/domain"
)

// Optional extension of DistanceProvider that supports batched lookups.
type DistanceMatrixProvider interface {
	DistanceProvider
	// Return distances from one origin to many destinations, keyed by
	// destination Point.Key().
	GetDistances(ctx context.Context, origin domain.Point, destinations []domain.Point) (map[string]DistanceResult, error)
}
