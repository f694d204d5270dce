package services

import (
	"errors"
	"osrm-route-service/internal/ports"
	"slices"
)

// AssignStopsByDistance splits stop keys across vehicles using a simple
// heuristic.
//
// Keys are sorted by distance from the start and chunked across vehicles to
// produce a deterministic, reasonably balanced distribution without solving
// a full VRP. Vehicles past the last chunk get no stops.
func AssignStopsByDistance(
	keys []string,
	fromStart map[string]ports.DistanceResult,
	vehicles int,
) ([][]string, error) {
	if vehicles < 1 {
		return nil, errors.New("assign stops: vehicle count must be positive")
	}

	sorted := slices.Clone(keys)
	// Sort by start distance so each vehicle receives a contiguous "band".
	slices.SortFunc(sorted, func(a, b string) int {
		da := fromStart[a].DistanceMeters
		db := fromStart[b].DistanceMeters
		if da < db {
			return -1
		}
		if da > db {
			return 1
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})

	out := make([][]string, vehicles)
	n := len(sorted)
	// Ceiling division: distribute as evenly as possible.
	chunkSize := (n + vehicles - 1) / vehicles

	for vi := 0; vi < vehicles; vi++ {
		start := vi * chunkSize
		if start >= n {
			out[vi] = []string{}
			continue
		}
		end := min(start+chunkSize, n)
		out[vi] = sorted[start:end]
	}

	return out, nil
}
