package distance

import (
	"context"
	"fmt"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/ports"
	"sync/atomic"
)

type MockPair struct {
	From, To domain.Point
	Meters   int
	Seconds  int
}

// MockDistanceProvider answers from a fixed pair list. Pairs are directed.
type MockDistanceProvider struct {
	m     map[string]ports.DistanceResult
	calls atomic.Int64
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[p.From.Key()+"|"+p.To.Key()] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination domain.Point) (ports.DistanceResult, error) {
	p.calls.Add(1)

	r, ok := p.m[origin.Key()+"|"+destination.Key()]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %q -> %q", origin.Key(), destination.Key())
	}

	return r, nil
}

// Calls reports how many lookups were made.
func (p *MockDistanceProvider) Calls() int { return int(p.calls.Load()) }
