package distance

import (
	"context"
	"errors"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/engine"
	"osrm-route-service/internal/native/nativetest"
	"osrm-route-service/internal/ports"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	paris     = domain.Point{Latitude: 48.8566, Longitude: 2.3522}
	marseille = domain.Point{Latitude: 43.2965, Longitude: 5.3698}
	lyon      = domain.Point{Latitude: 45.7640, Longitude: 4.8357}
	nice      = domain.Point{Latitude: 43.7102, Longitude: 7.2620}
)

// fakeEngine answers SimpleRoute from a function; other methods are unused.
type fakeEngine struct {
	ports.RoutingEngine
	simple func(from, to domain.Point) (*domain.SimpleRouteResponse, error)
	calls  atomic.Int64
}

func (f *fakeEngine) SimpleRoute(from, to domain.Point) (*domain.SimpleRouteResponse, error) {
	f.calls.Add(1)
	return f.simple(from, to)
}

type memCache struct {
	mu     sync.Mutex
	m      map[string]ports.DistanceResult
	putErr error
}

func newMemCache() *memCache { return &memCache{m: map[string]ports.DistanceResult{}} }

func (c *memCache) GetMany(_ context.Context, origin string, destinations []string) (map[string]ports.DistanceResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]ports.DistanceResult{}
	for _, d := range destinations {
		if r, ok := c.m[origin+"|"+d]; ok {
			out[d] = r
		}
	}
	return out, nil
}

func (c *memCache) PutMany(_ context.Context, origin string, results map[string]ports.DistanceResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	for d, r := range results {
		c.m[origin+"|"+d] = r
	}
	return nil
}

func newProvider(t *testing.T, eng ports.RoutingEngine, cache ports.DistanceCache, cfg OSRMProviderConfig) *OSRMDistanceProvider {
	t.Helper()
	p, err := NewOSRMDistanceProvider(eng, cache, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return p
}

func TestOSRMProviderOverEngine(t *testing.T) {
	lib := nativetest.New()
	eng, err := engine.New("/data/france.osrm", domain.AlgorithmMLD, engine.WithLibrary(lib))
	require.NoError(t, err)
	defer eng.Close()

	p := newProvider(t, eng, nil, OSRMProviderConfig{Concurrency: 2})

	results, err := p.GetDistances(context.Background(), paris, []domain.Point{marseille, lyon, nice})
	require.NoError(t, err)

	require.Len(t, results, 3)
	for _, k := range []string{marseille.Key(), lyon.Key(), nice.Key()} {
		assert.Equal(t, ports.DistanceResult{DistanceMeters: 1000, DurationSeconds: 60}, results[k])
	}
	assert.Equal(t, 3, lib.CallCount("route"))
	assert.Equal(t, lib.Stats().Allocs, lib.Stats().Frees)
}

func TestOSRMProviderRoundsAndDedupes(t *testing.T) {
	eng := &fakeEngine{simple: func(from, to domain.Point) (*domain.SimpleRouteResponse, error) {
		return &domain.SimpleRouteResponse{Code: "Ok", Distance: 1234.5, Durations: 99.4}, nil
	}}
	p := newProvider(t, eng, nil, OSRMProviderConfig{})

	results, err := p.GetDistances(context.Background(), paris, []domain.Point{lyon, lyon, paris})
	require.NoError(t, err)

	assert.Equal(t, ports.DistanceResult{DistanceMeters: 1235, DurationSeconds: 99}, results[lyon.Key()])
	assert.Equal(t, ports.DistanceResult{}, results[paris.Key()])
	assert.EqualValues(t, 1, eng.calls.Load())
}

func TestOSRMProviderUsesCache(t *testing.T) {
	eng := &fakeEngine{simple: func(from, to domain.Point) (*domain.SimpleRouteResponse, error) {
		return &domain.SimpleRouteResponse{Code: "Ok", Distance: 500, Durations: 30}, nil
	}}
	cache := newMemCache()
	cache.m[paris.Key()+"|"+lyon.Key()] = ports.DistanceResult{DistanceMeters: 7, DurationSeconds: 8}
	p := newProvider(t, eng, cache, OSRMProviderConfig{})

	results, err := p.GetDistances(context.Background(), paris, []domain.Point{lyon, nice})
	require.NoError(t, err)

	assert.Equal(t, ports.DistanceResult{DistanceMeters: 7, DurationSeconds: 8}, results[lyon.Key()])
	assert.Equal(t, ports.DistanceResult{DistanceMeters: 500, DurationSeconds: 30}, results[nice.Key()])
	assert.EqualValues(t, 1, eng.calls.Load())

	// Write-back makes the second call a pure cache hit.
	_, err = p.GetDistances(context.Background(), paris, []domain.Point{lyon, nice})
	require.NoError(t, err)
	assert.EqualValues(t, 1, eng.calls.Load())
}

func TestOSRMProviderCacheWriteFailureIsNotFatal(t *testing.T) {
	eng := &fakeEngine{simple: func(from, to domain.Point) (*domain.SimpleRouteResponse, error) {
		return &domain.SimpleRouteResponse{Code: "Ok", Distance: 500, Durations: 30}, nil
	}}
	cache := newMemCache()
	cache.putErr = errors.New("disk full")
	p := newProvider(t, eng, cache, OSRMProviderConfig{})

	r, err := p.GetDistance(context.Background(), paris, lyon)
	require.NoError(t, err)
	assert.Equal(t, 500, r.DistanceMeters)
}

func TestOSRMProviderNoRouteSurfacesAPIError(t *testing.T) {
	eng := &fakeEngine{simple: func(from, to domain.Point) (*domain.SimpleRouteResponse, error) {
		if to == nice {
			return nil, domain.APIError("simple_route", "no route returned")
		}
		return &domain.SimpleRouteResponse{Code: "Ok", Distance: 1, Durations: 1}, nil
	}}
	p := newProvider(t, eng, nil, OSRMProviderConfig{Concurrency: 1})

	_, err := p.GetDistances(context.Background(), paris, []domain.Point{lyon, nice})
	require.ErrorIs(t, err, domain.ErrAPI)
	assert.Contains(t, err.Error(), nice.Key())
}

func TestOSRMProviderTimeout(t *testing.T) {
	release := make(chan struct{})
	eng := &fakeEngine{simple: func(from, to domain.Point) (*domain.SimpleRouteResponse, error) {
		<-release
		return &domain.SimpleRouteResponse{Code: "Ok"}, nil
	}}
	p := newProvider(t, eng, nil, OSRMProviderConfig{Timeout: 20 * time.Millisecond})

	_, err := p.GetDistance(context.Background(), paris, lyon)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// Let the abandoned engine call finish before the leak check.
	close(release)
	require.Eventually(t, func() bool { return eng.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestOSRMProviderCancelledContext(t *testing.T) {
	eng := &fakeEngine{simple: func(from, to domain.Point) (*domain.SimpleRouteResponse, error) {
		return &domain.SimpleRouteResponse{Code: "Ok"}, nil
	}}
	p := newProvider(t, eng, nil, OSRMProviderConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GetDistances(ctx, paris, []domain.Point{lyon})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, eng.calls.Load())
}

func TestOSRMProviderBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int64
	eng := &fakeEngine{simple: func(from, to domain.Point) (*domain.SimpleRouteResponse, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return &domain.SimpleRouteResponse{Code: "Ok", Distance: 1, Durations: 1}, nil
	}}
	p := newProvider(t, eng, nil, OSRMProviderConfig{Concurrency: 3})

	dests := make([]domain.Point, 0, 20)
	for i := 0; i < 20; i++ {
		dests = append(dests, domain.Point{Latitude: 45 + float64(i)*0.01, Longitude: 4})
	}

	results, err := p.GetDistances(context.Background(), paris, dests)
	require.NoError(t, err)
	assert.Len(t, results, 20)
	assert.LessOrEqual(t, peak.Load(), int64(3))
}

func TestNewOSRMDistanceProviderRequiresEngine(t *testing.T) {
	_, err := NewOSRMDistanceProvider(nil, nil, OSRMProviderConfig{}, nil)
	require.Error(t, err)
}
