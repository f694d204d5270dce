// Package engine is the typed entry point to the OSRM engine.
//
// An Engine validates requests, lays them out in the engine's flat
// coordinate convention, calls the native binding and decodes the JSON
// payload. Every failure is one of the kinds in the domain error taxonomy;
// a call never returns a partially populated response.
package engine

import (
	"encoding/json"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/native"
	"osrm-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

// Engine is safe for concurrent use once New returns. Calls block for the
// whole native computation and cannot be cancelled; callers needing a
// deadline should race the call on a separate goroutine.
type Engine struct {
	binding *native.Binding
	logger  *zap.Logger
}

type options struct {
	lib    native.Library
	logger *zap.Logger
}

// Option configures New.
type Option func(*options)

// WithLibrary replaces the linked native library, typically with a
// nativetest fake.
func WithLibrary(lib native.Library) Option {
	return func(o *options) { o.lib = lib }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds an engine over the data prepared at basePath for algorithm.
// Any construction failure is reported as ErrInitialization; the cause
// (for example ErrInvalidPath) stays in the chain.
func New(basePath string, algorithm domain.Algorithm, opts ...Option) (*Engine, error) {
	o := options{lib: native.Default(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	b, err := native.Open(o.lib, basePath, algorithm.String())
	if err != nil {
		if domain.KindOf(err) == domain.ErrInitialization {
			return nil, err
		}
		return nil, domain.InitializationError("engine.New", err)
	}

	o.logger.Info("osrm engine ready",
		zap.String("base_path", basePath),
		zap.Stringer("algorithm", algorithm),
	)

	return &Engine{binding: b, logger: o.logger}, nil
}

// Close destroys the native engine. It must only be called once no more
// queries will be issued; queries still running are waited for.
func (e *Engine) Close() error {
	return e.binding.Close()
}

// Table computes the duration matrix between req.Sources and
// req.Destinations. Durations[i][j] is nil when no path exists.
func (e *Engine) Table(req domain.TableRequest) (_ *domain.TableResponse, err error) {
	defer obs.TimeOp(e.logger, "engine.Table")(&err)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	raw, err := e.binding.Table(req.Coordinates(), req.SourceIndices(), req.DestinationIndices())
	if err != nil {
		return nil, err
	}

	var resp domain.TableResponse
	if err := decode("table", raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Route computes the fastest route visiting req.Points in order.
func (e *Engine) Route(req domain.RouteRequest) (_ *domain.RouteResponse, err error) {
	defer obs.TimeOp(e.logger, "engine.Route")(&err)

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return e.route("route", req.Points)
}

// Trip computes a round trip over req.Points with an optimized visit order.
func (e *Engine) Trip(req domain.TripRequest) (_ *domain.TripResponse, err error) {
	defer obs.TimeOp(e.logger, "engine.Trip")(&err)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	raw, err := e.binding.Trip(req.Points)
	if err != nil {
		return nil, err
	}

	var resp domain.TripResponse
	if err := decode("trip", raw, &resp); err != nil {
		return nil, err
	}
	resp.Raw = json.RawMessage(raw)
	return &resp, nil
}

// SimpleRoute returns distance and duration of the first leg of the first
// route from -> to. It fails with ErrAPI when the engine finds no route.
func (e *Engine) SimpleRoute(from, to domain.Point) (_ *domain.SimpleRouteResponse, err error) {
	defer obs.TimeOp(e.logger, "engine.SimpleRoute")(&err)

	resp, err := e.route("simple_route", []domain.Point{from, to})
	if err != nil {
		return nil, err
	}

	if len(resp.Routes) == 0 {
		return nil, domain.APIError("simple_route", "no route returned")
	}
	route := resp.Routes[0]
	if len(route.Legs) == 0 {
		return nil, domain.APIError("simple_route", "route has no legs")
	}
	leg := route.Legs[0]

	return &domain.SimpleRouteResponse{
		Code:      resp.Code,
		Distance:  leg.Distance,
		Durations: leg.Duration,
	}, nil
}

func (e *Engine) route(op string, points []domain.Point) (*domain.RouteResponse, error) {
	raw, err := e.binding.Route(points)
	if err != nil {
		return nil, err
	}

	var resp domain.RouteResponse
	if err := decode(op, raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func decode(op, raw string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return domain.JSONParseError(op, err)
	}
	return nil
}
