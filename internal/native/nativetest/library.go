// Package nativetest provides an instrumented in-memory native.Library.
//
// It plays the engine's side of the C contract: it hands out opaque handles
// and NUL-terminated response buffers, and counts every allocation, free,
// create and destroy so tests can assert the binding's ownership rules.
package nativetest

import (
	"encoding/json"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/native"
	"sync"
	"unsafe"
)

// Response is what a fake query returns. Null returns a nil buffer
// regardless of Status.
type Response struct {
	Status int
	Body   string
	Null   bool
}

// OK wraps a JSON body in a successful response.
func OK(body string) Response { return Response{Status: native.StatusOK, Body: body} }

// Fail returns a non-OK status carrying msg, the way the engine reports errors.
func Fail(msg string) Response { return Response{Status: 1, Body: msg} }

// JSON marshals v into a successful response.
func JSON(v any) Response {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return OK(string(b))
}

// Call records one query as seen at the boundary.
type Call struct {
	Op           string
	Coords       []float64
	Sources      []int
	Destinations []int
}

// Stats is a snapshot of the fake's counters.
type Stats struct {
	Created     int
	Destroyed   int
	LiveHandles int
	BadDestroys int

	Allocs      int
	Frees       int
	LiveBuffers int
	BadFrees    int
	BadReads    int
}

type engine struct {
	basePath  string
	algorithm string
}

// Library is safe for concurrent use.
type Library struct {
	// CreateFunc decides whether Create succeeds. Nil accepts everything.
	CreateFunc func(basePath, algorithm string) bool

	TableFunc func(coords []float64, sources, destinations []int) Response
	RouteFunc func(coords []float64) Response
	TripFunc  func(coords []float64) Response

	// Hook, when set, runs inside every query before the response is built.
	Hook func(op string)

	mu      sync.Mutex
	handles map[native.Handle]*engine
	buffers map[native.Text][]byte
	stats   Stats
	calls   []Call
}

var _ native.Library = (*Library)(nil)

// New returns a fake whose queries answer with well-formed payloads shaped
// after the request (see StubTable, StubRoute, StubTrip).
func New() *Library {
	return &Library{
		TableFunc: func(coords []float64, sources, destinations []int) Response {
			return JSON(StubTable(coords, sources, destinations))
		},
		RouteFunc: func(coords []float64) Response { return JSON(StubRoute(coords)) },
		TripFunc:  func(coords []float64) Response { return JSON(StubTrip()) },
	}
}

func (l *Library) Create(basePath, algorithm string) native.Handle {
	if l.CreateFunc != nil && !l.CreateFunc(basePath, algorithm) {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handles == nil {
		l.handles = make(map[native.Handle]*engine)
	}
	e := &engine{basePath: basePath, algorithm: algorithm}
	h := native.Handle(unsafe.Pointer(e))
	l.handles[h] = e
	l.stats.Created++
	return h
}

func (l *Library) Destroy(h native.Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.handles[h]; !ok {
		l.stats.BadDestroys++
		return
	}
	delete(l.handles, h)
	l.stats.Destroyed++
}

func (l *Library) Table(h native.Handle, coords []float64, sources, destinations []int) (int, native.Text) {
	return l.query(h, Call{
		Op:           "table",
		Coords:       clone(coords),
		Sources:      cloneInts(sources),
		Destinations: cloneInts(destinations),
	}, func() Response {
		if l.TableFunc == nil {
			return Response{Null: true}
		}
		return l.TableFunc(coords, sources, destinations)
	})
}

func (l *Library) Route(h native.Handle, coords []float64) (int, native.Text) {
	return l.query(h, Call{Op: "route", Coords: clone(coords)}, func() Response {
		if l.RouteFunc == nil {
			return Response{Null: true}
		}
		return l.RouteFunc(coords)
	})
}

func (l *Library) Trip(h native.Handle, coords []float64) (int, native.Text) {
	return l.query(h, Call{Op: "trip", Coords: clone(coords)}, func() Response {
		if l.TripFunc == nil {
			return Response{Null: true}
		}
		return l.TripFunc(coords)
	})
}

func (l *Library) query(h native.Handle, call Call, respond func() Response) (int, native.Text) {
	l.mu.Lock()
	l.calls = append(l.calls, call)
	_, known := l.handles[h]
	l.mu.Unlock()

	if l.Hook != nil {
		l.Hook(call.Op)
	}

	resp := Fail("OSRM instance not found")
	if known {
		resp = respond()
	}
	if resp.Null {
		return resp.Status, nil
	}
	return resp.Status, l.alloc(resp.Body)
}

func (l *Library) alloc(s string) native.Text {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	t := native.Text(unsafe.Pointer(&buf[0]))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buffers == nil {
		l.buffers = make(map[native.Text][]byte)
	}
	l.buffers[t] = buf
	l.stats.Allocs++
	return t
}

func (l *Library) CopyText(t native.Text) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	buf, ok := l.buffers[t]
	if !ok {
		l.stats.BadReads++
		return ""
	}
	return string(buf[:len(buf)-1])
}

func (l *Library) FreeText(t native.Text) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.buffers[t]; !ok {
		l.stats.BadFrees++
		return
	}
	delete(l.buffers, t)
	l.stats.Frees++
}

// Stats returns a snapshot of the counters.
func (l *Library) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.stats
	s.LiveHandles = len(l.handles)
	s.LiveBuffers = len(l.buffers)
	return s
}

// Calls returns every query seen so far, in arrival order.
func (l *Library) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Call(nil), l.calls...)
}

// CallCount returns how many queries of op reached the boundary.
func (l *Library) CallCount(op string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, c := range l.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func clone(v []float64) []float64 { return append([]float64(nil), v...) }
func cloneInts(v []int) []int     { return append([]int(nil), v...) }

// StubTable answers a table query with one row per source and one column per
// destination. Durations are 100*(source+1)+destination seconds.
func StubTable(coords []float64, sources, destinations []int) domain.TableResponse {
	points := domain.Unflatten(coords)

	resp := domain.TableResponse{
		Code:         "Ok",
		Durations:    make([][]*float64, 0, len(sources)),
		Sources:      make([]domain.TableLocation, 0, len(sources)),
		Destinations: make([]domain.TableLocation, 0, len(destinations)),
	}
	for i, s := range sources {
		row := make([]*float64, 0, len(destinations))
		for j := range destinations {
			d := float64(100*(i+1) + j)
			row = append(row, &d)
		}
		resp.Durations = append(resp.Durations, row)
		resp.Sources = append(resp.Sources, location(points, s))
	}
	for _, d := range destinations {
		resp.Destinations = append(resp.Destinations, location(points, d))
	}
	return resp
}

// StubRoute answers a route query with a single route of len(points)-1
// legs, each 1000 m and 60 s.
func StubRoute(coords []float64) domain.RouteResponse {
	points := domain.Unflatten(coords)

	route := domain.Route{Legs: []domain.Leg{}, WeightName: "routability", Geometry: "_p~iF~ps|U_ulLnnqC"}
	for i := 1; i < len(points); i++ {
		route.Legs = append(route.Legs, domain.Leg{
			Steps:    []domain.Step{},
			Weight:   60,
			Summary:  "",
			Duration: 60,
			Distance: 1000,
		})
		route.Weight += 60
		route.Duration += 60
		route.Distance += 1000
	}

	resp := domain.RouteResponse{Code: "Ok", Routes: []domain.Route{route}, Waypoints: []domain.Waypoint{}}
	for i := range points {
		resp.Waypoints = append(resp.Waypoints, domain.Waypoint{
			Hint:     "hint",
			Location: [2]float64{points[i].Longitude, points[i].Latitude},
		})
	}
	return resp
}

// NoRoute is a structurally valid route response with zero routes.
func NoRoute() domain.RouteResponse {
	return domain.RouteResponse{Code: "Ok", Routes: []domain.Route{}, Waypoints: []domain.Waypoint{}}
}

// StubTrip is a minimal trip document.
func StubTrip() map[string]any {
	return map[string]any{"code": "Ok", "trips": []any{}, "waypoints": []any{}}
}

func location(points []domain.Point, idx int) domain.TableLocation {
	if idx < 0 || idx >= len(points) {
		return domain.TableLocation{}
	}
	p := points[idx]
	return domain.TableLocation{Hint: "hint", Location: [2]float64{p.Longitude, p.Latitude}}
}
