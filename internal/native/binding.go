package native

import (
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/platform/obs"
	"strings"
	"sync"
	"unicode/utf8"
)

// Binding owns exactly one engine handle for its whole lifetime.
//
// The engine graph is read-only once built, so any number of goroutines may
// query a Binding at the same time. Queries share a read lock and Close
// takes the write lock: the handle is never destroyed while a query is in
// flight. A Binding must not be copied; use the *Binding returned by Open.
type Binding struct {
	lib    Library
	mu     sync.RWMutex
	handle Handle
}

// Open converts basePath and algorithm to C strings and constructs the
// engine. Strings containing NUL fail with ErrInvalidPath before crossing
// the boundary; a nil handle fails with ErrInitialization.
func Open(lib Library, basePath, algorithm string) (*Binding, error) {
	if strings.IndexByte(basePath, 0) >= 0 {
		return nil, domain.InvalidPathError("native.Open", "base path contains a NUL byte")
	}
	if strings.IndexByte(algorithm, 0) >= 0 {
		return nil, domain.InvalidPathError("native.Open", "algorithm contains a NUL byte")
	}

	h := lib.Create(basePath, algorithm)
	if h == nil {
		return nil, domain.InitializationError("native.Open", nil)
	}
	obs.NativeHandles.Inc()

	return &Binding{lib: lib, handle: h}, nil
}

// Close destroys the engine handle. It waits for in-flight queries and is
// safe to call more than once; only the first call reaches the engine.
func (b *Binding) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handle == nil {
		return nil
	}
	b.lib.Destroy(b.handle)
	b.handle = nil
	obs.NativeHandles.Dec()
	return nil
}

// Table runs a matrix query over points, where sources and destinations are
// indices into points.
func (b *Binding) Table(points []domain.Point, sources, destinations []int) (string, error) {
	coords := domain.Flatten(points)
	return b.call("table", func(h Handle) (int, Text) {
		return b.lib.Table(h, coords, sources, destinations)
	})
}

func (b *Binding) Route(points []domain.Point) (string, error) {
	coords := domain.Flatten(points)
	return b.call("route", func(h Handle) (int, Text) {
		return b.lib.Route(h, coords)
	})
}

func (b *Binding) Trip(points []domain.Point) (string, error) {
	coords := domain.Flatten(points)
	return b.call("trip", func(h Handle) (int, Text) {
		return b.lib.Trip(h, coords)
	})
}

func (b *Binding) call(op string, invoke func(Handle) (int, Text)) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.handle == nil {
		obs.NativeCalls.WithLabelValues(op, "closed").Inc()
		return "", domain.FFIError(op, "instance closed")
	}

	status, text := invoke(b.handle)
	return b.collect(op, status, text)
}

// collect turns a native result into an owned string. All three queries go
// through here so the buffer is released exactly once on every path, after
// it has been copied.
func (b *Binding) collect(op string, status int, text Text) (string, error) {
	if text == nil {
		obs.NativeCalls.WithLabelValues(op, "null_message").Inc()
		return "", domain.FFIError(op, "null message")
	}
	defer b.release(text)

	msg := b.lib.CopyText(text)

	if !utf8.ValidString(msg) {
		obs.NativeCalls.WithLabelValues(op, "invalid_text").Inc()
		return "", domain.FFIError(op, "response is not valid UTF-8")
	}

	if status != StatusOK {
		obs.NativeCalls.WithLabelValues(op, "status_error").Inc()
		return "", domain.FFIError(op, msg)
	}

	obs.NativeCalls.WithLabelValues(op, "ok").Inc()
	return msg, nil
}

func (b *Binding) release(text Text) {
	b.lib.FreeText(text)
	obs.NativeBuffersFreed.Inc()
}
