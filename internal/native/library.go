// Package native is the boundary to the OSRM engine's C entry points.
//
// The engine is a pre-built native library reached through a thin C shim
// (osrm_wrapper.h). Library mirrors that procedural contract one to one;
// Binding owns a single engine handle on top of it and is the only place
// native buffers are copied and released.
package native

import "unsafe"

// Handle is an opaque reference to a constructed engine instance. Its value
// only carries identity on this side of the boundary.
type Handle unsafe.Pointer

// Text is a native-allocated, NUL-terminated response buffer. It must be
// handed back through Library.FreeText exactly once.
type Text unsafe.Pointer

// StatusOK is the only success status returned by the query entry points.
const StatusOK = 0

// Library is the native engine's procedural contract.
//
// Create returns a nil Handle on any failure (missing or corrupt data,
// algorithm mismatch); the native side gives no further detail. Each query
// returns a status and a Text that is either nil or owned by the caller
// until passed to FreeText. On a non-OK status the Text holds the engine's
// error message.
//
// Coordinates are interleaved [lon0, lat0, lon1, lat1, ...]; the coordinate
// count passed to the engine is len(coords)/2.
type Library interface {
	Create(basePath, algorithm string) Handle
	Destroy(h Handle)
	Table(h Handle, coords []float64, sources, destinations []int) (int, Text)
	Route(h Handle, coords []float64) (int, Text)
	Trip(h Handle, coords []float64) (int, Text)
	CopyText(t Text) string
	FreeText(t Text)
}
