//go:build !cgo || !osrm

package native

type unavailable struct{}

// Default returns a Library that cannot build engines: the binary was built
// without the osrm tag (or without cgo), so the engine is not linked in.
// Every Create yields a nil handle and therefore ErrInitialization.
func Default() Library { return unavailable{} }

func (unavailable) Create(string, string) Handle { return nil }
func (unavailable) Destroy(Handle)                {}

func (unavailable) Table(Handle, []float64, []int, []int) (int, Text) { return 1, nil }
func (unavailable) Route(Handle, []float64) (int, Text)               { return 1, nil }
func (unavailable) Trip(Handle, []float64) (int, Text)                { return 1, nil }
func (unavailable) CopyText(Text) string                              { return "" }
func (unavailable) FreeText(Text)                                     {}
