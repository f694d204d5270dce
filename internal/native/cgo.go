//go:build cgo && osrm

package native

/*
#cgo CFLAGS: -O2
#cgo LDFLAGS: -losrm_wrapper -losrm -losrm_store -losrm_extract -losrm_partition -losrm_update -losrm_guidance -losrm_customize -losrm_contract
#cgo LDFLAGS: -lboost_thread -lboost_filesystem -lboost_iostreams -ltbb -lfmt -lstdc++ -lz -lbz2 -lexpat
#include <stdlib.h>
#include "osrm_wrapper.h"
*/
import "C"

import "unsafe"

type cLibrary struct{}

// Default returns the engine linked into this binary through libosrm_wrapper.
func Default() Library { return cLibrary{} }

func (cLibrary) Create(basePath, algorithm string) Handle {
	cPath := C.CString(basePath)
	defer C.free(unsafe.Pointer(cPath))
	cAlgorithm := C.CString(algorithm)
	defer C.free(unsafe.Pointer(cAlgorithm))

	return Handle(C.osrm_create(cPath, cAlgorithm))
}

func (cLibrary) Destroy(h Handle) {
	C.osrm_destroy(unsafe.Pointer(h))
}

func (cLibrary) Table(h Handle, coords []float64, sources, destinations []int) (int, Text) {
	src := toSizeT(sources)
	dst := toSizeT(destinations)

	res := C.osrm_table(
		unsafe.Pointer(h),
		doublePtr(coords),
		C.size_t(len(coords)/2),
		sizePtr(src),
		C.size_t(len(src)),
		sizePtr(dst),
		C.size_t(len(dst)),
	)
	return int(res.code), Text(unsafe.Pointer(res.message))
}

func (cLibrary) Route(h Handle, coords []float64) (int, Text) {
	res := C.osrm_route(unsafe.Pointer(h), doublePtr(coords), C.size_t(len(coords)/2))
	return int(res.code), Text(unsafe.Pointer(res.message))
}

func (cLibrary) Trip(h Handle, coords []float64) (int, Text) {
	res := C.osrm_trip(unsafe.Pointer(h), doublePtr(coords), C.size_t(len(coords)/2))
	return int(res.code), Text(unsafe.Pointer(res.message))
}

func (cLibrary) CopyText(t Text) string {
	return C.GoString((*C.char)(unsafe.Pointer(t)))
}

func (cLibrary) FreeText(t Text) {
	C.osrm_free_string((*C.char)(unsafe.Pointer(t)))
}

// Go memory passed here holds no Go pointers, so cgo pins it for the call.
func doublePtr(v []float64) *C.double {
	if len(v) == 0 {
		return nil
	}
	return (*C.double)(unsafe.Pointer(&v[0]))
}

func toSizeT(v []int) []C.size_t {
	out := make([]C.size_t, len(v))
	for i, x := range v {
		out[i] = C.size_t(x)
	}
	return out
}

func sizePtr(v []C.size_t) *C.size_t {
	if len(v) == 0 {
		return nil
	}
	return &v[0]
}
