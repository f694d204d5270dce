package domain

import (
	"fmt"
	"strings"
)

// Algorithm selects the engine's precomputation strategy. It must match the
// data prepared under the engine's base path.
type Algorithm string

const (
	// Multi-level Dijkstra (osrm-partition + osrm-customize).
	AlgorithmMLD Algorithm = "MLD"
	// Contraction hierarchies (osrm-contract).
	AlgorithmCH Algorithm = "CH"
)

func (a Algorithm) String() string { return string(a) }

// ParseAlgorithm accepts "mld" or "ch" in any case.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToUpper(strings.TrimSpace(s))) {
	case AlgorithmMLD:
		return AlgorithmMLD, nil
	case AlgorithmCH:
		return AlgorithmCH, nil
	default:
		return "", fmt.Errorf("parse algorithm: unknown algorithm %q (want MLD or CH)", s)
	}
}
