package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Immutable geographic coordinate. Range validation is left to the engine.
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Return coordinates as [lon, lat], the order the engine expects.
func (p Point) CoordsToList() []float64 { return []float64{p.Longitude, p.Latitude} }

// Key is a stable cache key for the point ("lat,lon" at 6 decimals, ~0.1m).
func (p Point) Key() string {
	return strconv.FormatFloat(p.Latitude, 'f', 6, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', 6, 64)
}

// Flatten interleaves points as [lon0, lat0, lon1, lat1, ...].
func Flatten(points []Point) []float64 {
	out := make([]float64, 0, 2*len(points))
	for _, p := range points {
		out = append(out, p.Longitude, p.Latitude)
	}
	return out
}

// Unflatten is the inverse of Flatten. A trailing odd value is ignored.
func Unflatten(coords []float64) []Point {
	out := make([]Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, Point{Longitude: coords[i], Latitude: coords[i+1]})
	}
	return out
}

// ParsePoint reads "lat,lon", the same layout Key produces.
func ParsePoint(s string) (Point, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, fmt.Errorf("point %q: want \"lat,lon\"", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Point{}, fmt.Errorf("point %q: latitude: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return Point{}, fmt.Errorf("point %q: longitude: %w", s, err)
	}
	return Point{Latitude: lat, Longitude: lon}, nil
}
