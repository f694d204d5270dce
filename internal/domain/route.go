package domain

type RouteRequest struct {
	Points []Point
}

func NewRouteRequest(points ...Point) RouteRequest {
	return RouteRequest{Points: points}
}

// Validate rejects an empty point list. A single point is forwarded and
// rejected by the engine itself.
func (r RouteRequest) Validate() error {
	if len(r.Points) == 0 {
		return InvalidTableArgumentError("route", "points must be non-empty")
	}
	return nil
}

type RouteResponse struct {
	Code      string     `json:"code"`
	Routes    []Route    `json:"routes"`
	Waypoints []Waypoint `json:"waypoints"`
}

// Route through all requested points. Geometry is an encoded polyline and
// is passed through untouched.
type Route struct {
	Legs       []Leg   `json:"legs"`
	WeightName string  `json:"weight_name"`
	Geometry   string  `json:"geometry"`
	Weight     float64 `json:"weight"`
	Duration   float64 `json:"duration"`
	Distance   float64 `json:"distance"`
}

// Route between two consecutive waypoints.
type Leg struct {
	Steps    []Step  `json:"steps"`
	Weight   float64 `json:"weight"`
	Summary  string  `json:"summary"`
	Duration float64 `json:"duration"`
	Distance float64 `json:"distance"`
}

// Steps are not requested from the engine, so the list is always empty.
type Step struct{}

// Projection of a RouteResponse for the single A to B case.
type SimpleRouteResponse struct {
	Code      string  `json:"code"`
	Distance  float64 `json:"distance"`
	Durations float64 `json:"durations"`
}
