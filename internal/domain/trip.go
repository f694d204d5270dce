package domain

import "encoding/json"

// Visit-order optimized route through Points.
type TripRequest struct {
	Points []Point
}

func NewTripRequest(points ...Point) TripRequest {
	return TripRequest{Points: points}
}

func (r TripRequest) Validate() error {
	if len(r.Points) == 0 {
		return InvalidTableArgumentError("trip", "points must be non-empty")
	}
	return nil
}

// TripResponse only maps the status code for now. Raw keeps the whole
// document for callers that need the trips and waypoints.
type TripResponse struct {
	Code string          `json:"code"`
	Raw  json.RawMessage `json:"-"`
}
