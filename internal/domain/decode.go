package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotObject = errors.New("expected a JSON object")

// requireFields fails unless data is a JSON object carrying every name with
// a non-null value.
func requireFields(data []byte, names ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errNotObject
	}
	for _, name := range names {
		v, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return fmt.Errorf("missing field %q", name)
		}
	}
	return nil
}

func (r *TableResponse) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "code", "durations", "sources", "destinations"); err != nil {
		return fmt.Errorf("table response: %w", err)
	}
	type plain TableResponse
	return json.Unmarshal(data, (*plain)(r))
}

func (l *TableLocation) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "hint", "location", "name", "distance"); err != nil {
		return fmt.Errorf("table location: %w", err)
	}
	type plain TableLocation
	return json.Unmarshal(data, (*plain)(l))
}

func (r *RouteResponse) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "code", "routes", "waypoints"); err != nil {
		return fmt.Errorf("route response: %w", err)
	}
	type plain RouteResponse
	return json.Unmarshal(data, (*plain)(r))
}

// Distance is optional on Route; older engines omit it.
func (r *Route) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "legs", "weight_name", "geometry", "weight", "duration"); err != nil {
		return fmt.Errorf("route: %w", err)
	}
	type plain Route
	return json.Unmarshal(data, (*plain)(r))
}

func (l *Leg) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "steps", "weight", "summary", "duration", "distance"); err != nil {
		return fmt.Errorf("leg: %w", err)
	}
	type plain Leg
	return json.Unmarshal(data, (*plain)(l))
}

func (w *Waypoint) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "hint", "location", "name", "distance"); err != nil {
		return fmt.Errorf("waypoint: %w", err)
	}
	type plain Waypoint
	return json.Unmarshal(data, (*plain)(w))
}

// Only the status code is mapped; the rest of the document stays raw.
func (r *TripResponse) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "code"); err != nil {
		return fmt.Errorf("trip response: %w", err)
	}
	type plain TripResponse
	return json.Unmarshal(data, (*plain)(r))
}
