package domain

// Input coordinate snapped to the road network. Location is [lon, lat] and
// Distance is the snapping distance in meters.
type Waypoint struct {
	Hint     string     `json:"hint"`
	Location [2]float64 `json:"location"`
	Name     string     `json:"name"`
	Distance float64    `json:"distance"`
}

// Point converts the snapped location back to a Point.
func (w Waypoint) Point() Point {
	return Point{Longitude: w.Location[0], Latitude: w.Location[1]}
}
