package domain

// Many-to-many duration request. Sources and destinations are sent to the
// engine as one coordinate list, sources first.
type TableRequest struct {
	Sources      []Point
	Destinations []Point
}

func NewTableRequest(sources, destinations []Point) TableRequest {
	return TableRequest{Sources: sources, Destinations: destinations}
}

// Validate rejects empty sources or destinations.
func (r TableRequest) Validate() error {
	if len(r.Sources) == 0 || len(r.Destinations) == 0 {
		return InvalidTableArgumentError("table", "sources and destinations must be non-empty")
	}
	return nil
}

// Coordinates returns sources followed by destinations.
func (r TableRequest) Coordinates() []Point {
	out := make([]Point, 0, len(r.Sources)+len(r.Destinations))
	out = append(out, r.Sources...)
	return append(out, r.Destinations...)
}

// SourceIndices returns [0, len(Sources)).
func (r TableRequest) SourceIndices() []int {
	return indexRange(0, len(r.Sources))
}

// DestinationIndices returns [len(Sources), len(Sources)+len(Destinations)).
func (r TableRequest) DestinationIndices() []int {
	return indexRange(len(r.Sources), len(r.Sources)+len(r.Destinations))
}

func indexRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

// Matrix response as rendered by the engine. Durations are indexed
// [source][destination] in seconds; a nil entry means no path was found.
type TableResponse struct {
	Code         string          `json:"code"`
	Durations    [][]*float64    `json:"durations"`
	Sources      []TableLocation `json:"sources"`
	Destinations []TableLocation `json:"destinations"`
}

// Snapped location of a table input.
type TableLocation struct {
	Hint     string     `json:"hint"`
	Location [2]float64 `json:"location"`
	Name     string     `json:"name"`
	Distance float64    `json:"distance"`
}

// Duration returns the duration for (source, destination) and whether a
// path exists. Out-of-range indices report false.
func (r *TableResponse) Duration(source, destination int) (float64, bool) {
	if source < 0 || source >= len(r.Durations) {
		return 0, false
	}
	row := r.Durations[source]
	if destination < 0 || destination >= len(row) || row[destination] == nil {
		return 0, false
	}
	return *row[destination], true
}
