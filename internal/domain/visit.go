package domain

import "time"

// Represents a single stop in a visit plan: the point reached, its index in
// the caller's stop list and the computed arrival time.
type VisitStop struct {
	Index    int
	Point    Point
	ArriveAt time.Time
}

// Represents the ordered visit of a set of stops from a start point by one
// vehicle (numbered from 1). A VisitPlan is produced by the planner and
// carries aggregate distance and duration metrics. It is immutable planning
// data.
type VisitPlan struct {
	Vehicle              int
	Start                Point
	DepartAt             time.Time
	Stops                []VisitStop
	ReturnToStart        bool
	TotalDurationSeconds int
	TotalDistanceMeters  int
}

// Order returns the caller indices of the stops in visit order.
func (p *VisitPlan) Order() []int {
	out := make([]int, 0, len(p.Stops))
	for _, s := range p.Stops {
		out = append(out, s.Index)
	}
	return out
}
