package dto

import (
	"osrm-route-service/internal/domain"
	"time"
)

type PlanRequest struct {
	Start         *domain.Point  `json:"start"`
	Stops         []domain.Point `json:"stops"`
	DepartAt      *time.Time     `json:"depart_at"`
	ReturnToStart bool           `json:"return_to_start"`
	Vehicles      int            `json:"vehicles"`
}

type PlanStopResponse struct {
	Index    int          `json:"index"`
	Point    domain.Point `json:"point"`
	ArriveAt time.Time    `json:"arrive_at"`
}

type PlanResponse struct {
	Vehicle              int                `json:"vehicle"`
	DepartAt             time.Time          `json:"depart_at"`
	ReturnToStart        bool               `json:"return_to_start"`
	TotalDistanceMeters  int                `json:"total_distance_meters"`
	TotalDurationSeconds int                `json:"total_duration_seconds"`
	Stops                []PlanStopResponse `json:"stops"`
}

type ListPlanResponse struct {
	Plans []PlanResponse `json:"plans"`
}

// NewPlanResponse renders a VisitPlan.
func NewPlanResponse(p *domain.VisitPlan) PlanResponse {
	stops := make([]PlanStopResponse, 0, len(p.Stops))
	for _, s := range p.Stops {
		stops = append(stops, PlanStopResponse{
			Index:    s.Index,
			Point:    s.Point,
			ArriveAt: s.ArriveAt,
		})
	}

	return PlanResponse{
		Vehicle:              p.Vehicle,
		DepartAt:             p.DepartAt,
		ReturnToStart:        p.ReturnToStart,
		TotalDistanceMeters:  p.TotalDistanceMeters,
		TotalDurationSeconds: p.TotalDurationSeconds,
		Stops:                stops,
	}
}
