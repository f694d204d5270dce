package dto

import "osrm-route-service/internal/domain"

type TableRequest struct {
	Sources      []domain.Point `json:"sources"`
	Destinations []domain.Point `json:"destinations"`
}

type RouteRequest struct {
	Points []domain.Point `json:"points"`
}

type SimpleRouteRequest struct {
	From *domain.Point `json:"from"`
	To   *domain.Point `json:"to"`
}

type TripRequest struct {
	Points []domain.Point `json:"points"`
}
