package ports

import "osrm-route-service/internal/domain"

// Port: the routing engine as seen by adapters and handlers.
// *engine.Engine satisfies it.
type RoutingEngine interface {
	Table(req domain.TableRequest) (*domain.TableResponse, error)
	Route(req domain.RouteRequest) (*domain.RouteResponse, error)
	Trip(req domain.TripRequest) (*domain.TripResponse, error)
	SimpleRoute(from, to domain.Point) (*domain.SimpleRouteResponse, error)
}
