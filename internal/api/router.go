package api

import (
	"net/http"
	"osrm-route-service/internal/api/handlers"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/platform/obs"
	"osrm-route-service/internal/ports"

	"go.uber.org/zap"
)

type RouterDeps struct {
	Engine   ports.RoutingEngine
	Provider ports.DistanceProvider
	// Optional default start for /plans.
	DefaultStart *domain.Point
	Logger       *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	routing := &handlers.RoutingHandler{Engine: deps.Engine, Logger: logger}
	planHandler := &handlers.PlanHandler{
		Provider:     deps.Provider,
		DefaultStart: deps.DefaultStart,
		Logger:       logger,
	}

	mux.HandleFunc("/health", handlers.Health(logger))
	mux.HandleFunc("/table", routing.Table)
	mux.HandleFunc("/route", routing.Route)
	mux.HandleFunc("/route/simple", routing.SimpleRoute)
	mux.HandleFunc("/trip", routing.Trip)
	mux.HandleFunc("/plans", planHandler.Plan)
	mux.Handle("/metrics", obs.Handler())

	return loggingMiddleware(logger, mux)
}
