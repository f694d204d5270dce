package handlers

import (
	"net/http"
	"osrm-route-service/internal/api/dto"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/ports"

	"go.uber.org/zap"
)

// RoutingHandler exposes the engine's table, route and trip services.
type RoutingHandler struct {
	Engine ports.RoutingEngine
	Logger *zap.Logger
}

func (h *RoutingHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.L()
	}
	return h.Logger
}

func (h *RoutingHandler) Table(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.logger(), http.MethodPost) {
		return
	}

	var req dto.TableRequest
	if !decodeBody(w, r, h.logger(), &req) {
		return
	}

	resp, err := h.Engine.Table(domain.NewTableRequest(req.Sources, req.Destinations))
	if err != nil {
		writeEngineError(w, r, h.logger(), err)
		return
	}

	writeJSON(w, r, h.logger(), http.StatusOK, resp)
}

func (h *RoutingHandler) Route(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.logger(), http.MethodPost) {
		return
	}

	var req dto.RouteRequest
	if !decodeBody(w, r, h.logger(), &req) {
		return
	}

	resp, err := h.Engine.Route(domain.NewRouteRequest(req.Points...))
	if err != nil {
		writeEngineError(w, r, h.logger(), err)
		return
	}

	writeJSON(w, r, h.logger(), http.StatusOK, resp)
}

func (h *RoutingHandler) SimpleRoute(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.logger(), http.MethodPost) {
		return
	}

	var req dto.SimpleRouteRequest
	if !decodeBody(w, r, h.logger(), &req) {
		return
	}
	if req.From == nil || req.To == nil {
		writeError(w, r, h.logger(), http.StatusBadRequest, "from and to are required")
		return
	}

	resp, err := h.Engine.SimpleRoute(*req.From, *req.To)
	if err != nil {
		writeEngineError(w, r, h.logger(), err)
		return
	}

	writeJSON(w, r, h.logger(), http.StatusOK, resp)
}

// Trip responds with the engine's full trip document.
func (h *RoutingHandler) Trip(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.logger(), http.MethodPost) {
		return
	}

	var req dto.TripRequest
	if !decodeBody(w, r, h.logger(), &req) {
		return
	}

	resp, err := h.Engine.Trip(domain.NewTripRequest(req.Points...))
	if err != nil {
		writeEngineError(w, r, h.logger(), err)
		return
	}

	if len(resp.Raw) == 0 {
		writeJSON(w, r, h.logger(), http.StatusOK, resp)
		return
	}
	writeJSON(w, r, h.logger(), http.StatusOK, resp.Raw)
}
