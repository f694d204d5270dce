package handlers

import (
	"context"
	"errors"
	"net/http"
	"osrm-route-service/internal/api/dto"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/ports"
	"osrm-route-service/internal/services"
	"time"

	"go.uber.org/zap"
)

const maxVehicles = 10

type PlanHandler struct {
	Provider ports.DistanceProvider
	// Used when the request has no start.
	DefaultStart *domain.Point
	Logger       *zap.Logger
}

func (h *PlanHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.L()
	}
	return h.Logger
}

// Plan orders the requested stops for one or more vehicles.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.logger(), http.MethodPost) {
		return
	}

	var req dto.PlanRequest
	if !decodeBody(w, r, h.logger(), &req) {
		return
	}

	start := req.Start
	if start == nil {
		start = h.DefaultStart
	}
	if start == nil {
		writeError(w, r, h.logger(), http.StatusBadRequest, "start is required")
		return
	}

	vehicles := req.Vehicles
	if vehicles == 0 {
		vehicles = 1
	}
	if vehicles < 1 || vehicles > maxVehicles {
		writeError(w, r, h.logger(), http.StatusBadRequest, "vehicles must be between 1 and 10")
		return
	}

	depart := time.Now().UTC()
	if req.DepartAt != nil {
		depart = *req.DepartAt
	}

	var (
		plans []*domain.VisitPlan
		err   error
	)
	if vehicles == 1 {
		var plan *domain.VisitPlan
		plan, err = services.PlanRoute(r.Context(), depart, *start, req.Stops, h.Provider, req.ReturnToStart)
		plans = []*domain.VisitPlan{plan}
	} else {
		plans, err = services.PlanFleet(r.Context(), services.FleetRequest{
			Start:         *start,
			Stops:         req.Stops,
			Vehicles:      vehicles,
			DepartAt:      depart,
			ReturnToStart: req.ReturnToStart,
		}, h.Provider)
	}
	if err != nil {
		logger := h.logger()
		if domain.KindOf(err) != nil {
			writeEngineError(w, r, logger, err)
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			writeError(w, r, logger, http.StatusGatewayTimeout, "planning timed out")
			return
		}
		logger.Error("plan failed", zap.Error(err))
		writeError(w, r, logger, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListPlanResponse{Plans: make([]dto.PlanResponse, 0, len(plans))}
	for _, p := range plans {
		res.Plans = append(res.Plans, dto.NewPlanResponse(p))
	}

	writeJSON(w, r, h.logger(), http.StatusOK, res)
}
