package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"osrm-route-service/internal/domain"

	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; coordinate lists are small.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, msg string) {
	writeJSON(w, r, logger, status, errorResponse{Error: msg})
}

// writeEngineError maps a taxonomy kind to a status code. Messages of
// server-side failures are not echoed back.
func writeEngineError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	kind := domain.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case domain.ErrInvalidTableArgument:
		status = http.StatusBadRequest
	case domain.ErrAPI:
		status = http.StatusNotFound
	case domain.ErrJSONParse, domain.ErrFFI:
		status = http.StatusBadGateway
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	if status >= 500 {
		logger.Error("engine request failed",
			zap.String("path", r.URL.Path),
			zap.String("kind", domain.KindName(kind)),
			zap.Error(err),
		)
	}

	writeJSON(w, r, logger, status, errorResponse{Error: msg, Kind: domain.KindName(kind)})
}

// allowMethod writes 405 and returns false when r does not use method.
func allowMethod(w http.ResponseWriter, r *http.Request, logger *zap.Logger, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, logger, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeBody strictly decodes exactly one JSON object into v, writing a
// 400 and returning false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, logger, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, r, logger, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
