package api

import (
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"ch_router/pkg/routing"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router routing.Router
	stats  StatsResponse
}

// NewHandlers creates handlers with the given router.
func NewHandlers(router routing.Router, stats StatsResponse) *Handlers {
	return &Handlers{
		router: router,
		stats:  stats,
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Parse request.
	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Validate coordinates.
	if err := validateCoord(req.Start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if err := validateCoord(req.End); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}

	// Route.
	result, err := h.router.Route(r.Context(),
		routing.LatLng{Lat: req.Start.Lat, Lng: req.Start.Lng},
		routing.LatLng{Lat: req.End.Lat, Lng: req.End.Lng})
	if err != nil {
		switch {
		case errors.Is(err, routing.ErrPointTooFar):
			writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "")
		case errors.Is(err, routing.ErrNoRoute):
			writeError(w, http.StatusUnprocessableEntity, "no_route_found", "")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "")
		}
		return
	}

	geometry := make([]LatLngJSON, len(result.Geometry))
	for i, p := range result.Geometry {
		geometry[i] = LatLngJSON{Lat: p.Lat, Lng: p.Lng}
	}

	writeJSON(w, http.StatusOK, RouteResponse{
		TotalDurationSeconds: result.TotalDurationSeconds,
		TotalDistanceMeters:  result.TotalDistanceMeters,
		Geometry:             geometry,
	})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats)
}

func validateCoord(c LatLngJSON) error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return errors.New("NaN coordinate")
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return errors.New("coordinate out of range")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Field: field})
}
