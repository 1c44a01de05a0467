package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/couchcryptid/hazmat-dispersion/internal/chemical"
	"github.com/couchcryptid/hazmat-dispersion/internal/dispersion"
)

const maxBodyBytes = 1 << 20

// sensorRequest asks for a single-source sensor plan. Zones are computed
// from Params when omitted.
type sensorRequest struct {
	Params dispersion.ModelParameters `json:"params"`
	Zones  *dispersion.ZoneData       `json:"zones,omitempty"`
	Count  int                        `json:"count,omitempty"`
}

type multiSourceSensorRequest struct {
	dispersion.MultiSourceParams
	Budget int `json:"budget,omitempty"`
}

type healthImpactRequest struct {
	Concentration   float64 `json:"concentration"` // mg/m³
	ExposureMinutes float64 `json:"exposure_minutes"`
	Chemical        string  `json:"chemical"`
}

type chemicalList struct {
	Chemicals []string `json:"chemicals"`
}

func (s *Server) handleDispersion(w http.ResponseWriter, r *http.Request) {
	var p dispersion.ModelParameters
	if !decodeBody(w, r, &p) {
		return
	}
	writeJSON(w, http.StatusOK, s.calc.CalculateDispersion(p))
}

func (s *Server) handleDetailedDispersion(w http.ResponseWriter, r *http.Request) {
	var p dispersion.ModelParameters
	if !decodeBody(w, r, &p) {
		return
	}
	writeJSON(w, http.StatusOK, s.calc.CalculateDetailedDispersion(p))
}

func (s *Server) handleMultiSourceDispersion(w http.ResponseWriter, r *http.Request) {
	var m dispersion.MultiSourceParams
	if !decodeBody(w, r, &m) {
		return
	}
	writeJSON(w, http.StatusOK, s.calc.CalculateMultipleSourceDispersion(m))
}

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	var req sensorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	zones := s.calc.CalculateDispersion(req.Params)
	if req.Zones != nil {
		zones = *req.Zones
	}
	writeJSON(w, http.StatusOK, s.calc.GenerateSensorRecommendations(req.Params, zones, req.Count))
}

func (s *Server) handleMultiSourceSensors(w http.ResponseWriter, r *http.Request) {
	var req multiSourceSensorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.calc.OptimizeSensorPlacementMultipleSources(req.MultiSourceParams, req.Budget))
}

func (s *Server) handleHealthImpact(w http.ResponseWriter, r *http.Request) {
	var req healthImpactRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.calc.CalculateHealthImpact(req.Concentration, req.ExposureMinutes, req.Chemical))
}

func (s *Server) handleLeakSimulation(w http.ResponseWriter, r *http.Request) {
	var p dispersion.ModelParameters
	if !decodeBody(w, r, &p) {
		return
	}
	writeJSON(w, http.StatusOK, s.calc.SimulateLeakDetection(p))
}

func (s *Server) handleListChemicals(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, chemicalList{Chemicals: s.catalog.Names()})
}

func (s *Server) handleGetChemical(w http.ResponseWriter, r *http.Request) {
	id := chemical.Normalize(r.PathValue("id"))
	props, ok := s.catalog.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown chemical %q", id))
		return
	}
	writeJSON(w, http.StatusOK, props)
}

// decodeBody reads a single JSON object into v, answering 400 or 413 and
// returning false when the body is unusable.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body is empty")
		default:
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		}
		return false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, "request body must hold a single JSON object")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
