package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/hazmat-dispersion/internal/chemical"
	"github.com/couchcryptid/hazmat-dispersion/internal/dispersion"
	"github.com/couchcryptid/hazmat-dispersion/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Calculator is the dispersion engine surface served over HTTP.
// *dispersion.Engine satisfies it.
type Calculator interface {
	CalculateDispersion(p dispersion.ModelParameters) dispersion.ZoneData
	CalculateDetailedDispersion(p dispersion.ModelParameters) dispersion.DetailedCalculationResults
	GenerateSensorRecommendations(p dispersion.ModelParameters, zones dispersion.ZoneData, count int) []dispersion.SensorRecommendation
	CalculateHealthImpact(concentration, exposureMinutes float64, chemicalID string) dispersion.HealthImpact
	SimulateLeakDetection(p dispersion.ModelParameters) dispersion.LeakSimulation
	CalculateMultipleSourceDispersion(m dispersion.MultiSourceParams) dispersion.MultipleSourceResults
	OptimizeSensorPlacementMultipleSources(m dispersion.MultiSourceParams, budget int) []dispersion.SensorRecommendation
}

// Catalog lists the chemicals the engine knows about. *chemical.Table
// satisfies it.
type Catalog interface {
	chemical.Lookup
	Names() []string
}

// Server exposes the dispersion API alongside health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	calc       Calculator
	catalog    Catalog
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /v1 calculation routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, calc Calculator, catalog Catalog, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		calc:    calc,
		catalog: catalog,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.handle(mux, "POST /v1/dispersion", s.handleDispersion)
	s.handle(mux, "POST /v1/dispersion/detailed", s.handleDetailedDispersion)
	s.handle(mux, "POST /v1/dispersion/multi-source", s.handleMultiSourceDispersion)
	s.handle(mux, "POST /v1/sensors", s.handleSensors)
	s.handle(mux, "POST /v1/sensors/multi-source", s.handleMultiSourceSensors)
	s.handle(mux, "POST /v1/health-impact", s.handleHealthImpact)
	s.handle(mux, "POST /v1/leak-simulation", s.handleLeakSimulation)
	s.handle(mux, "GET /v1/chemicals", s.handleListChemicals)
	s.handle(mux, "GET /v1/chemicals/{id}", s.handleGetChemical)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handle registers an API route and counts its responses by status code.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h(rec, r)
		if s.metrics != nil {
			s.metrics.HTTPRequests.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
		}
		s.logger.Debug("request served", "route", pattern, "status", rec.status, "duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
