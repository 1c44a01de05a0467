package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/hazmat-dispersion/internal/adapter/http"
	"github.com/couchcryptid/hazmat-dispersion/internal/chemical"
	"github.com/couchcryptid/hazmat-dispersion/internal/dispersion"
	"github.com/couchcryptid/hazmat-dispersion/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

const ammoniaRequest = `{
	"chemical": "ammonia",
	"release_rate": 10,
	"wind_speed": 5,
	"wind_direction": 270,
	"stability_class": "D",
	"temperature": 20,
	"humidity": 60,
	"source_height": 0,
	"location": {"lat": 41.8781, "lng": -87.6298}
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, readyErr error) (*httpadapter.Server, *observability.Metrics) {
	t.Helper()
	table := chemical.Default()
	engine := dispersion.New(table, discardLogger(), dispersion.WithRandSource(fixedRand(0)))
	metrics := observability.NewMetricsForTesting()
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, engine, table, metrics, discardLogger()), metrics
}

func do(t *testing.T, srv *httpadapter.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv, _ := newTestServer(t, fmt.Errorf("not ready yet"))
	rec := do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDispersion(t *testing.T) {
	srv, metrics := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/v1/dispersion", ammoniaRequest)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	zones := decode[dispersion.ZoneData](t, rec)
	assert.Positive(t, zones.Red.Distance)
	assert.Less(t, zones.Red.Distance, zones.Orange.Distance)
	assert.Less(t, zones.Orange.Distance, zones.Yellow.Distance)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("POST /v1/dispersion", "200")), 0)
}

func TestDetailedDispersion(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/v1/dispersion/detailed", ammoniaRequest)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[dispersion.DetailedCalculationResults](t, rec)
	assert.InDelta(t, 600, res.MassReleased, 1e-9, "10 kg/min over the default 60 minutes")
	assert.NotEmpty(t, res.ConcentrationProfile)
	assert.Len(t, res.RecommendedSensorLocations, dispersion.DefaultSensorCount)
}

func TestSensors(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	t.Run("zones computed when omitted", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/v1/sensors", `{"params":`+ammoniaRequest+`,"count":5}`)
		require.Equal(t, http.StatusOK, rec.Code)
		recs := decode[[]dispersion.SensorRecommendation](t, rec)
		require.Len(t, recs, 5)
		assert.Equal(t, 1, recs[0].Priority)
	})

	t.Run("explicit zones and default count", func(t *testing.T) {
		body := `{"params":` + ammoniaRequest + `,"zones":{"red":{"distance":100,"concentration":1},"orange":{"distance":200,"concentration":1},"yellow":{"distance":400,"concentration":1}}}`
		rec := do(t, srv, http.MethodPost, "/v1/sensors", body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]dispersion.SensorRecommendation](t, rec), dispersion.DefaultSensorCount)
	})

	t.Run("oversized count is clamped", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/v1/sensors", `{"params":`+ammoniaRequest+`,"count":2147483647}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]dispersion.SensorRecommendation](t, rec), dispersion.MaxSensorCount)
	})
}

const twoTankRequest = `{
	"params": {"chemical": "chlorine", "wind_speed": 3, "wind_direction": 270, "stability_class": "D", "temperature": 20, "humidity": 50},
	"sources": [
		{"id": "tank-a", "location": {"lat": 29.7355, "lng": -95.263}, "chemical": "", "release_rate": 5},
		{"id": "tank-b", "location": {"lat": 29.7395, "lng": -95.257}, "chemical": "", "release_rate": 2}
	]
}`

func TestMultiSourceDispersion(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/v1/dispersion/multi-source", twoTankRequest)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[dispersion.MultipleSourceResults](t, rec)
	require.Len(t, res.IndividualResults, 2)
	assert.Equal(t, "tank-a", res.IndividualResults[0].Source.ID)
	assert.GreaterOrEqual(t, res.CombinedZones.Yellow.Distance, res.IndividualResults[0].Results.Zones.Yellow.Distance)
}

func TestMultiSourceSensors(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	body := strings.TrimSuffix(strings.TrimSpace(twoTankRequest), "}") + `, "budget": 6}`
	rec := do(t, srv, http.MethodPost, "/v1/sensors/multi-source", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dispersion.SensorRecommendation](t, rec), 6)
}

func TestHealthImpact(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/v1/health-impact", `{"concentration":900,"exposure_minutes":30,"chemical":"Ammonia"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	impact := decode[dispersion.HealthImpact](t, rec)
	assert.Equal(t, dispersion.SeverityFatal, impact.Severity)
	assert.NotEmpty(t, impact.Description)
}

func TestLeakSimulation(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/v1/leak-simulation", ammoniaRequest)

	require.Equal(t, http.StatusOK, rec.Code)
	sim := decode[dispersion.LeakSimulation](t, rec)
	assert.True(t, sim.Detected, "a zero draw always detects")
	assert.Positive(t, sim.Probability)
}

func TestChemicals(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	t.Run("list", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/v1/chemicals", "")
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[struct {
			Chemicals []string `json:"chemicals"`
		}](t, rec)
		assert.Equal(t, chemical.Default().Names(), list.Chemicals)
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/v1/chemicals/Chlorine", "")
		require.Equal(t, http.StatusOK, rec.Code)
		props := decode[chemical.Properties](t, rec)
		want, _ := chemical.Default().Lookup("chlorine")
		assert.Equal(t, want.MolecularWeight, props.MolecularWeight)
	})

	t.Run("unknown chemical", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/v1/chemicals/unobtainium", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, decode[map[string]string](t, rec)["error"], "unobtainium")
	})
}

func TestBadRequests(t *testing.T) {
	srv, metrics := newTestServer(t, nil)

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"malformed JSON", "/v1/dispersion", `{"chemical":`, http.StatusBadRequest},
		{"empty body", "/v1/dispersion/detailed", "", http.StatusBadRequest},
		{"unknown field", "/v1/dispersion", `{"chemical":"ammonia","colour":"green"}`, http.StatusBadRequest},
		{"wrong type", "/v1/health-impact", `{"concentration":"lots"}`, http.StatusBadRequest},
		{"trailing data", "/v1/leak-simulation", `{} {}`, http.StatusBadRequest},
		{"oversized body", "/v1/dispersion", `{"chemical":"` + strings.Repeat("x", 2<<20) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("POST /v1/dispersion", "400")), 0)
}

func TestDegradedInputStillAnswers(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	body, err := json.Marshal(dispersion.ModelParameters{Chemical: "ammonia", WindSpeed: -4, StabilityClass: "Z"})
	require.NoError(t, err)

	rec := do(t, srv, http.MethodPost, "/v1/dispersion", string(bytes.TrimSpace(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Positive(t, decode[dispersion.ZoneData](t, rec).Yellow.Distance)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/v1/dispersion", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
