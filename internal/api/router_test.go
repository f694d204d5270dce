package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"osrm-route-service/internal/adapters/distance"
	"osrm-route-service/internal/api"
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/engine"
	"osrm-route-service/internal/native/nativetest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	hub = domain.Point{Latitude: 48.8566, Longitude: 2.3522}
	a   = domain.Point{Latitude: 48.8600, Longitude: 2.3400}
	b   = domain.Point{Latitude: 48.8800, Longitude: 2.3700}
)

func newServer(t *testing.T, lib *nativetest.Library) *httptest.Server {
	t.Helper()

	eng, err := engine.New("/data/france.osrm", domain.AlgorithmMLD, engine.WithLibrary(lib))
	require.NoError(t, err)

	provider := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: hub, To: a, Meters: 1000, Seconds: 300},
		{From: hub, To: b, Meters: 2000, Seconds: 600},
		{From: a, To: b, Meters: 800, Seconds: 240},
		{From: b, To: a, Meters: 800, Seconds: 240},
		{From: a, To: hub, Meters: 1000, Seconds: 300},
		{From: b, To: hub, Meters: 2000, Seconds: 600},
	})

	srv := httptest.NewServer(api.NewRouter(api.RouterDeps{
		Engine:   eng,
		Provider: provider,
		Logger:   zaptest.NewLogger(t),
	}))
	t.Cleanup(func() {
		srv.Close()
		_ = eng.Close()
	})
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp, out
}

func TestHealth(t *testing.T) {
	srv := newServer(t, nativetest.New())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp2, _ := post(t, srv, "/health", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
	assert.Equal(t, http.MethodGet, resp2.Header.Get("Allow"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newServer(t, nativetest.New())

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestTable(t *testing.T) {
	srv := newServer(t, nativetest.New())

	resp, body := post(t, srv, "/table",
		`{"sources":[{"lat":48.8566,"lon":2.3522}],"destinations":[{"lat":43.2965,"lon":5.3698},{"lat":45.764,"lon":4.8357}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	assert.Equal(t, "Ok", body["code"])
	durations := body["durations"].([]any)
	require.Len(t, durations, 1)
	assert.Len(t, durations[0].([]any), 2)
}

func TestTableRequestErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind string
	}{
		{"empty sources", `{"sources":[],"destinations":[{"lat":1,"lon":2}]}`, "invalid_table_argument"},
		{"unknown field", `{"sources":[],"destinations":[],"extra":1}`, ""},
		{"two objects", `{"sources":[],"destinations":[]}{}`, ""},
		{"not json", `nope`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := nativetest.New()
			srv := newServer(t, lib)

			resp, body := post(t, srv, "/table", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, body["kind"])
			}
			assert.Zero(t, lib.CallCount("table"))
		})
	}
}

func TestRouteEngineFailureIsBadGateway(t *testing.T) {
	lib := nativetest.New()
	lib.RouteFunc = func([]float64) nativetest.Response { return nativetest.Fail("Impossible route between points") }
	srv := newServer(t, lib)

	resp, body := post(t, srv, "/route", `{"points":[{"lat":48.8566,"lon":2.3522},{"lat":43.7102,"lon":7.262}]}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "ffi_error", body["kind"])
	assert.Contains(t, body["error"], "Impossible route")
}

func TestRouteMalformedPayloadIsBadGateway(t *testing.T) {
	lib := nativetest.New()
	lib.RouteFunc = func([]float64) nativetest.Response { return nativetest.OK(`{"routes":`) }
	srv := newServer(t, lib)

	resp, body := post(t, srv, "/route", `{"points":[{"lat":48.8566,"lon":2.3522},{"lat":43.7102,"lon":7.262}]}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "json_parse", body["kind"])
}

func TestSimpleRoute(t *testing.T) {
	srv := newServer(t, nativetest.New())

	resp, body := post(t, srv, "/route/simple", `{"from":{"lat":48.8566,"lon":2.3522},"to":{"lat":43.2965,"lon":5.3698}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, 1000.0, body["distance"])
	assert.Equal(t, 60.0, body["durations"])

	resp, _ = post(t, srv, "/route/simple", `{"from":{"lat":48.8566,"lon":2.3522}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSimpleRouteNoRouteIsNotFound(t *testing.T) {
	lib := nativetest.New()
	lib.RouteFunc = func([]float64) nativetest.Response { return nativetest.JSON(nativetest.NoRoute()) }
	srv := newServer(t, lib)

	resp, body := post(t, srv, "/route/simple", `{"from":{"lat":48.8566,"lon":2.3522},"to":{"lat":43.2965,"lon":5.3698}}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "api_error", body["kind"])
}

func TestTripReturnsWholeDocument(t *testing.T) {
	srv := newServer(t, nativetest.New())

	resp, body := post(t, srv, "/trip", `{"points":[{"lat":48.8566,"lon":2.3522},{"lat":45.764,"lon":4.8357}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Ok", body["code"])
	assert.Contains(t, body, "trips")
	assert.Contains(t, body, "waypoints")
}

func TestPlans(t *testing.T) {
	srv := newServer(t, nativetest.New())

	resp, body := post(t, srv, "/plans", `{
		"start":{"lat":48.8566,"lon":2.3522},
		"stops":[{"lat":48.88,"lon":2.37},{"lat":48.86,"lon":2.34}],
		"depart_at":"2026-01-01T08:00:00Z",
		"return_to_start":true
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	plans := body["plans"].([]any)
	require.Len(t, plans, 1)
	plan := plans[0].(map[string]any)
	assert.Equal(t, 1.0, plan["vehicle"])
	assert.Equal(t, 1140.0, plan["total_duration_seconds"])

	stops := plan["stops"].([]any)
	require.Len(t, stops, 2)
	assert.Equal(t, 1.0, stops[0].(map[string]any)["index"])
	assert.Equal(t, "2026-01-01T08:05:00Z", stops[0].(map[string]any)["arrive_at"])
}

func TestPlansFleet(t *testing.T) {
	srv := newServer(t, nativetest.New())

	resp, body := post(t, srv, "/plans", `{
		"start":{"lat":48.8566,"lon":2.3522},
		"stops":[{"lat":48.88,"lon":2.37},{"lat":48.86,"lon":2.34}],
		"vehicles":2
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Len(t, body["plans"].([]any), 2)
}

func TestPlansValidation(t *testing.T) {
	srv := newServer(t, nativetest.New())

	resp, _ := post(t, srv, "/plans", `{"stops":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, srv, "/plans", `{"start":{"lat":1,"lon":2},"vehicles":11}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlansProviderFailure(t *testing.T) {
	srv := newServer(t, nativetest.New())

	resp, body := post(t, srv, "/plans", `{"start":{"lat":1,"lon":2},"stops":[{"lat":3,"lon":4}]}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal server error", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t, nativetest.New())

	_, _ = post(t, srv, "/route/simple", `{"from":{"lat":48.8566,"lon":2.3522},"to":{"lat":43.2965,"lon":5.3698}}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "osrm_http_requests_total")
	assert.Contains(t, string(raw), "osrm_native_calls_total")
}
