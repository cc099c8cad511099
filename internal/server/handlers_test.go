package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boilerroom/sidestep/pkg/config"
)

// fixedProbe always reports the same dependency state.
type fixedProbe struct{ healthy bool }

func (p fixedProbe) Healthy(float64) bool { return p.healthy }

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Slow.Delay = 10 * time.Millisecond
	if mutate != nil {
		mutate(cfg)
	}
	logger := slog.New(slog.DiscardHandler)
	return New(cfg, logger, nil)
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.App.Name = "Sidestep Error Demo"
		c.App.Version = "1.2.3"
		c.App.Environment = "test"
	})

	rec := doRequest(t, s, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, "Sidestep Error Demo", body["app"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, "test", body["environment"])
}

func TestIndex_UnknownPathIs404(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestReady(t *testing.T) {
	s := newTestServer(t, nil)

	s.SetProbe(fixedProbe{healthy: true})
	rec := doRequest(t, s, http.MethodGet, "/ready")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])

	s.SetProbe(fixedProbe{healthy: false})
	rec = doRequest(t, s, http.MethodGet, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", decodeBody(t, rec)["status"])
}

func TestReady_ZeroFailureRateNeverFails(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Readiness.FailureRate = 0
	})

	for range 50 {
		rec := doRequest(t, s, http.MethodGet, "/ready")
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestReady_FullFailureRateAlwaysFails(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Readiness.FailureRate = 1
	})

	for range 50 {
		rec := doRequest(t, s, http.MethodGet, "/ready")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	}
}

func TestChaos_Disabled(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodGet, "/chaos")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Chaos mode disabled", decodeBody(t, rec)["message"])
}

func TestChaos_EnabledCrashIsContained(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Chaos.Enabled = true
	})

	rec := doRequest(t, s, http.MethodGet, "/chaos")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeBody(t, rec)["error"])
}

func TestSlow(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Slow.Delay = 20 * time.Millisecond
	})

	start := time.Now()
	rec := doRequest(t, s, http.MethodGet, "/slow")
	elapsed := time.Since(start)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Slow response simulated", decodeBody(t, rec)["message"])
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
}

func TestSlow_CanceledContextWritesNothing(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Slow.Delay = time.Minute
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/slow", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	doRequest(t, s, http.MethodGet, "/health")

	rec := doRequest(t, s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sidestep_http_requests_total")
}

func TestApplyConfig_HotReloadChaos(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodGet, "/chaos")
	require.Equal(t, http.StatusOK, rec.Code)

	next := config.Default()
	next.Chaos.Enabled = true
	s.ApplyConfig(next)

	rec = doRequest(t, s, http.MethodGet, "/chaos")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
