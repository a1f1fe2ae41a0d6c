// internal/server/server_test.go
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routing-engine/internal/common/config"
	"routing-engine/internal/common/logger"
	"routing-engine/internal/common/observability"
	"routing-engine/internal/dispatch"
	"routing-engine/internal/models"
	"routing-engine/internal/routing/capability"
	"routing-engine/internal/routing/classifier"
	"routing-engine/internal/routing/costmodel"
	"routing-engine/internal/routing/engine"
	"routing-engine/internal/routing/policy"
	"routing-engine/internal/sinks"
	"routing-engine/pkg/catalog"
)

// ==========================
// Test Helpers
// ==========================

func createTestServer(t *testing.T) (*Server, *sinks.StatsSink) {
	t.Helper()
	return createTestServerWith(t, catalog.Default())
}

func createTestServerWith(t *testing.T, cat *catalog.Catalog) (*Server, *sinks.StatsSink) {
	t.Helper()
	log := logger.NewTestLogger(t)

	cls := classifier.New(&classifier.Config{
		MaxScanBytes:  256 * 1024,
		RuleWeight:    0.7,
		LearnedWeight: 0.3,
		HighCutoff:    8.0,
		MediumCutoff:  3.0,
		ScorerTimeout: 200 * time.Millisecond,
	}, nil, log)
	assessor := capability.New(&capability.Config{
		HeadroomThreshold: 0.3,
		SignalTimeout:     200 * time.Millisecond,
	}, cat, nil, log)
	costModel := costmodel.New(&costmodel.Config{
		LocalFixedCost:   202.67,
		VariableUnitCost: 0.000015,
	}, cat, log)
	counters := costmodel.NewMemoryCounters()

	pol, err := policy.New(0.7)
	require.NoError(t, err)

	stats := sinks.NewStatsSink()
	multi := sinks.NewMultiSink(log, time.Second, stats)
	tracing, err := observability.NewTracing("routing-engine-test", "")
	require.NoError(t, err)

	eng := engine.New(cls, assessor, costModel, counters, pol, multi, nil, tracing, log)

	local := dispatch.NewLocalDispatcher(log)
	cloud := dispatch.NewCloudDispatcher("http://cloud.invalid", "", time.Second, log)
	registry := dispatch.NewRegistry(local, cloud, dispatch.NewAnonymizedDispatcher(cloud, log))

	srv := New(config.ServerConfig{
		Address:      "127.0.0.1:0",
		ReadTimeout:  15000,
		WriteTimeout: 30000,
	}, eng, stats, costModel, counters, registry, log)

	return srv, stats
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// ==========================
// POST /v1/route
// ==========================

func TestHandleRoute_Success(t *testing.T) {
	srv, _ := createTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/route",
		`{"content":"password = \"hunter2\"","taskType":"code_completion","costPriority":0.9}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var record models.RoutingRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, models.SensitivityHigh, record.Sensitivity.Level)
	assert.Equal(t, models.StrategyLocalOnly, record.Verdict.Strategy)
	assert.NotEmpty(t, record.RequestID)
}

func TestHandleRoute_DefaultCostPriority(t *testing.T) {
	srv, _ := createTestServer(t)

	// code_explanation with the 0.5 default must not trip the cost override.
	rec := doJSON(t, srv, http.MethodPost, "/v1/route",
		`{"content":"explain this loop","taskType":"code_explanation"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var record models.RoutingRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, models.StrategyCloudDirect, record.Verdict.Strategy)
	assert.Equal(t, 1.0, record.Verdict.Confidence)
}

func TestHandleRoute_RejectsMalformedBody(t *testing.T) {
	srv, _ := createTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/route", `{"content": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "REQUEST_INVALID")
}

func TestHandleRoute_RejectsInvalidRequest(t *testing.T) {
	srv, _ := createTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing task type", `{"content":"x := 1"}`},
		{"bad task type shape", `{"content":"x","taskType":"Not A Type!"}`},
		{"cost priority above one", `{"content":"x","taskType":"code_completion","costPriority":1.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/v1/route", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

// With no locally-capable task types the break-even is never reached and the
// record carries the +Inf sentinel. The response must still be a complete
// JSON document, with the sentinel as null.
func TestHandleRoute_NeverBreakEvenStillSerializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"code_completion": {"complexity":"simple","capability":"high","tokenEstimate":150,"locallyCapable":false}
	}`), 0o600))
	cat, err := catalog.Load(path)
	require.NoError(t, err)

	srv, _ := createTestServerWith(t, cat)

	rec := doJSON(t, srv, http.MethodPost, "/v1/route",
		`{"content":"x := 1","taskType":"code_completion"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.Bytes())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	cost, ok := resp["cost"].(map[string]interface{})
	require.True(t, ok)
	assert.Nil(t, cost["breakEvenPoint"])
}

// A local-leaning verdict with execute=true runs at the local venue and the
// response carries the execution result.
func TestHandleRoute_ExecuteDispatchesLocally(t *testing.T) {
	srv, _ := createTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/route",
		`{"content":"x := 1","taskType":"syntax_checking","execute":true}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		models.RoutingRecord
		Execution *struct {
			Venue string `json:"venue"`
		} `json:"execution"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StrategyLocalPreferred, resp.Verdict.Strategy)
	require.NotNil(t, resp.Execution)
	assert.Equal(t, "local", resp.Execution.Venue)
}

// ==========================
// GET /v1/stats, /v1/costs, /healthz
// ==========================

func TestHandleStats(t *testing.T) {
	srv, stats := createTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/route",
		`{"content":"x := 1","taskType":"syntax_checking"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Emission is asynchronous; wait for the record to land.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && stats.Snapshot().TotalRequests == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	rec = doJSON(t, srv, http.MethodGet, "/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap sinks.StatsSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(1), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.ByStrategy["local_preferred"])
}

func TestHandleCosts(t *testing.T) {
	srv, _ := createTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/route",
		`{"content":"x := 1","taskType":"syntax_checking"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/v1/costs", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 202.67, body["localFixedCost"])
	assert.NotNil(t, body["breakEvenPoint"])
}

func TestHandleHealth(t *testing.T) {
	srv, _ := createTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := createTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
