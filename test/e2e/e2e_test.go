// test/e2e/e2e_test.go
package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
	"routing-engine/internal/server"
	"routing-engine/internal/sinks"
	"routing-engine/pkg/catalog"
)

// buildStack wires the full pipeline with in-process infrastructure only.
func buildStack(t *testing.T) (*server.Server, *sinks.StatsSink) {
	t.Helper()
	log := logger.NewTestLogger(t)
	cat := catalog.Default()

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
	multi := sinks.NewMultiSink(log, time.Second, stats, sinks.NewLoggerSink(log))
	tracing, err := observability.NewTracing("routing-engine-e2e", "")
	require.NoError(t, err)

	eng := engine.New(cls, assessor, costModel, counters, pol, multi, nil, tracing, log)

	local := dispatch.NewLocalDispatcher(log)
	cloud := dispatch.NewCloudDispatcher("http://cloud.invalid", "", time.Second, log)
	registry := dispatch.NewRegistry(local, cloud, dispatch.NewAnonymizedDispatcher(cloud, log))

	srv := server.New(config.ServerConfig{
		Address:      "127.0.0.1:0",
		ReadTimeout:  10000,
		WriteTimeout: 30000,
	}, eng, stats, costModel, counters, registry, log)

	return srv, stats
}

func route(t *testing.T, srv *server.Server, body string) models.RoutingRecord {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var record models.RoutingRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	return record
}

func TestFullPipeline(t *testing.T) {
	srv, stats := buildStack(t)

	// 1. Leaked credential in a simple completion: strictly local, no override.
	record := route(t, srv,
		`{"content":"headers['Authorization'] = 'api_key=sk-12345'","taskType":"code_completion","costPriority":0.9}`)
	assert.Equal(t, models.SensitivityHigh, record.Sensitivity.Level)
	assert.Equal(t, models.StrategyLocalOnly, record.Verdict.Strategy)
	assert.Equal(t, 1.0, record.Verdict.Confidence)

	// 2. Clean complex design work with low cost pressure goes to the cloud.
	record = route(t, srv,
		`{"content":"sketch a queueing topology for the ingest path","taskType":"architecture_design","costPriority":0.3}`)
	assert.Equal(t, models.SensitivityLow, record.Sensitivity.Level)
	assert.Equal(t, models.StrategyCloudDirect, record.Verdict.Strategy)

	// 3. Same shape of work under cost pressure, on a task the local venue
	// handles at medium capability, gets pulled back local.
	record = route(t, srv,
		`{"content":"walk through what this function returns","taskType":"code_explanation","costPriority":0.85}`)
	assert.Equal(t, models.StrategyLocalPreferred, record.Verdict.Strategy)
	assert.Equal(t, 0.85, record.Verdict.Confidence)
	assert.Contains(t, strings.Join(record.Verdict.Rationale, "\n"), "cost override")

	// 4. Unknown task type still routes, conservatively.
	record = route(t, srv,
		`{"content":"do the thing","taskType":"quantum_thing","costPriority":0.5}`)
	assert.True(t, record.Capability.Unknown)
	assert.NotEmpty(t, record.Verdict.Strategy)

	// Every decision produced a record.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && stats.Snapshot().TotalRequests < 4 {
		time.Sleep(5 * time.Millisecond)
	}
	snap := stats.Snapshot()
	assert.Equal(t, int64(4), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.OverriddenRequests)

	// The cost report reflects the routed batch.
	req := httptest.NewRequest(http.MethodGet, "/v1/costs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var costs map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &costs))
	assert.Greater(t, costs["cloudOnlyCost"].(float64), 0.0)
}
