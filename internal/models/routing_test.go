// internal/models/routing_test.go
package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The never-reached break-even state is +Inf in memory, which encoding/json
// cannot represent. It must travel as null and come back as +Inf.
func TestCostEstimate_NeverBreakEvenSerializesAsNull(t *testing.T) {
	estimate := CostEstimate{
		LocalFixedCost:   202.67,
		VariableUnitCost: 0.00225,
		BreakEvenPoint:   math.Inf(1),
	}

	data, err := json.Marshal(estimate)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Nil(t, doc["breakEvenPoint"])
	assert.Equal(t, 202.67, doc["localFixedCost"])

	var back CostEstimate
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, math.IsInf(back.BreakEvenPoint, 1))
	assert.Equal(t, estimate.VariableUnitCost, back.VariableUnitCost)
}

func TestCostEstimate_FiniteBreakEvenRoundTrips(t *testing.T) {
	estimate := CostEstimate{BreakEvenPoint: 90074.0}

	data, err := json.Marshal(estimate)
	require.NoError(t, err)

	var back CostEstimate
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 90074.0, back.BreakEvenPoint)
}

// A record embedding the estimate must marshal cleanly too; this is the shape
// the API and the persistence sinks serialize.
func TestRoutingRecord_MarshalsWithInfiniteBreakEven(t *testing.T) {
	rec := RoutingRecord{
		RequestID: "req-001",
		TaskType:  "code_completion",
		Cost:      CostEstimate{BreakEvenPoint: math.Inf(1)},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}
