// pkg/catalog/catalog_test.go
package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routing-engine/internal/models"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_KnownEntries(t *testing.T) {
	cat := Default()

	entry, ok := cat.Lookup("code_completion")
	require.True(t, ok)
	assert.Equal(t, models.ComplexitySimple, entry.Complexity)
	assert.Equal(t, models.CapabilityHigh, entry.Capability)
	assert.True(t, entry.LocallyCapable)

	entry, ok = cat.Lookup("architecture_design")
	require.True(t, ok)
	assert.Equal(t, models.ComplexityComplex, entry.Complexity)
	assert.Equal(t, models.CapabilityLow, entry.Capability)
	assert.False(t, entry.LocallyCapable)

	_, ok = cat.Lookup("quantum_thing")
	assert.False(t, ok)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	assert.Len(t, cat.TaskTypes(), 10)
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeCatalog(t, `{
		"custom_task": {"complexity": "simple", "capability": "high", "tokenEstimate": 100, "locallyCapable": true}
	}`)

	cat, err := Load(path)
	require.NoError(t, err)

	entry, ok := cat.Lookup("custom_task")
	require.True(t, ok)
	assert.Equal(t, int64(100), entry.TokenEstimate)
	assert.True(t, cat.LocallyCapable("custom_task"))
}

func TestLoad_RejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad complexity value", `{"task_a": {"complexity": "medium", "capability": "high", "tokenEstimate": 10}}`},
		{"missing token estimate", `{"task_a": {"complexity": "simple", "capability": "high"}}`},
		{"zero token estimate", `{"task_a": {"complexity": "simple", "capability": "high", "tokenEstimate": 0}}`},
		{"bad task name shape", `{"Task A": {"complexity": "simple", "capability": "high", "tokenEstimate": 10}}`},
		{"empty catalog", `{}`},
		{"unknown field", `{"task_a": {"complexity": "simple", "capability": "high", "tokenEstimate": 10, "color": "red"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCatalog(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestTokenEstimate_UnknownIsZero(t *testing.T) {
	assert.Equal(t, int64(0), Default().TokenEstimate("quantum_thing"))
}

func TestAverageTokens(t *testing.T) {
	cat := Default()
	// (150+50+200+80+120+300+250+800+1200+600) / 10
	assert.InDelta(t, 375.0, cat.AverageTokens(), 1e-9)
}
