// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"routing-engine/internal/models"
)

// Entry describes one task type: its complexity tier, how well the local
// venue handles it, the token volume a typical request consumes, and whether
// the batch-level cost model may count it as locally capable. The allow-list
// flag is deliberately independent of the per-request live assessment; the
// two are allowed to disagree.
type Entry struct {
	Complexity     models.Complexity      `json:"complexity"`
	Capability     models.CapabilityLevel `json:"capability"`
	TokenEstimate  int64                  `json:"tokenEstimate"`
	LocallyCapable bool                   `json:"locallyCapable"`
}

// Catalog is the immutable task-type table loaded at startup.
type Catalog struct {
	entries map[string]Entry
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{entries: map[string]Entry{
		"code_completion":     {models.ComplexitySimple, models.CapabilityHigh, 150, true},
		"syntax_checking":     {models.ComplexitySimple, models.CapabilityHigh, 50, true},
		"simple_refactoring":  {models.ComplexitySimple, models.CapabilityHigh, 200, true},
		"variable_naming":     {models.ComplexitySimple, models.CapabilityHigh, 80, true},
		"comment_generation":  {models.ComplexitySimple, models.CapabilityMedium, 120, true},
		"bug_detection":       {models.ComplexityComplex, models.CapabilityMedium, 300, true},
		"code_explanation":    {models.ComplexityComplex, models.CapabilityMedium, 250, true},
		"complex_generation":  {models.ComplexityComplex, models.CapabilityLow, 800, false},
		"architecture_design": {models.ComplexityComplex, models.CapabilityLow, 1200, false},
		"security_audit":      {models.ComplexityComplex, models.CapabilityLow, 600, false},
	}}
}

// Load reads a catalog from a JSON file, validating it against the embedded
// schema first. An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	if err := ValidateSchema(raw); err != nil {
		return nil, err
	}

	var entries map[string]Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog %s defines no task types", path)
	}

	return &Catalog{entries: entries}, nil
}

// Lookup returns the entry for a task type.
func (c *Catalog) Lookup(taskType string) (Entry, bool) {
	e, ok := c.entries[taskType]
	return e, ok
}

// TaskTypes returns the known task type names.
func (c *Catalog) TaskTypes() []string {
	out := make([]string, 0, len(c.entries))
	for name := range c.entries {
		out = append(out, name)
	}
	return out
}

// TokenEstimate returns the typical token volume for a task type, 0 when
// unknown.
func (c *Catalog) TokenEstimate(taskType string) int64 {
	if e, ok := c.entries[taskType]; ok {
		return e.TokenEstimate
	}
	return 0
}

// LocallyCapable reports the batch-level allow-list membership.
func (c *Catalog) LocallyCapable(taskType string) bool {
	if e, ok := c.entries[taskType]; ok {
		return e.LocallyCapable
	}
	return false
}

// AverageTokens returns the mean token estimate across all task types.
func (c *Catalog) AverageTokens() float64 {
	if len(c.entries) == 0 {
		return 0
	}
	var sum int64
	for _, e := range c.entries {
		sum += e.TokenEstimate
	}
	return float64(sum) / float64(len(c.entries))
}
