// internal/routing/costmodel/costmodel.go
package costmodel

import (
	"context"
	"math"

	"routing-engine/internal/common/logger"
	"routing-engine/internal/models"
	"routing-engine/pkg/catalog"
)

type Config struct {
	LocalFixedCost   float64 // amortized per accounting window
	VariableUnitCost float64 // per cloud token
}

// Model translates a routing choice into a cost estimate, amortizing the
// local fixed cost over the current accounting window. It only reads batch
// snapshots; counter ownership stays with the caller.
type Model struct {
	config  *Config
	catalog *catalog.Catalog
	log     logger.Logger
}

func New(cfg *Config, cat *catalog.Catalog, log logger.Logger) *Model {
	return &Model{
		config:  cfg,
		catalog: cat,
		log:     log.WithFields(map[string]interface{}{"component": "costmodel"}),
	}
}

// Estimate compares cloud-only and hybrid spending for the batch the request
// belongs to. Locally-capable membership is the static allow-list; it is a
// coarse batch-level estimate and may disagree with the per-request live
// capability decision.
func (m *Model) Estimate(taskType string, batch models.BatchSnapshot) models.CostEstimate {
	avgTokens := m.catalog.AverageTokens()

	var (
		cloudOnlyCost float64
		nonLocalTasks int64
	)
	for batchType, count := range batch.CountsByType {
		tokens := float64(m.catalog.TokenEstimate(batchType))
		if tokens == 0 {
			tokens = avgTokens // unknown types priced at the catalog mean
		}
		cloudOnlyCost += float64(count) * tokens * m.config.VariableUnitCost

		if !m.catalog.LocallyCapable(batchType) {
			nonLocalTasks += count
		}
	}

	// The request's own marginal cost follows the same unknown-type policy as
	// the batch loop. The window report passes no task type and stays zero.
	requestTokens := float64(m.catalog.TokenEstimate(taskType))
	if requestTokens == 0 && taskType != "" {
		requestTokens = avgTokens
	}

	hybridCost := float64(nonLocalTasks)*avgTokens*m.config.VariableUnitCost + m.config.LocalFixedCost
	estimatedSavings := cloudOnlyCost - hybridCost

	// Zero activity implies zero savings, not an undefined ratio.
	savingsPercentage := 0.0
	if cloudOnlyCost > 0 {
		savingsPercentage = estimatedSavings / cloudOnlyCost
	}

	return models.CostEstimate{
		LocalFixedCost:    m.config.LocalFixedCost,
		VariableUnitCost:  requestTokens * m.config.VariableUnitCost,
		CloudOnlyCost:     cloudOnlyCost,
		HybridCost:        hybridCost,
		EstimatedSavings:  estimatedSavings,
		SavingsPercentage: savingsPercentage,
		BreakEvenPoint:    m.breakEvenPoint(),
	}
}

// breakEvenPoint is the number of locally-capable tasks per window at which
// the local fixed cost is offset by avoided cloud spend. Non-positive
// per-task savings means break-even is never reached; that must be
// representable, so the result is +Inf rather than an error.
func (m *Model) breakEvenPoint() float64 {
	perTaskSavings := m.averageLocalTokens() * m.config.VariableUnitCost
	if perTaskSavings <= 0 {
		return math.Inf(1)
	}
	return m.config.LocalFixedCost / perTaskSavings
}

// averageLocalTokens is the mean token estimate across the locally-capable
// allow-list.
func (m *Model) averageLocalTokens() float64 {
	var (
		sum float64
		n   int
	)
	for _, taskType := range m.catalog.TaskTypes() {
		if !m.catalog.LocallyCapable(taskType) {
			continue
		}
		sum += float64(m.catalog.TokenEstimate(taskType))
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Report snapshots the counters and produces the window-level savings view
// served by the API.
func (m *Model) Report(ctx context.Context, counters Counters) (models.CostEstimate, error) {
	snapshot, err := counters.Snapshot(ctx)
	if err != nil {
		return models.CostEstimate{}, err
	}
	return m.Estimate("", snapshot), nil
}
