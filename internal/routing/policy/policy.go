// internal/routing/policy/policy.go
package policy

import (
	"fmt"

	stderrors "routing-engine/internal/common/errors"
	"routing-engine/internal/common/metrics"
	"routing-engine/internal/models"
)

// Policy is the decision matrix plus its post-lookup overrides. Sensitivity
// strictly gates the outer decision; cost and performance only adjust within
// the cloud-eligible region. No override may move a High-sensitivity request
// to unrestricted cloud.
type Policy struct {
	costPriorityThreshold float64

	// matrix[sensitivity][complexity][capability], indexed by enum rank.
	matrix [3][2][3]models.Strategy
}

// New builds the policy and verifies the matrix is total over all 18
// combinations. A hole is a configuration bug and refuses to start.
func New(costPriorityThreshold float64) (*Policy, error) {
	p := &Policy{costPriorityThreshold: costPriorityThreshold}
	p.populateMatrix()

	if err := p.verifyTotal(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Policy) populateMatrix() {
	set := func(s models.SensitivityLevel, c models.Complexity, cap models.CapabilityLevel, strategy models.Strategy) {
		p.matrix[s.Rank()][c.Rank()][cap.Rank()] = strategy
	}

	// High sensitivity never leaves the local venue.
	set(models.SensitivityHigh, models.ComplexitySimple, models.CapabilityHigh, models.StrategyLocalOnly)
	set(models.SensitivityHigh, models.ComplexitySimple, models.CapabilityMedium, models.StrategyLocalOnly)
	set(models.SensitivityHigh, models.ComplexitySimple, models.CapabilityLow, models.StrategyLocalForced)
	set(models.SensitivityHigh, models.ComplexityComplex, models.CapabilityHigh, models.StrategyLocalOnly)
	set(models.SensitivityHigh, models.ComplexityComplex, models.CapabilityMedium, models.StrategyLocalForced)
	set(models.SensitivityHigh, models.ComplexityComplex, models.CapabilityLow, models.StrategyLocalForced)

	// Medium sensitivity may reach the cloud only anonymized.
	set(models.SensitivityMedium, models.ComplexitySimple, models.CapabilityHigh, models.StrategyLocalPreferred)
	set(models.SensitivityMedium, models.ComplexitySimple, models.CapabilityMedium, models.StrategyLocalPreferred)
	set(models.SensitivityMedium, models.ComplexitySimple, models.CapabilityLow, models.StrategyCloudAnonymized)
	set(models.SensitivityMedium, models.ComplexityComplex, models.CapabilityHigh, models.StrategyLocalPreferred)
	set(models.SensitivityMedium, models.ComplexityComplex, models.CapabilityMedium, models.StrategyCloudAnonymized)
	set(models.SensitivityMedium, models.ComplexityComplex, models.CapabilityLow, models.StrategyCloudAnonymized)

	// Low sensitivity routes wherever execution quality is best.
	set(models.SensitivityLow, models.ComplexitySimple, models.CapabilityHigh, models.StrategyLocalPreferred)
	set(models.SensitivityLow, models.ComplexitySimple, models.CapabilityMedium, models.StrategyLocalPreferred)
	set(models.SensitivityLow, models.ComplexitySimple, models.CapabilityLow, models.StrategyCloudDirect)
	set(models.SensitivityLow, models.ComplexityComplex, models.CapabilityHigh, models.StrategyHybrid)
	set(models.SensitivityLow, models.ComplexityComplex, models.CapabilityMedium, models.StrategyCloudDirect)
	set(models.SensitivityLow, models.ComplexityComplex, models.CapabilityLow, models.StrategyCloudDirect)
}

// verifyTotal checks every cell is populated.
func (p *Policy) verifyTotal() error {
	for s := 0; s < 3; s++ {
		for c := 0; c < 2; c++ {
			for cap := 0; cap < 3; cap++ {
				if p.matrix[s][c][cap] == "" {
					return stderrors.NewConfigurationInvalidError(
						fmt.Sprintf("decision matrix hole at sensitivity=%d complexity=%d capability=%d", s, c, cap))
				}
			}
		}
	}
	return nil
}

// Decide resolves the base strategy and applies the overrides in fixed
// order. A missing matrix entry is an invariant violation and fails loudly;
// a strategy is never guessed for a sensitive request.
func (p *Policy) Decide(
	sensitivity models.SensitivityLevel,
	complexity models.Complexity,
	capability models.CapabilityLevel,
	costPriority float64,
) (models.RoutingVerdict, error) {
	base := p.matrix[sensitivity.Rank()][complexity.Rank()][capability.Rank()]
	if base == "" {
		return models.RoutingVerdict{}, stderrors.NewInvariantViolationError(
			fmt.Sprintf("no entry for sensitivity=%s complexity=%s capability=%s", sensitivity, complexity, capability))
	}

	strategy := base
	rationale := []string{
		fmt.Sprintf("base lookup (%s/%s/%s) -> %s", sensitivity, complexity, capability, base),
	}
	overrides := 0

	// 1. Cost override: a strong cost preference pulls cloud-leaning verdicts
	// back to local when the local venue can plausibly serve them. It never
	// touches already-local bases.
	if costPriority > p.costPriorityThreshold &&
		(strategy == models.StrategyCloudDirect || strategy == models.StrategyCloudAnonymized) &&
		(capability == models.CapabilityHigh || capability == models.CapabilityMedium) {
		strategy = models.StrategyLocalPreferred
		overrides++
		rationale = append(rationale, fmt.Sprintf("cost override (costPriority=%.2f) -> %s", costPriority, strategy))
		metrics.RoutingOverridesTotal.WithLabelValues("cost").Inc()
	}

	// 2. Performance override: simple work on a highly capable local venue
	// stays local. It may re-override the cost override's result, but the
	// sensitivity gate is untouchable: LocalOnly and LocalForced verdicts are
	// never relaxed to LocalPreferred.
	if complexity == models.ComplexitySimple && capability == models.CapabilityHigh &&
		strategy != models.StrategyLocalPreferred &&
		strategy != models.StrategyLocalOnly && strategy != models.StrategyLocalForced {
		strategy = models.StrategyLocalPreferred
		overrides++
		rationale = append(rationale, fmt.Sprintf("performance override (simple/high) -> %s", strategy))
		metrics.RoutingOverridesTotal.WithLabelValues("performance").Inc()
	}

	return models.RoutingVerdict{
		Strategy:   strategy,
		Confidence: confidenceFor(overrides),
		Rationale:  rationale,
	}, nil
}

// confidenceFor is a heuristic score, not a probability: each override is a
// deviation from the conservative base policy.
func confidenceFor(overrides int) float64 {
	switch overrides {
	case 0:
		return 1.0
	case 1:
		return 0.85
	default:
		return 0.7
	}
}
