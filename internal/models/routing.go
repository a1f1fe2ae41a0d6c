// internal/models/routing.go
package models

import (
	"encoding/json"
	"math"
	"time"
)

// ==========================
// 1. Enumerations
// ==========================

// SensitivityLevel classifies how restricted a request's content is for
// processing location. Levels are ordered; High is strictly most restrictive.
type SensitivityLevel string

const (
	SensitivityLow    SensitivityLevel = "low"
	SensitivityMedium SensitivityLevel = "medium"
	SensitivityHigh   SensitivityLevel = "high"
)

// Rank returns the ordinal of the level (Low=0, Medium=1, High=2).
func (s SensitivityLevel) Rank() int {
	switch s {
	case SensitivityMedium:
		return 1
	case SensitivityHigh:
		return 2
	default:
		return 0
	}
}

// Complexity is the coarse task-type complexity tier.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityComplex Complexity = "complex"
)

// Rank returns the ordinal of the tier (Simple=0, Complex=1).
func (c Complexity) Rank() int {
	if c == ComplexityComplex {
		return 1
	}
	return 0
}

// CapabilityLevel describes how well the local execution venue services a
// given task type.
type CapabilityLevel string

const (
	CapabilityLow    CapabilityLevel = "low"
	CapabilityMedium CapabilityLevel = "medium"
	CapabilityHigh   CapabilityLevel = "high"
)

// Rank returns the ordinal of the level (Low=0, Medium=1, High=2).
func (c CapabilityLevel) Rank() int {
	switch c {
	case CapabilityMedium:
		return 1
	case CapabilityHigh:
		return 2
	default:
		return 0
	}
}

// Downgrade returns the level one tier lower, bottoming out at Low.
func (c CapabilityLevel) Downgrade() CapabilityLevel {
	switch c {
	case CapabilityHigh:
		return CapabilityMedium
	default:
		return CapabilityLow
	}
}

// Strategy is the routing verdict for a request.
type Strategy string

const (
	StrategyLocalOnly       Strategy = "local_only"
	StrategyLocalForced     Strategy = "local_forced"
	StrategyLocalPreferred  Strategy = "local_preferred"
	StrategyCloudAnonymized Strategy = "cloud_anonymized"
	StrategyCloudDirect     Strategy = "cloud_direct"
	StrategyHybrid          Strategy = "hybrid_processing"
)

// IsLocal reports whether the strategy keeps execution on the local venue.
func (s Strategy) IsLocal() bool {
	switch s {
	case StrategyLocalOnly, StrategyLocalForced, StrategyLocalPreferred:
		return true
	}
	return false
}

// Restrictiveness orders strategies from least to most cloud-exposed. Used to
// check that higher sensitivity never resolves to a more cloud-leaning
// strategy than lower sensitivity for the same other inputs.
func (s Strategy) Restrictiveness() int {
	switch s {
	case StrategyLocalOnly:
		return 5
	case StrategyLocalForced:
		return 4
	case StrategyLocalPreferred:
		return 3
	case StrategyHybrid:
		return 2
	case StrategyCloudAnonymized:
		return 1
	default: // CloudDirect
		return 0
	}
}

// PatternCategory is the closed set of sensitivity pattern groups.
type PatternCategory string

const (
	CategoryCriticalSecret PatternCategory = "critical_secret"
	CategoryPersonalData   PatternCategory = "personal_data"
	CategoryBusinessLogic  PatternCategory = "business_logic"
)

// ==========================
// 2. Request / Assessments
// ==========================

// Request is one immutable unit of work to be routed.
type Request struct {
	RequestID    string  `json:"requestId"`
	Content      string  `json:"content"`
	TaskType     string  `json:"taskType"`
	CostPriority float64 `json:"costPriority"` // [0,1], default 0.5
}

// CategoryMatch reports how many patterns of one category fired.
type CategoryMatch struct {
	Category PatternCategory `json:"category"`
	Matches  int             `json:"matches"`
	Severity float64         `json:"severity"`
}

// SensitivityAssessment is the classifier output for one request.
type SensitivityAssessment struct {
	Level             SensitivityLevel `json:"level"`
	Score             float64          `json:"score"` // blended, clipped to [0,10]
	RuleScore         float64          `json:"ruleScore"`
	LearnedScore      float64          `json:"learnedScore"`
	MatchedCategories []CategoryMatch  `json:"matchedCategories,omitempty"`
	Truncated         bool             `json:"truncated,omitempty"`
	Degraded          bool             `json:"degraded,omitempty"` // learned scorer unavailable or timed out
}

// HasCategory reports whether the given category produced at least one match.
func (a SensitivityAssessment) HasCategory(cat PatternCategory) bool {
	for _, m := range a.MatchedCategories {
		if m.Category == cat && m.Matches > 0 {
			return true
		}
	}
	return false
}

// CapabilityAssessment is the assessor output for one request.
type CapabilityAssessment struct {
	TaskType        string          `json:"taskType"`
	Complexity      Complexity      `json:"complexity"`
	LocalCapability CapabilityLevel `json:"localCapabilityLevel"`
	Downgraded      bool            `json:"downgraded,omitempty"` // live headroom pushed below baseline
	Unknown         bool            `json:"unknown,omitempty"`    // task type absent from the catalog
}

// ==========================
// 3. Cost accounting
// ==========================

// BatchSnapshot is the per-task-type count of work processed in the current
// accounting window. The cost model only reads it; persistence belongs to
// the counter owner.
type BatchSnapshot struct {
	CountsByType map[string]int64 `json:"countsByType"`
	WindowStart  time.Time        `json:"windowStart"`
}

// Total returns the number of tasks in the snapshot.
func (b BatchSnapshot) Total() int64 {
	var n int64
	for _, c := range b.CountsByType {
		n += c
	}
	return n
}

// CostEstimate compares cloud-only and hybrid spending for the batch a
// request belongs to. EstimatedSavings may be negative before the local
// fixed cost is amortized; that is an expected pre-break-even state.
type CostEstimate struct {
	LocalFixedCost    float64 `json:"localFixedCost"`
	VariableUnitCost  float64 `json:"variableUnitCost"` // marginal cloud cost for this request's task type
	CloudOnlyCost     float64 `json:"cloudOnlyCost"`
	HybridCost        float64 `json:"hybridCost"`
	EstimatedSavings  float64 `json:"estimatedSavings"`
	SavingsPercentage float64 `json:"savingsPercentage"`
	BreakEvenPoint    float64 `json:"breakEvenPoint"` // +Inf when per-task savings <= 0
}

// costEstimateJSON is the wire shape of CostEstimate. encoding/json rejects
// non-finite floats, so the never-reached break-even state travels as null.
type costEstimateJSON struct {
	LocalFixedCost    float64  `json:"localFixedCost"`
	VariableUnitCost  float64  `json:"variableUnitCost"`
	CloudOnlyCost     float64  `json:"cloudOnlyCost"`
	HybridCost        float64  `json:"hybridCost"`
	EstimatedSavings  float64  `json:"estimatedSavings"`
	SavingsPercentage float64  `json:"savingsPercentage"`
	BreakEvenPoint    *float64 `json:"breakEvenPoint"`
}

func (c CostEstimate) MarshalJSON() ([]byte, error) {
	out := costEstimateJSON{
		LocalFixedCost:    c.LocalFixedCost,
		VariableUnitCost:  c.VariableUnitCost,
		CloudOnlyCost:     c.CloudOnlyCost,
		HybridCost:        c.HybridCost,
		EstimatedSavings:  c.EstimatedSavings,
		SavingsPercentage: c.SavingsPercentage,
	}
	if !math.IsInf(c.BreakEvenPoint, 0) && !math.IsNaN(c.BreakEvenPoint) {
		bep := c.BreakEvenPoint
		out.BreakEvenPoint = &bep
	}
	return json.Marshal(out)
}

// UnmarshalJSON maps a null break-even back to +Inf so a round trip through
// storage preserves the sentinel.
func (c *CostEstimate) UnmarshalJSON(data []byte) error {
	var in costEstimateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = CostEstimate{
		LocalFixedCost:    in.LocalFixedCost,
		VariableUnitCost:  in.VariableUnitCost,
		CloudOnlyCost:     in.CloudOnlyCost,
		HybridCost:        in.HybridCost,
		EstimatedSavings:  in.EstimatedSavings,
		SavingsPercentage: in.SavingsPercentage,
		BreakEvenPoint:    math.Inf(1),
	}
	if in.BreakEvenPoint != nil {
		c.BreakEvenPoint = *in.BreakEvenPoint
	}
	return nil
}

// ==========================
// 4. Verdict / Record
// ==========================

// RoutingVerdict is the final decision for one request.
type RoutingVerdict struct {
	Strategy   Strategy `json:"strategy"`
	Confidence float64  `json:"confidence"` // heuristic, not a probability
	Rationale  []string `json:"rationale"`
}

// RoutingRecord is the append-only observability artifact emitted once per
// request. Immutable after creation; retention belongs to the metrics sink.
type RoutingRecord struct {
	RequestID   string                `json:"requestId"`
	TaskType    string                `json:"taskType"`
	Sensitivity SensitivityAssessment `json:"sensitivity"`
	Capability  CapabilityAssessment  `json:"capability"`
	Verdict     RoutingVerdict        `json:"verdict"`
	Cost        CostEstimate          `json:"cost"`
	Timestamp   time.Time             `json:"timestamp"`
}
