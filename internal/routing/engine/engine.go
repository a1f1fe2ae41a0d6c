// internal/routing/engine/engine.go
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	stderrors "routing-engine/internal/common/errors"
	"routing-engine/internal/common/logger"
	"routing-engine/internal/common/metrics"
	"routing-engine/internal/common/observability"
	"routing-engine/internal/models"
	"routing-engine/internal/routing/capability"
	"routing-engine/internal/routing/classifier"
	"routing-engine/internal/routing/costmodel"
	"routing-engine/internal/routing/policy"
	"routing-engine/internal/sinks"
)

// Engine orchestrates one routing decision end to end: classify, assess,
// estimate, decide, record. Classification and capability assessment are
// independent and run concurrently; the decision waits for both.
//
// Degradation policy: optional inputs (learned scorer, headroom signal,
// counter store) falling over narrows the inputs but never fails the call.
// The only per-call fatal condition is a decision matrix miss.
type Engine struct {
	classifier *classifier.Classifier
	assessor   *capability.Assessor
	costModel  *costmodel.Model
	counters   costmodel.Counters
	policy     *policy.Policy
	sinks      *sinks.MultiSink
	obs        *observability.Observability
	tracing    *observability.Tracing
	log        logger.Logger
}

func New(
	cls *classifier.Classifier,
	assessor *capability.Assessor,
	costModel *costmodel.Model,
	counters costmodel.Counters,
	pol *policy.Policy,
	multiSink *sinks.MultiSink,
	obs *observability.Observability,
	tracing *observability.Tracing,
	log logger.Logger,
) *Engine {
	return &Engine{
		classifier: cls,
		assessor:   assessor,
		costModel:  costModel,
		counters:   counters,
		policy:     pol,
		sinks:      multiSink,
		obs:        obs,
		tracing:    tracing,
		log:        log.WithFields(map[string]interface{}{"component": "engine"}),
	}
}

// Route produces the routing record for one request. The record is emitted to
// the sinks after the verdict is final; emission never delays or fails the
// returned decision.
func (e *Engine) Route(ctx context.Context, req models.Request) (models.RoutingRecord, error) {
	start := time.Now()

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	ctx, span := e.tracing.StartSpan(ctx, "engine.Route")
	defer span.End()
	span.SetAttributes(
		attribute.String("routing.request_id", req.RequestID),
		attribute.String("routing.task_type", req.TaskType),
	)

	type capResult struct {
		assessment models.CapabilityAssessment
		warn       *stderrors.StandardError
	}

	sensCh := make(chan models.SensitivityAssessment, 1)
	capCh := make(chan capResult, 1)
	go func() {
		sensCh <- e.classifier.Classify(ctx, req.Content)
	}()
	go func() {
		assessment, warn := e.assessor.Assess(ctx, req.TaskType)
		capCh <- capResult{assessment, warn}
	}()

	sensitivity := <-sensCh
	capRes := <-capCh

	batch := e.accountTask(ctx, req.TaskType)
	cost := e.costModel.Estimate(req.TaskType, batch)

	verdict, err := e.policy.Decide(
		sensitivity.Level,
		capRes.assessment.Complexity,
		capRes.assessment.LocalCapability,
		req.CostPriority,
	)
	if err != nil {
		e.log.Error("routing decision failed", map[string]interface{}{
			"requestId": req.RequestID,
			"taskType":  req.TaskType,
			"error":     err.Error(),
		})
		return models.RoutingRecord{}, err
	}

	verdict.Rationale = append(verdict.Rationale, degradationNotes(sensitivity, capRes.assessment, capRes.warn)...)

	record := models.RoutingRecord{
		RequestID:   req.RequestID,
		TaskType:    req.TaskType,
		Sensitivity: sensitivity,
		Capability:  capRes.assessment,
		Verdict:     verdict,
		Cost:        cost,
		Timestamp:   time.Now().UTC(),
	}

	// Emission is detached from the request context so an impatient caller
	// cannot cancel record delivery after the verdict is already theirs.
	go e.sinks.Record(context.WithoutCancel(ctx), record)

	elapsed := time.Since(start)
	metrics.RoutingDecisionDuration.WithLabelValues(req.TaskType).Observe(elapsed.Seconds())
	if e.obs != nil {
		e.obs.RecordDecision(ctx, string(verdict.Strategy))
		e.obs.RecordDecisionDuration(ctx, elapsed, string(verdict.Strategy))
	}

	e.log.Info("routing decision", map[string]interface{}{
		"requestId":   req.RequestID,
		"taskType":    req.TaskType,
		"strategy":    string(verdict.Strategy),
		"confidence":  verdict.Confidence,
		"sensitivity": string(sensitivity.Level),
		"durationMs":  elapsed.Milliseconds(),
	})

	return record, nil
}

// accountTask records the request in the accounting window and returns the
// snapshot the cost estimate is based on. A failing counter store degrades to
// an empty window rather than failing the decision.
func (e *Engine) accountTask(ctx context.Context, taskType string) models.BatchSnapshot {
	if err := e.counters.Increment(ctx, taskType); err != nil {
		e.log.Warn("batch counter increment failed, estimating from empty window", map[string]interface{}{
			"taskType": taskType,
			"error":    err.Error(),
		})
		return models.BatchSnapshot{CountsByType: map[string]int64{taskType: 1}}
	}

	snapshot, err := e.counters.Snapshot(ctx)
	if err != nil {
		e.log.Warn("batch counter snapshot failed, estimating from empty window", map[string]interface{}{
			"taskType": taskType,
			"error":    err.Error(),
		})
		return models.BatchSnapshot{CountsByType: map[string]int64{taskType: 1}}
	}
	return snapshot
}

// degradationNotes surfaces every degraded input in the verdict rationale so a
// reader of the record can tell a full-fidelity decision from a narrowed one.
func degradationNotes(
	sensitivity models.SensitivityAssessment,
	cap models.CapabilityAssessment,
	warn *stderrors.StandardError,
) []string {
	var notes []string
	if sensitivity.Degraded {
		notes = append(notes, "learned scorer unavailable, sensitivity from rules only")
	}
	if sensitivity.Truncated {
		notes = append(notes, "content truncated for sensitivity scan")
	}
	if cap.Unknown && warn != nil {
		notes = append(notes, "unknown task type, conservative capability default")
	}
	if cap.Downgraded {
		notes = append(notes, "local capability downgraded by headroom signal")
	}
	return notes
}
