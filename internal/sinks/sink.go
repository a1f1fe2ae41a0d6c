// internal/sinks/sink.go
package sinks

import (
	"context"
	"time"

	stderrors "routing-engine/internal/common/errors"
	"routing-engine/internal/common/logger"
	"routing-engine/internal/common/metrics"
	"routing-engine/internal/models"
)

// Sink receives routing records for aggregation. Emission is fire-and-forget
// from the engine's point of view: a failing sink is logged and counted,
// never surfaced to the routing caller.
type Sink interface {
	Name() string
	Record(ctx context.Context, rec models.RoutingRecord) error
}

// MultiSink fans one record out to every configured sink under a shared
// timeout.
type MultiSink struct {
	sinks   []Sink
	timeout time.Duration
	log     logger.Logger
}

func NewMultiSink(log logger.Logger, timeout time.Duration, sinks ...Sink) *MultiSink {
	return &MultiSink{
		sinks:   sinks,
		timeout: timeout,
		log:     log.WithFields(map[string]interface{}{"component": "sinks"}),
	}
}

// Record delivers to each sink, swallowing failures. Sinks are independent;
// one failing does not stop the others.
func (m *MultiSink) Record(ctx context.Context, rec models.RoutingRecord) {
	if len(m.sinks) == 0 {
		return
	}

	recordCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	for _, sink := range m.sinks {
		if err := sink.Record(recordCtx, rec); err != nil {
			metrics.SinkWriteFailures.WithLabelValues(sink.Name()).Inc()
			failure := stderrors.NewSinkWriteFailedError(sink.Name(), err)
			m.log.Warn(failure.Message, map[string]interface{}{
				"sink":      sink.Name(),
				"requestId": rec.RequestID,
				"details":   failure.Details,
			})
		}
	}
}

// LoggerSink writes each record to the structured log. Always configured;
// it is the floor of observability when no store is reachable.
type LoggerSink struct {
	log logger.Logger
}

func NewLoggerSink(log logger.Logger) *LoggerSink {
	return &LoggerSink{log: log}
}

func (s *LoggerSink) Name() string { return "logger" }

func (s *LoggerSink) Record(ctx context.Context, rec models.RoutingRecord) error {
	s.log.Info("routing record", map[string]interface{}{
		"requestId":   rec.RequestID,
		"taskType":    rec.TaskType,
		"strategy":    string(rec.Verdict.Strategy),
		"confidence":  rec.Verdict.Confidence,
		"sensitivity": string(rec.Sensitivity.Level),
		"capability":  string(rec.Capability.LocalCapability),
		"savings":     rec.Cost.EstimatedSavings,
	})
	return nil
}

// PrometheusSink feeds the decision counters.
type PrometheusSink struct{}

func NewPrometheusSink() *PrometheusSink { return &PrometheusSink{} }

func (s *PrometheusSink) Name() string { return "prometheus" }

func (s *PrometheusSink) Record(ctx context.Context, rec models.RoutingRecord) error {
	metrics.RoutingDecisionsTotal.WithLabelValues(
		string(rec.Verdict.Strategy),
		string(rec.Sensitivity.Level),
	).Inc()
	return nil
}
