// internal/routing/capability/assessor.go
package capability

import (
	"context"
	"time"

	stderrors "routing-engine/internal/common/errors"
	"routing-engine/internal/common/logger"
	"routing-engine/internal/common/metrics"
	"routing-engine/internal/models"
	"routing-engine/pkg/catalog"
)

// HeadroomSignal is the optional live resource signal. Headroom returns a
// value in [0,1]; 0 means the local venue has no spare capacity.
type HeadroomSignal interface {
	Headroom(ctx context.Context, taskType string) (float64, error)
}

type Config struct {
	HeadroomThreshold float64
	SignalTimeout     time.Duration
}

// Assessor estimates how well the local venue can handle a task type.
// Deterministic given the same catalog and signal inputs; safe for
// concurrent use.
type Assessor struct {
	config  *Config
	catalog *catalog.Catalog
	signal  HeadroomSignal // nil when no live signal is wired
	log     logger.Logger
}

func New(cfg *Config, cat *catalog.Catalog, signal HeadroomSignal, log logger.Logger) *Assessor {
	return &Assessor{
		config:  cfg,
		catalog: cat,
		signal:  signal,
		log:     log.WithFields(map[string]interface{}{"component": "capability"}),
	}
}

// Assess looks up the static baseline for the task type and applies at most a
// one-tier downgrade from the live headroom signal. The baseline is never
// upgraded. An unknown task type yields the conservative {Complex, Low}
// default and a non-fatal warning so routing can proceed.
func (a *Assessor) Assess(ctx context.Context, taskType string) (models.CapabilityAssessment, *stderrors.StandardError) {
	entry, ok := a.catalog.Lookup(taskType)
	if !ok {
		metrics.RoutingUnknownTaskTypes.Inc()
		warn := stderrors.NewUnknownTaskTypeWarning(taskType)
		a.log.Warn(warn.Message, map[string]interface{}{
			"taskType": taskType,
		})
		return models.CapabilityAssessment{
			TaskType:        taskType,
			Complexity:      models.ComplexityComplex,
			LocalCapability: models.CapabilityLow,
			Unknown:         true,
		}, warn
	}

	assessment := models.CapabilityAssessment{
		TaskType:        taskType,
		Complexity:      entry.Complexity,
		LocalCapability: entry.Capability,
	}

	if a.signal != nil {
		if headroom, ok := a.liveHeadroom(ctx, taskType); ok && headroom < a.config.HeadroomThreshold {
			assessment.LocalCapability = entry.Capability.Downgrade()
			assessment.Downgraded = assessment.LocalCapability != entry.Capability
		}
	}

	return assessment, nil
}

// liveHeadroom queries the signal under its timeout. Failure or timeout falls
// back to the static baseline rather than holding up a routing decision.
func (a *Assessor) liveHeadroom(ctx context.Context, taskType string) (float64, bool) {
	signalCtx, cancel := context.WithTimeout(ctx, a.config.SignalTimeout)
	defer cancel()

	type result struct {
		headroom float64
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		h, err := a.signal.Headroom(signalCtx, taskType)
		ch <- result{h, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			metrics.RoutingDependencyTimeouts.WithLabelValues("headroom_signal").Inc()
			a.log.Warn("headroom signal failed, using static baseline", map[string]interface{}{
				"taskType": taskType,
				"error":    res.err.Error(),
			})
			return 0, false
		}
		return res.headroom, true
	case <-signalCtx.Done():
		metrics.RoutingDependencyTimeouts.WithLabelValues("headroom_signal").Inc()
		a.log.Warn("headroom signal timed out, using static baseline", map[string]interface{}{
			"taskType": taskType,
			"timeout":  a.config.SignalTimeout.String(),
		})
		return 0, false
	}
}
