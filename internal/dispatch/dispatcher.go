// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"

	"routing-engine/internal/models"
)

// Result is what an execution venue returns. The engine records it but never
// interprets it; execution quality is outside the decision core.
type Result struct {
	Output string `json:"output"`
	Venue  string `json:"venue"`
}

// Dispatcher runs a request at one execution venue.
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.Request) (Result, error)
}

// Registry maps a routing strategy to the dispatcher that serves it.
type Registry struct {
	local      Dispatcher
	cloud      Dispatcher
	anonymized Dispatcher
}

func NewRegistry(local, cloud, anonymized Dispatcher) *Registry {
	return &Registry{local: local, cloud: cloud, anonymized: anonymized}
}

// For selects the dispatcher for a strategy. Local-leaning strategies all
// resolve to the local venue; HybridProcessing splits at the venue level,
// which from the engine's point of view starts locally.
func (r *Registry) For(strategy models.Strategy) Dispatcher {
	switch strategy {
	case models.StrategyCloudDirect:
		return r.cloud
	case models.StrategyCloudAnonymized:
		return r.anonymized
	default:
		return r.local
	}
}
