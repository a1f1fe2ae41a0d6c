// internal/dispatch/local.go
package dispatch

import (
	"context"

	"routing-engine/internal/common/logger"
	"routing-engine/internal/models"
)

// LocalDispatcher is the in-process placeholder for the local model runner.
// The real runner sits behind the same interface; routing decisions do not
// depend on what it returns.
type LocalDispatcher struct {
	log logger.Logger
}

func NewLocalDispatcher(log logger.Logger) *LocalDispatcher {
	return &LocalDispatcher{
		log: log.WithFields(map[string]interface{}{"venue": "local"}),
	}
}

func (d *LocalDispatcher) Dispatch(ctx context.Context, req models.Request) (Result, error) {
	d.log.Debug("dispatching locally", map[string]interface{}{
		"requestId": req.RequestID,
		"taskType":  req.TaskType,
	})
	return Result{Output: req.Content, Venue: "local"}, nil
}
