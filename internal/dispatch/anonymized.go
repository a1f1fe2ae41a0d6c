// internal/dispatch/anonymized.go
package dispatch

import (
	"context"

	"routing-engine/internal/common/logger"
	"routing-engine/internal/models"
	"routing-engine/internal/routing/anonymizer"
)

// AnonymizedDispatcher scrubs the content before handing it to the cloud
// venue and restores the placeholders in the response. The mapping never
// leaves the process.
type AnonymizedDispatcher struct {
	cloud Dispatcher
	log   logger.Logger
}

func NewAnonymizedDispatcher(cloud Dispatcher, log logger.Logger) *AnonymizedDispatcher {
	return &AnonymizedDispatcher{
		cloud: cloud,
		log:   log.WithFields(map[string]interface{}{"venue": "cloud_anonymized"}),
	}
}

func (d *AnonymizedDispatcher) Dispatch(ctx context.Context, req models.Request) (Result, error) {
	scrubbed := anonymizer.Anonymize(req.Content)
	d.log.Debug("anonymized content for cloud dispatch", map[string]interface{}{
		"requestId": req.RequestID,
		"replaced":  scrubbed.Replaced,
	})

	cloudReq := req
	cloudReq.Content = scrubbed.Content

	res, err := d.cloud.Dispatch(ctx, cloudReq)
	if err != nil {
		return Result{}, err
	}

	res.Output = anonymizer.Restore(res.Output, scrubbed.Mapping)
	res.Venue = "cloud_anonymized"
	return res, nil
}
