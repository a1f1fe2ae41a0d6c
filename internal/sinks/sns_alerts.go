// internal/sinks/sns_alerts.go
package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"routing-engine/internal/common/aws"
	stderrors "routing-engine/internal/common/errors"
	"routing-engine/internal/models"
)

// SNSAlertSink publishes an operational alert when a request carrying a
// credential match passes through the engine. It ignores everything else,
// so alert volume tracks actual secret sightings rather than traffic.
type SNSAlertSink struct {
	client   *aws.SNSClient
	topicARN string
}

func NewSNSAlertSink(client *aws.SNSClient, topicARN string) *SNSAlertSink {
	return &SNSAlertSink{client: client, topicARN: topicARN}
}

func (s *SNSAlertSink) Name() string { return "sns_alerts" }

func (s *SNSAlertSink) Record(ctx context.Context, rec models.RoutingRecord) error {
	if !rec.Sensitivity.HasCategory(models.CategoryCriticalSecret) {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"requestId": rec.RequestID,
		"taskType":  rec.TaskType,
		"strategy":  string(rec.Verdict.Strategy),
		"score":     rec.Sensitivity.Score,
		"timestamp": rec.Timestamp,
	})
	if err != nil {
		return stderrors.NewAlertPublishFailedError(err)
	}

	subject := fmt.Sprintf("credential detected in routed request %s", rec.RequestID)
	if err := s.client.Publish(ctx, s.topicARN, subject, string(payload)); err != nil {
		return stderrors.NewAlertPublishFailedError(err)
	}

	return nil
}
