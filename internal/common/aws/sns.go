// internal/common/aws/sns.go
// Package aws wraps the AWS clients used for operational alerting.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	stderrors "routing-engine/internal/common/errors"
)

// SNSClient publishes sensitivity alerts to an SNS topic. Callers pass plain
// strings so no SDK types leak into the sinks.
type SNSClient struct {
	client *sns.Client
}

// NewSNSClient resolves the default AWS credential chain for the region.
func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, stderrors.NewConfigurationInvalidError("aws credential chain: " + err.Error())
	}
	return &SNSClient{client: sns.NewFromConfig(cfg)}, nil
}

// Publish sends one message to the topic.
func (s *SNSClient) Publish(ctx context.Context, topicARN, subject, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &topicARN,
		Subject:  &subject,
		Message:  &message,
	})
	return err
}
