package infrastructure

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/pkg/errors"
)

// SQSSubscriberAdapter owns the SQS client lifecycle around an event
// subscriber bound to a single queue and handler.
type SQSSubscriberAdapter struct {
	subscriber *SQSEventSubscriber
}

// NewSQSSubscriberAdapter creates a new SQS subscriber adapter. AWS config is
// loaded from the environment (works with LocalStack endpoints).
func NewSQSSubscriberAdapter(ctx context.Context, queueURL string, handler EventHandler, opts ...SQSSubscriberOption) (*SQSSubscriberAdapter, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return &SQSSubscriberAdapter{
		subscriber: NewSQSEventSubscriber(sqs.NewFromConfig(cfg), queueURL, handler, opts...),
	}, nil
}

// Start starts consuming messages
func (a *SQSSubscriberAdapter) Start(ctx context.Context) error {
	return a.subscriber.Start(ctx)
}

// Stop stops consuming messages
func (a *SQSSubscriberAdapter) Stop(ctx context.Context) error {
	return a.subscriber.Stop(ctx)
}
