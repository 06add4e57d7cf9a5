package workflow

import (
	"time"

	"github.com/mercato/order-system/order-service/domain"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// forwardActivityOptions governs the forward steps. Transient failures are
// retried with backoff; the two definitive business failures short-circuit
// straight to compensation.
func forwardActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
			NonRetryableErrorTypes: []string{
				domain.ErrTypePaymentDeclined,
				domain.ErrTypeInsufficientStock,
			},
		},
	}
}

// compensationActivityOptions governs compensation. Compensation moves money
// and stock back, so it gets more attempts and a longer timeout than the
// forward path before the saga escalates.
func compensationActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	}
}
