package infrastructure

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercato/order-system/order-service/workflow"
	"github.com/pkg/errors"
	"go.temporal.io/sdk/client"
)

// TemporalSagaStarter starts order sagas on the durable-execution engine.
// It is the only place the API process touches Temporal.
type TemporalSagaStarter struct {
	client    client.Client
	taskQueue string
}

// NewTemporalSagaStarter creates a TemporalSagaStarter
func NewTemporalSagaStarter(c client.Client, taskQueue string) *TemporalSagaStarter {
	return &TemporalSagaStarter{client: c, taskQueue: taskQueue}
}

// StartOrderSaga launches one saga run and returns the workflow id, the
// opaque correlation id handed back to the caller.
func (s *TemporalSagaStarter) StartOrderSaga(ctx context.Context, input workflow.OrderSagaInput) (string, error) {
	workflowID := fmt.Sprintf("order-saga-%s", uuid.New().String())

	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: s.taskQueue,
	}

	if _, err := s.client.ExecuteWorkflow(ctx, options, workflow.OrderSaga, input); err != nil {
		return "", errors.Wrap(err, "failed to start order saga")
	}

	return workflowID, nil
}
