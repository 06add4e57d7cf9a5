package main

import (
	"context"
	"fmt"
	"log"

	"github.com/mercato/order-system/order-service/config"
	"github.com/mercato/order-system/order-service/infrastructure"
	"github.com/mercato/order-system/order-service/workflow"
	"github.com/mercato/order-system/shared/telemetry"
	"go.temporal.io/sdk/worker"
)

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Starting %s worker in %s environment\n", cfg.ServiceName, cfg.Env)

	ctx := context.Background()

	_, telShutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName + "-worker",
		ServiceVersion: "1.0.0",
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer telShutdown()

	deps, err := config.BuildDependencies(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build dependencies: %v", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Printf("Error closing dependencies: %v", err)
		}
	}()

	// The worker owns the schema: it is the only process that writes through
	// the repositories.
	if err := infrastructure.EnsureSchema(ctx, deps.DB); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	w := worker.New(deps.TemporalClient, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflow.OrderSaga)
	w.RegisterActivity(deps.Activities)

	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("Worker stopped: %v", err)
	}

	fmt.Printf("%s worker stopped\n", cfg.ServiceName)
}
