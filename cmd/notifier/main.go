package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mercato/order-system/order-service/config"
	"github.com/mercato/order-system/order-service/handlers"
	"github.com/mercato/order-system/order-service/infrastructure"
	sharedinfra "github.com/mercato/order-system/shared/infrastructure"
)

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Starting %s notifier in %s environment\n", cfg.ServiceName, cfg.Env)

	ctx := context.Background()

	handler := handlers.NewNotificationEventHandlers(infrastructure.NewLogEmailSender())

	subscriber, err := sharedinfra.NewSQSSubscriberAdapter(ctx, cfg.AWS.SQSQueueURL, handler)
	if err != nil {
		log.Fatalf("Failed to create SQS subscriber: %v", err)
	}

	if err := subscriber.Start(ctx); err != nil {
		log.Fatalf("Failed to start SQS subscriber: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Printf("Shutting down %s notifier...\n", cfg.ServiceName)

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := subscriber.Stop(stopCtx); err != nil {
		log.Printf("Error stopping subscriber: %v", err)
	}

	fmt.Printf("%s notifier stopped\n", cfg.ServiceName)
}
