package config

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/mercato/order-system/order-service/activities"
	"github.com/mercato/order-system/order-service/application"
	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/order-service/handlers"
	"github.com/mercato/order-system/order-service/infrastructure"
	"github.com/mercato/order-system/shared/events"
	sharedinfra "github.com/mercato/order-system/shared/infrastructure"
	"go.temporal.io/sdk/client"
)

type Dependencies struct {
	// Database
	DB *sqlx.DB

	// Temporal
	TemporalClient client.Client

	// Repositories
	OrderRepository     *infrastructure.PostgresOrderRepository
	PaymentRepository   *infrastructure.PostgresPaymentRepository
	InventoryRepository *infrastructure.PostgresInventoryRepository
	ProductRepository   *infrastructure.PostgresProductRepository

	// Infrastructure
	PaymentGateway domain.PaymentGateway
	EventStore     *sharedinfra.PostgresEventStore
	EventPublisher events.Publisher

	// Saga
	Activities  *activities.Activities
	SagaStarter *infrastructure.TemporalSagaStarter

	// Use Cases
	PlaceOrder *application.PlaceOrder
	GetOrder   *application.GetOrder
	GetStock   *application.GetStock

	// HTTP Handlers
	OrderHandlers *handlers.OrderHandlers

	snsPublisher *sharedinfra.SNSPublisherAdapter
}

// BuildDependencies wires the order service object graph
func BuildDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	db, err := sqlx.Connect("postgres", config.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.DB = db

	temporalClient, err := client.Dial(client.Options{
		HostPort:  config.Temporal.HostPort,
		Namespace: config.Temporal.Namespace,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to temporal: %w", err)
	}
	deps.TemporalClient = temporalClient

	snsPublisher, err := sharedinfra.NewSNSPublisherAdapter(ctx, config.AWS.SNSTopicArn)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create SNS publisher: %w", err)
	}
	deps.snsPublisher = snsPublisher

	// Every published event also lands in the event_stream audit table.
	deps.EventStore = sharedinfra.NewPostgresEventStore(db)
	deps.EventPublisher = sharedinfra.NewStoreAndForwardPublisher(deps.EventStore, snsPublisher)

	deps.OrderRepository = infrastructure.NewPostgresOrderRepository(db)
	deps.PaymentRepository = infrastructure.NewPostgresPaymentRepository(db)
	deps.InventoryRepository = infrastructure.NewPostgresInventoryRepository(db)
	deps.ProductRepository = infrastructure.NewPostgresProductRepository(db)
	deps.PaymentGateway = infrastructure.NewSimulatedPaymentGateway(config.Gateway.DeclineOver, config.Gateway.FailRefunds)

	deps.Activities = activities.NewActivities(
		deps.OrderRepository,
		deps.PaymentRepository,
		deps.InventoryRepository,
		deps.PaymentGateway,
		deps.EventPublisher,
	)
	deps.SagaStarter = infrastructure.NewTemporalSagaStarter(temporalClient, config.Temporal.TaskQueue)

	deps.PlaceOrder = application.NewPlaceOrder(deps.ProductRepository, deps.SagaStarter)
	deps.GetOrder = application.NewGetOrder(deps.OrderRepository)
	deps.GetStock = application.NewGetStock(deps.InventoryRepository)

	deps.OrderHandlers = handlers.NewOrderHandlers(deps.PlaceOrder, deps.GetOrder, deps.GetStock)

	return deps, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.TemporalClient != nil {
		d.TemporalClient.Close()
	}

	if d.snsPublisher != nil {
		if err := d.snsPublisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
