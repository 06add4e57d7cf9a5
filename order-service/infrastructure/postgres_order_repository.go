package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/models"
	"github.com/pkg/errors"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *sqlx.DB
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

type postgresOrder struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	UserEmail   string    `db:"user_email"`
	TotalAmount int64     `db:"total_amount"`
	Currency    string    `db:"currency"`
	Status      string    `db:"status"`
	WorkflowID  string    `db:"workflow_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	Version     int       `db:"version"`
}

type postgresOrderItem struct {
	OrderID      string `db:"order_id"`
	ProductID    string `db:"product_id"`
	Name         string `db:"name"`
	Quantity     int    `db:"quantity"`
	PriceAtOrder int64  `db:"price_at_order"`
	Currency     string `db:"currency"`
}

// Save inserts a new order together with its immutable item snapshot
func (r *PostgresOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (
			id, user_id, user_email, total_amount, currency, status,
			workflow_id, created_at, updated_at, version
		) VALUES (
			:id, :user_id, :user_email, :total_amount, :currency, :status,
			:workflow_id, :created_at, :updated_at, :version
		)`

	if _, err := tx.NamedExecContext(ctx, query, r.toPostgres(order)); err != nil {
		return errors.Wrap(err, "failed to insert order")
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, quantity, price_at_order, currency)
		VALUES (:order_id, :product_id, :name, :quantity, :price_at_order, :currency)`

	for _, item := range order.Items {
		pgItem := &postgresOrderItem{
			OrderID:      order.ID.String(),
			ProductID:    item.ProductID.String(),
			Name:         item.Name,
			Quantity:     item.Quantity,
			PriceAtOrder: item.PriceAtOrder.Amount,
			Currency:     item.PriceAtOrder.Currency,
		}
		if _, err := tx.NamedExecContext(ctx, itemQuery, pgItem); err != nil {
			return errors.Wrap(err, "failed to insert order item")
		}
	}

	return tx.Commit()
}

// UpdateStatus persists a status change decided by the orchestrator
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, orderID models.ID, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2, version = version + 1
		WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, string(status), time.Now(), orderID.String())
	if err != nil {
		return errors.Wrap(err, "failed to update order status")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read rows affected")
	}
	if affected == 0 {
		return errors.Errorf("order %s not found", orderID)
	}

	return nil
}

// FindByID finds an order and its items by ID
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id models.ID) (*domain.Order, error) {
	return r.findOne(ctx, "SELECT * FROM orders WHERE id = $1", id.String())
}

// FindByWorkflowID resolves an order from its orchestration correlation id
func (r *PostgresOrderRepository) FindByWorkflowID(ctx context.Context, workflowID string) (*domain.Order, error) {
	return r.findOne(ctx, "SELECT * FROM orders WHERE workflow_id = $1", workflowID)
}

func (r *PostgresOrderRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Order, error) {
	var pgOrder postgresOrder
	err := r.db.GetContext(ctx, &pgOrder, query, arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Order not found
		}
		return nil, errors.Wrap(err, "failed to find order")
	}

	var pgItems []postgresOrderItem
	err = r.db.SelectContext(ctx, &pgItems,
		"SELECT order_id, product_id, name, quantity, price_at_order, currency FROM order_items WHERE order_id = $1",
		pgOrder.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load order items")
	}

	return r.toDomain(&pgOrder, pgItems)
}

func (r *PostgresOrderRepository) toPostgres(order *domain.Order) *postgresOrder {
	return &postgresOrder{
		ID:          order.ID.String(),
		UserID:      order.UserID.String(),
		UserEmail:   order.UserEmail,
		TotalAmount: order.TotalAmount.Amount,
		Currency:    order.TotalAmount.Currency,
		Status:      string(order.Status),
		WorkflowID:  order.WorkflowID,
		CreatedAt:   order.Timestamps.CreatedAt,
		UpdatedAt:   order.Timestamps.UpdatedAt,
		Version:     order.Version.Value,
	}
}

func (r *PostgresOrderRepository) toDomain(pgOrder *postgresOrder, pgItems []postgresOrderItem) (*domain.Order, error) {
	id, err := models.NewID(pgOrder.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}

	userID, err := models.NewID(pgOrder.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid user ID")
	}

	items := make([]domain.OrderItem, len(pgItems))
	for i, pgItem := range pgItems {
		productID, err := models.NewID(pgItem.ProductID)
		if err != nil {
			return nil, errors.Wrap(err, "invalid product ID")
		}
		items[i] = domain.OrderItem{
			ProductID:    productID,
			Name:         pgItem.Name,
			Quantity:     pgItem.Quantity,
			PriceAtOrder: models.NewMoney(pgItem.PriceAtOrder, pgItem.Currency),
		}
	}

	return &domain.Order{
		ID:          id,
		UserID:      userID,
		UserEmail:   pgOrder.UserEmail,
		TotalAmount: models.NewMoney(pgOrder.TotalAmount, pgOrder.Currency),
		Status:      domain.OrderStatus(pgOrder.Status),
		Items:       items,
		WorkflowID:  pgOrder.WorkflowID,
		Timestamps: models.Timestamps{
			CreatedAt: pgOrder.CreatedAt,
			UpdatedAt: pgOrder.UpdatedAt,
		},
		Version: models.Version{Value: pgOrder.Version},
	}, nil
}
