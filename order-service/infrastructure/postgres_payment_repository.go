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

// PostgresPaymentRepository implements PaymentTransactionRepository using PostgreSQL
type PostgresPaymentRepository struct {
	db *sqlx.DB
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository
func NewPostgresPaymentRepository(db *sqlx.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

type postgresPaymentTransaction struct {
	ID                    string    `db:"id"`
	OrderID               string    `db:"order_id"`
	ExternalTransactionID *string   `db:"external_transaction_id"`
	Amount                int64     `db:"amount"`
	Currency              string    `db:"currency"`
	Status                string    `db:"status"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

// Save inserts a new charge-attempt row
func (r *PostgresPaymentRepository) Save(ctx context.Context, transaction *domain.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (
			id, order_id, external_transaction_id, amount, currency, status,
			created_at, updated_at
		) VALUES (
			:id, :order_id, :external_transaction_id, :amount, :currency, :status,
			:created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, r.toPostgres(transaction))
	if err != nil {
		return errors.Wrap(err, "failed to insert payment transaction")
	}

	return nil
}

// Update persists a status transition of an existing transaction
func (r *PostgresPaymentRepository) Update(ctx context.Context, transaction *domain.PaymentTransaction) error {
	query := `
		UPDATE payment_transactions
		SET status = :status, external_transaction_id = :external_transaction_id, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, r.toPostgres(transaction))
	if err != nil {
		return errors.Wrap(err, "failed to update payment transaction")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read rows affected")
	}
	if affected == 0 {
		return errors.Errorf("payment transaction %s not found", transaction.ID)
	}

	return nil
}

// FindByID finds a payment transaction by ID
func (r *PostgresPaymentRepository) FindByID(ctx context.Context, id models.ID) (*domain.PaymentTransaction, error) {
	query := `
		SELECT id, order_id, external_transaction_id, amount, currency, status,
			   created_at, updated_at
		FROM payment_transactions
		WHERE id = $1`

	var pgTx postgresPaymentTransaction
	err := r.db.GetContext(ctx, &pgTx, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Transaction not found
		}
		return nil, errors.Wrap(err, "failed to find payment transaction")
	}

	return r.toDomain(&pgTx)
}

func (r *PostgresPaymentRepository) toPostgres(transaction *domain.PaymentTransaction) *postgresPaymentTransaction {
	return &postgresPaymentTransaction{
		ID:                    transaction.ID.String(),
		OrderID:               transaction.OrderID.String(),
		ExternalTransactionID: transaction.ExternalTransactionID,
		Amount:                transaction.Amount.Amount,
		Currency:              transaction.Amount.Currency,
		Status:                string(transaction.Status),
		CreatedAt:             transaction.Timestamps.CreatedAt,
		UpdatedAt:             transaction.Timestamps.UpdatedAt,
	}
}

func (r *PostgresPaymentRepository) toDomain(pgTx *postgresPaymentTransaction) (*domain.PaymentTransaction, error) {
	id, err := models.NewID(pgTx.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid transaction ID")
	}

	orderID, err := models.NewID(pgTx.OrderID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}

	return &domain.PaymentTransaction{
		ID:                    id,
		OrderID:               orderID,
		ExternalTransactionID: pgTx.ExternalTransactionID,
		Amount:                models.NewMoney(pgTx.Amount, pgTx.Currency),
		Status:                domain.PaymentTransactionStatus(pgTx.Status),
		Timestamps: models.Timestamps{
			CreatedAt: pgTx.CreatedAt,
			UpdatedAt: pgTx.UpdatedAt,
		},
	}, nil
}
