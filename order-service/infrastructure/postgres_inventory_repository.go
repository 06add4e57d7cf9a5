package infrastructure

import (
	"context"
	"database/sql"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/models"
	"github.com/pkg/errors"
)

// PostgresInventoryRepository implements the atomic inventory ledger.
//
// Correctness under concurrent demand relies entirely on the conditional
// compare-and-decrement predicate (quantity >= requested) executed by the
// database; no stock value read beforehand is ever trusted. A reservation
// row per (order, product) makes a committed decrement safe to re-run, and
// its primary key aborts a concurrent duplicate before both can commit a
// decrement for the same order.
type PostgresInventoryRepository struct {
	db *sqlx.DB
}

// NewPostgresInventoryRepository creates a new PostgresInventoryRepository
func NewPostgresInventoryRepository(db *sqlx.DB) *PostgresInventoryRepository {
	return &PostgresInventoryRepository{db: db}
}

// DecreaseStock atomically decrements stock for every item, all-or-nothing.
// Items with quantity <= 0 are skipped. If any item cannot be satisfied the
// transaction rolls back and an *InsufficientStockError names the product.
func (r *PostgresInventoryRepository) DecreaseStock(ctx context.Context, orderID models.ID, items []domain.ItemQuantity) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	reserved, err := r.alreadyReserved(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if reserved {
		// Duplicate invocation after a committed decrement: nothing to do.
		return nil
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE inventory_items
			 SET quantity = quantity - $1
			 WHERE product_id = $2 AND quantity >= $1`,
			item.Quantity, item.ProductID.String())
		if err != nil {
			return errors.Wrap(err, "failed to decrement stock")
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "failed to read rows affected")
		}
		if affected == 0 {
			// Shortage or unknown product; report what is actually there.
			available := -1
			err := tx.GetContext(ctx, &available,
				"SELECT quantity FROM inventory_items WHERE product_id = $1",
				item.ProductID.String())
			if err != nil && err != sql.ErrNoRows {
				return errors.Wrap(err, "failed to read available stock")
			}
			return &domain.InsufficientStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: available,
			}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO inventory_reservations (order_id, product_id, quantity, status)
			 VALUES ($1, $2, $3, 'RESERVED')`,
			orderID.String(), item.ProductID.String(), item.Quantity)
		if err != nil {
			if isUniqueViolation(err) {
				// A concurrent duplicate of this order committed first. Its
				// decrement stands; ours rolls back with the transaction.
				return nil
			}
			return errors.Wrap(err, "failed to record reservation")
		}
	}

	return tx.Commit()
}

// IncreaseStock restores stock taken by a committed decrement. It is gated
// on the order holding a RESERVED reservation: with none, either nothing was
// ever decremented or a previous restore already released it, and in both
// cases the call is a no-op. Increments themselves are best effort: a
// missing product row is logged and skipped so one anomalous product never
// blocks restoring the rest.
func (r *PostgresInventoryRepository) IncreaseStock(ctx context.Context, orderID models.ID, items []domain.ItemQuantity) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	reserved, err := r.alreadyReserved(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if !reserved {
		return nil
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE inventory_items SET quantity = quantity + $1 WHERE product_id = $2`,
			item.Quantity, item.ProductID.String())
		if err != nil {
			return errors.Wrap(err, "failed to increment stock")
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "failed to read rows affected")
		}
		if affected == 0 {
			log.Printf("restore inventory: product %s not found, skipping", item.ProductID)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE inventory_reservations SET status = 'RELEASED'
		 WHERE order_id = $1 AND status = 'RESERVED'`,
		orderID.String())
	if err != nil {
		return errors.Wrap(err, "failed to release reservations")
	}

	return tx.Commit()
}

// GetStockQuantity reads the current stock level of one product
func (r *PostgresInventoryRepository) GetStockQuantity(ctx context.Context, productID models.ID) (int, error) {
	var quantity int
	err := r.db.GetContext(ctx, &quantity,
		"SELECT quantity FROM inventory_items WHERE product_id = $1",
		productID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, domain.ErrProductNotFound
		}
		return 0, errors.Wrap(err, "failed to read stock quantity")
	}
	return quantity, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}

func (r *PostgresInventoryRepository) alreadyReserved(ctx context.Context, tx *sqlx.Tx, orderID models.ID) (bool, error) {
	var n int
	err := tx.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM inventory_reservations WHERE order_id = $1 AND status = 'RESERVED'",
		orderID.String())
	if err != nil {
		return false, errors.Wrap(err, "failed to check reservations")
	}
	return n > 0, nil
}
