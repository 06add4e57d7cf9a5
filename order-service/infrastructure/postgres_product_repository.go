package infrastructure

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/models"
	"github.com/pkg/errors"
)

// PostgresProductRepository implements ProductRepository using PostgreSQL
type PostgresProductRepository struct {
	db *sqlx.DB
}

// NewPostgresProductRepository creates a new PostgresProductRepository
func NewPostgresProductRepository(db *sqlx.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

type postgresProduct struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Price    int64  `db:"price"`
	Currency string `db:"currency"`
}

// FindByID finds a product by ID
func (r *PostgresProductRepository) FindByID(ctx context.Context, id models.ID) (*domain.Product, error) {
	var pgProduct postgresProduct
	err := r.db.GetContext(ctx, &pgProduct,
		"SELECT id, name, price, currency FROM products WHERE id = $1", id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrProductNotFound
		}
		return nil, errors.Wrap(err, "failed to find product")
	}
	return r.toDomain(&pgProduct)
}

// FindByIDs loads a batch of products keyed by id. Missing products are
// simply absent from the result; the caller decides whether that is fatal.
func (r *PostgresProductRepository) FindByIDs(ctx context.Context, ids []models.ID) (map[models.ID]*domain.Product, error) {
	if len(ids) == 0 {
		return map[models.ID]*domain.Product{}, nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	query, args, err := sqlx.In("SELECT id, name, price, currency FROM products WHERE id IN (?)", raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build product query")
	}

	var pgProducts []postgresProduct
	err = r.db.SelectContext(ctx, &pgProducts, r.db.Rebind(query), args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find products")
	}

	products := make(map[models.ID]*domain.Product, len(pgProducts))
	for i := range pgProducts {
		product, err := r.toDomain(&pgProducts[i])
		if err != nil {
			return nil, err
		}
		products[product.ID] = product
	}

	return products, nil
}

func (r *PostgresProductRepository) toDomain(pgProduct *postgresProduct) (*domain.Product, error) {
	id, err := models.NewID(pgProduct.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid product ID")
	}
	return &domain.Product{
		ID:    id,
		Name:  pgProduct.Name,
		Price: models.NewMoney(pgProduct.Price, pgProduct.Currency),
	}, nil
}
