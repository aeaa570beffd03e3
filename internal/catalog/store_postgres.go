// Copyright (c) 2026 Petbox. All rights reserved.

package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petbox/petbox-server/internal/platform/dberr"
)

// PostgresRepository implements [Repository] backed by PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL-backed catalog repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// defaultProductLimit caps unbounded product listings.
const defaultProductLimit = 50

// GetProductBySlug implements [Repository].
func (repository *PostgresRepository) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	query := `
		SELECT id, name, slug, description, category, image_url, created_at, updated_at
		FROM products
		WHERE slug = $1`

	product := Product{}
	var description, imageURL *string

	err := repository.pool.QueryRow(ctx, query, slug).Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&description,
		&product.Category,
		&imageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Product")
	}

	if description != nil {
		product.Description = *description
	}
	if imageURL != nil {
		product.ImageURL = *imageURL
	}

	variants, err := repository.listVariants(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	product.Variants = variants

	return &product, nil
}

// listVariants fetches the purchasable variants of one product.
func (repository *PostgresRepository) listVariants(ctx context.Context, productID string) ([]Variant, error) {
	query := `
		SELECT id, name, price, stock
		FROM product_variants
		WHERE product_id = $1
		ORDER BY price ASC`

	rows, err := repository.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, dberr.Wrap(err, "Product")
	}
	defer rows.Close()

	variants := []Variant{}
	for rows.Next() {
		variant := Variant{}
		if err := rows.Scan(&variant.ID, &variant.Name, &variant.Price, &variant.Stock); err != nil {
			return nil, dberr.Wrap(err, "Product")
		}
		variants = append(variants, variant)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Product")
	}

	return variants, nil
}

// ListProducts implements [Repository].
func (repository *PostgresRepository) ListProducts(ctx context.Context, category string, limit int) ([]Product, error) {
	if limit <= 0 || limit > defaultProductLimit {
		limit = defaultProductLimit
	}

	query := `
		SELECT id, name, slug, description, category, image_url, created_at, updated_at
		FROM products
		WHERE ($1 = '' OR category = $1)
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := repository.pool.Query(ctx, query, category, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "Product")
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		product := Product{}
		var description, imageURL *string

		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Slug,
			&description,
			&product.Category,
			&imageURL,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "Product")
		}

		if description != nil {
			product.Description = *description
		}
		if imageURL != nil {
			product.ImageURL = *imageURL
		}
		product.Variants = []Variant{}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Product")
	}

	return products, nil
}

// ListStores implements [Repository].
func (repository *PostgresRepository) ListStores(ctx context.Context) ([]Store, error) {
	query := `
		SELECT id, code, name, address, phone, opening_hours
		FROM stores
		ORDER BY code ASC`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "Store")
	}
	defer rows.Close()

	stores := []Store{}
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Store")
		}
		stores = append(stores, *store)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Store")
	}

	return stores, nil
}

// GetStoreByCode implements [Repository].
func (repository *PostgresRepository) GetStoreByCode(ctx context.Context, code string) (*Store, error) {
	query := `
		SELECT id, code, name, address, phone, opening_hours
		FROM stores
		WHERE code = $1`

	store, err := scanStore(repository.pool.QueryRow(ctx, query, code))
	if err != nil {
		return nil, dberr.Wrap(err, "Store")
	}

	return store, nil
}

// scanStore maps one stores row, folding NULLs back into zero values.
func scanStore(row pgx.Row) (*Store, error) {
	store := Store{}
	var phone, openingHours *string

	err := row.Scan(
		&store.ID,
		&store.Code,
		&store.Name,
		&store.Address,
		&phone,
		&openingHours,
	)
	if err != nil {
		return nil, err
	}

	if phone != nil {
		store.Phone = *phone
	}
	if openingHours != nil {
		store.OpeningHours = *openingHours
	}

	return &store, nil
}
