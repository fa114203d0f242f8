package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/robobuild/internal/domain/product"
	"github.com/xenking/robobuild/internal/seed"
)

const (
	productColumns = `id, name, category, price, original_price, rating, reviews, badge,
		description, in_stock, image, features, specs`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	upsertProductSQL = `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category,
			price = EXCLUDED.price, original_price = EXCLUDED.original_price,
			rating = EXCLUDED.rating, reviews = EXCLUDED.reviews, badge = EXCLUDED.badge,
			description = EXCLUDED.description, in_stock = EXCLUDED.in_stock,
			image = EXCLUDED.image, features = EXCLUDED.features, specs = EXCLUDED.specs`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// Upsert inserts or updates products.
func (r *ProductRepository) Upsert(ctx context.Context, products []product.Product) error {
	b := &pgx.Batch{}
	for _, p := range products {
		var features, specs jx.Encoder
		seed.EncodeStrings(&features, p.Features)
		seed.EncodeSpecs(&specs, p.Specs)

		b.Queue(upsertProductSQL,
			p.ID, p.Name, p.Category, p.Price, p.OriginalPrice, p.Rating, p.Reviews, p.Badge,
			p.Description, p.InStock, p.Image, features.Bytes(), specs.Bytes(),
		)
	}
	if err := r.pool.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("upserting products: %w", err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p              product.Product
		features, spec []byte
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Price, &p.OriginalPrice, &p.Rating, &p.Reviews, &p.Badge,
		&p.Description, &p.InStock, &p.Image, &features, &spec,
	); err != nil {
		return p, err
	}

	var err error
	if p.Features, err = seed.DecodeStrings(jx.DecodeBytes(features)); err != nil {
		return p, fmt.Errorf("decoding features of product %d: %w", p.ID, err)
	}
	if p.Specs, err = seed.DecodeSpecs(jx.DecodeBytes(spec)); err != nil {
		return p, fmt.Errorf("decoding specs of product %d: %w", p.ID, err)
	}
	return p, nil
}
