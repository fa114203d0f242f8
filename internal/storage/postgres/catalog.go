package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/robobuild/internal/domain/part"
)

const (
	listPartsSQL = `SELECT c.id, c.name, p.id, p.name, p.price, p.specs, p.in_stock
		FROM part_categories c
		JOIN parts p ON p.category_id = c.id
		ORDER BY c.position, p.position`

	upsertCategorySQL = `INSERT INTO part_categories (id, name, position) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, position = EXCLUDED.position`

	upsertPartSQL = `INSERT INTO parts (id, category_id, name, price, specs, in_stock, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET category_id = EXCLUDED.category_id, name = EXCLUDED.name,
			price = EXCLUDED.price, specs = EXCLUDED.specs, in_stock = EXCLUDED.in_stock,
			position = EXCLUDED.position`
)

var _ part.Source = (*CatalogRepository)(nil)

// CatalogRepository reads and seeds the parts catalog.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// LoadCategories returns every category with its parts in display order.
// Categories without parts are not returned.
func (r *CatalogRepository) LoadCategories(ctx context.Context) ([]part.Category, error) {
	rows, err := r.pool.Query(ctx, listPartsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing parts: %w", err)
	}
	defer rows.Close()

	var categories []part.Category
	for rows.Next() {
		var (
			catID, catName string
			p              part.Part
		)
		if err := rows.Scan(&catID, &catName, &p.ID, &p.Name, &p.Price, &p.Specs, &p.InStock); err != nil {
			return nil, fmt.Errorf("scanning part: %w", err)
		}
		p.CategoryID = catID

		if n := len(categories); n == 0 || categories[n-1].ID != catID {
			categories = append(categories, part.Category{ID: catID, Name: catName})
		}
		last := &categories[len(categories)-1]
		last.Parts = append(last.Parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing parts: %w", err)
	}
	return categories, nil
}

// Upsert writes categories and their parts in one transaction, keeping the
// given order as display position.
func (r *CatalogRepository) Upsert(ctx context.Context, categories []part.Category) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		for i, c := range categories {
			b.Queue(upsertCategorySQL, c.ID, c.Name, i)
			for j, p := range c.Parts {
				b.Queue(upsertPartSQL, p.ID, c.ID, p.Name, p.Price, p.Specs, p.InStock, j)
			}
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("upserting catalog: %w", err)
		}
		return nil
	})
}
