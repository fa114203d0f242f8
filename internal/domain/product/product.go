package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// CategoryAll selects every product.
const CategoryAll = "all"

// Product is a finished robot sold in the shop.
type Product struct {
	ID            int
	Name          string
	Category      string
	Price         decimal.Decimal
	OriginalPrice decimal.NullDecimal
	Rating        float64
	Reviews       int
	Badge         string
	Description   string
	InStock       bool
	Image         string
	Features      []string
	Specs         []Spec
}

// Spec is one named specification value, kept in display order.
type Spec struct {
	Name  string
	Value string
}

// Category is a shop filter entry.
type Category struct {
	ID   string
	Name string
}

// Categories returns the shop filter entries in display order.
func Categories() []Category {
	return []Category{
		{ID: CategoryAll, Name: "All Products"},
		{ID: "security", Name: "Security Bots"},
		{ID: "assistant", Name: "Assistant Bots"},
		{ID: "industrial", Name: "Industrial Robots"},
		{ID: "drone", Name: "Drones"},
	}
}

// FilterByCategory returns the products in category, preserving order. An
// empty category or CategoryAll returns every product.
func FilterByCategory(products []Product, category string) []Product {
	if category == "" || category == CategoryAll {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Repository defines read operations for the shop catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int) (*Product, error)
}
