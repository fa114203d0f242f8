package part

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a part identifier is not in the catalog.
var ErrNotFound = errors.New("part not found")

// Part is a purchasable component of a custom build.
type Part struct {
	ID         int
	Name       string
	Price      decimal.Decimal
	Specs      string
	CategoryID string
	InStock    bool
}

// Category groups parts under a display name. Part order is significant.
type Category struct {
	ID    string
	Name  string
	Parts []Part
}

// Source supplies the catalog at startup.
type Source interface {
	LoadCategories(ctx context.Context) ([]Category, error)
}

// Catalog is the immutable, ordered set of part categories. It is safe for
// concurrent use by any number of configurators.
type Catalog struct {
	categories []Category
	byID       map[int]Part
}

// NewCatalog validates categories and builds a Catalog. Part identifiers must
// be unique across categories and prices must be non-negative.
func NewCatalog(categories []Category) (*Catalog, error) {
	c := &Catalog{
		categories: make([]Category, len(categories)),
		byID:       make(map[int]Part),
	}
	for i, cat := range categories {
		parts := make([]Part, len(cat.Parts))
		for j, p := range cat.Parts {
			if _, dup := c.byID[p.ID]; dup {
				return nil, errors.Errorf("duplicate part id %d", p.ID)
			}
			if p.Price.IsNegative() {
				return nil, errors.Errorf("part %d has negative price %s", p.ID, p.Price)
			}
			if !p.Price.Equal(p.Price.Round(2)) {
				return nil, errors.Errorf("part %d price %s has more than two decimal places", p.ID, p.Price)
			}
			p.CategoryID = cat.ID
			parts[j] = p
			c.byID[p.ID] = p
		}
		c.categories[i] = Category{ID: cat.ID, Name: cat.Name, Parts: parts}
	}
	return c, nil
}

// Load reads categories from src and builds a Catalog.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	categories, err := src.LoadCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load categories")
	}
	return NewCatalog(categories)
}

// Get returns the part with the given identifier.
func (c *Catalog) Get(id int) (Part, error) {
	p, ok := c.byID[id]
	if !ok {
		return Part{}, ErrNotFound
	}
	return p, nil
}

// Len returns the number of parts in the catalog.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// Categories returns the full catalog in its original order.
func (c *Catalog) Categories() []Category {
	return c.Search("")
}

// Search returns the categories that contain at least one part whose name
// contains term, ignoring case. Category and part order are preserved. An
// empty term returns every category.
func (c *Catalog) Search(term string) []Category {
	out := make([]Category, 0, len(c.categories))
	if term == "" {
		for _, cat := range c.categories {
			out = append(out, Category{ID: cat.ID, Name: cat.Name, Parts: append([]Part(nil), cat.Parts...)})
		}
		return out
	}

	needle := strings.ToLower(term)
	for _, cat := range c.categories {
		var parts []Part
		for _, p := range cat.Parts {
			if strings.Contains(strings.ToLower(p.Name), needle) {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		out = append(out, Category{ID: cat.ID, Name: cat.Name, Parts: parts})
	}
	return out
}
