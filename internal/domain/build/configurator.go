package build

import (
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/robobuild/internal/domain/part"
)

// Rejections returned by the Configurator. None of them modify the selection.
var (
	// ErrOutOfStock is returned when adding a part that is not available.
	ErrOutOfStock = errors.New("part is out of stock")
	// ErrDuplicateSelection is returned when adding a part that is already selected.
	ErrDuplicateSelection = errors.New("part already selected")
	// ErrInvalidQuantity is returned when a quantity below 1 is requested.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrNotSelected is returned when changing the quantity of an unselected part.
	ErrNotSelected = errors.New("part is not selected")
	// ErrPartNotFound is returned for identifiers missing from the catalog.
	ErrPartNotFound = part.ErrNotFound
)

// Entry is a selected part and its quantity.
type Entry struct {
	PartID   int
	Quantity int
}

// Line is an Entry joined with catalog data.
type Line struct {
	Part      part.Part
	Quantity  int
	LineTotal decimal.Decimal
}

// Configurator holds one build: a reference to the shared catalog and the
// selection owned by this instance. It is not safe for concurrent use.
type Configurator struct {
	catalog *part.Catalog
	entries []Entry
}

// NewConfigurator returns a Configurator with an empty selection.
func NewConfigurator(catalog *part.Catalog) *Configurator {
	return &Configurator{catalog: catalog}
}

// Search filters the catalog by part name. See part.Catalog.Search.
func (c *Configurator) Search(term string) []part.Category {
	return c.catalog.Search(term)
}

// Add selects a part with quantity 1.
func (c *Configurator) Add(id int) (part.Part, error) {
	p, err := c.catalog.Get(id)
	if err != nil {
		return part.Part{}, err
	}
	if !p.InStock {
		return p, ErrOutOfStock
	}
	if c.index(id) >= 0 {
		return p, ErrDuplicateSelection
	}
	c.entries = append(c.entries, Entry{PartID: id, Quantity: 1})
	return p, nil
}

// Remove drops a part from the selection. It reports whether the part was
// selected; removing an unselected part is a no-op.
func (c *Configurator) Remove(id int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.entries = slices.Delete(c.entries, i, i+1)
	return true
}

// SetQuantity replaces the quantity of a selected part.
func (c *Configurator) SetQuantity(id, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	i := c.index(id)
	if i < 0 {
		return ErrNotSelected
	}
	c.entries[i].Quantity = quantity
	return nil
}

// Reset empties the selection.
func (c *Configurator) Reset() {
	c.entries = nil
}

// Selection returns a copy of the selected entries in insertion order.
func (c *Configurator) Selection() []Entry {
	return slices.Clone(c.entries)
}

// Lines returns the selection joined with catalog data.
func (c *Configurator) Lines() []Line {
	lines := make([]Line, 0, len(c.entries))
	for _, e := range c.entries {
		// Entries are only created for catalog parts, and the catalog is immutable.
		p, _ := c.catalog.Get(e.PartID)
		lines = append(lines, Line{
			Part:      p,
			Quantity:  e.Quantity,
			LineTotal: p.Price.Mul(decimal.NewFromInt(int64(e.Quantity))),
		})
	}
	return lines
}

// Total is the sum of price * quantity over the selection.
func (c *Configurator) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines() {
		total = total.Add(l.LineTotal)
	}
	return total
}

func (c *Configurator) index(id int) int {
	return slices.IndexFunc(c.entries, func(e Entry) bool { return e.PartID == id })
}
