package quote

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind distinguishes a quote request from a saved configuration.
type Kind string

const (
	// KindQuote asks sales for a price quote on the build.
	KindQuote Kind = "quote"
	// KindSaved stores the build for later reference.
	KindSaved Kind = "saved"
)

var (
	// ErrNotFound is returned when a quote id is unknown.
	ErrNotFound = errors.New("quote not found")
	// ErrEmptyBuild is returned when submitting a build without parts.
	ErrEmptyBuild = errors.New("build has no parts")
	// ErrInvalidKind is returned for kinds other than quote and saved.
	ErrInvalidKind = errors.New("invalid submission kind")
	// ErrContactRequired is returned when a quote request lacks a contact email.
	ErrContactRequired = errors.New("contact email required for quote requests")
	// ErrInvalidDesignFile is returned for design file names with an
	// unsupported extension.
	ErrInvalidDesignFile = errors.New("unsupported design file")
)

// Line is a priced part in a submitted build.
type Line struct {
	PartID    int
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
}

// Contact identifies who submitted the build.
type Contact struct {
	Name  string
	Email string
}

// Quote is a snapshot of a build handed over for quoting or saving.
type Quote struct {
	ID          string
	Kind        Kind
	Lines       []Line
	Total       decimal.Decimal
	Contact     Contact
	Description string
	// DesignFile names the CAD, PDF or image file attached to the build.
	DesignFile string
	CreatedAt  time.Time
}

// Repository persists submitted quotes.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
	GetByID(ctx context.Context, id string) (*Quote, error)
}
