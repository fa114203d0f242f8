package quote

import (
	"context"
	"net/mail"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmitRequest holds the input for submitting a build.
type SubmitRequest struct {
	Kind        Kind
	Lines       []Line
	Contact     Contact
	Description string
	DesignFile  string
}

// DesignFileExtensions lists the accepted design file types.
var DesignFileExtensions = []string{".pdf", ".dwg", ".step", ".stl", ".jpg", ".png", ".svg"}

const maxDesignFileName = 255

// designFile returns the base name of a design file reference, or
// ErrInvalidDesignFile when its type is not accepted.
func designFile(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if len(name) > maxDesignFileName || !slices.Contains(DesignFileExtensions, strings.ToLower(path.Ext(name))) {
		return "", errors.Wrapf(ErrInvalidDesignFile, "%q", name)
	}
	return name, nil
}

// Service validates and stores build submissions.
type Service struct {
	quotes Repository
	now    func() time.Time
}

// NewService creates a quote Service backed by the given Repository.
func NewService(quotes Repository) *Service {
	return &Service{quotes: quotes, now: time.Now}
}

// Submit validates the request, recomputes line and build totals from unit
// prices, and persists the quote.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Quote, error) {
	switch req.Kind {
	case KindQuote, KindSaved:
	default:
		return nil, ErrInvalidKind
	}
	if len(req.Lines) == 0 {
		return nil, ErrEmptyBuild
	}

	contact := Contact{
		Name:  strings.TrimSpace(req.Contact.Name),
		Email: strings.TrimSpace(req.Contact.Email),
	}
	if req.Kind == KindQuote && contact.Email == "" {
		return nil, ErrContactRequired
	}
	if contact.Email != "" {
		if _, err := mail.ParseAddress(contact.Email); err != nil {
			return nil, errors.Wrap(ErrContactRequired, "parse contact email")
		}
	}

	design, err := designFile(req.DesignFile)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, len(req.Lines))
	total := decimal.Zero
	for i, l := range req.Lines {
		l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		total = total.Add(l.LineTotal)
		lines[i] = l
	}

	q := &Quote{
		ID:          uuid.New().String(),
		Kind:        req.Kind,
		Lines:       lines,
		Total:       total,
		Contact:     contact,
		Description: strings.TrimSpace(req.Description),
		DesignFile:  design,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.quotes.Create(ctx, q); err != nil {
		return nil, errors.Wrap(err, "create quote")
	}
	return q, nil
}

// Get returns a previously submitted quote.
func (s *Service) Get(ctx context.Context, id string) (*Quote, error) {
	q, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get quote")
	}
	return q, nil
}
