package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/robobuild/internal/domain/quote"
)

const (
	createQuoteSQL = `INSERT INTO quotes (id, kind, lines, total, contact_name, contact_email, description, design_file, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	getQuoteByIDSQL = `SELECT id, kind, lines, total, contact_name, contact_email, description, design_file, created_at
		FROM quotes WHERE id = $1`
)

var _ quote.Repository = (*QuoteRepository)(nil)

// QuoteRepository implements quote.Repository backed by PostgreSQL.
type QuoteRepository struct {
	pool *pgxpool.Pool
}

// NewQuoteRepository returns a QuoteRepository that uses the given pool.
func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

// Create persists a quote. Lines are stored in a JSONB column.
func (r *QuoteRepository) Create(ctx context.Context, q *quote.Quote) error {
	_, err := r.pool.Exec(ctx, createQuoteSQL,
		q.ID, string(q.Kind), encodeLines(q.Lines), q.Total,
		q.Contact.Name, q.Contact.Email, q.Description, q.DesignFile, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating quote %q: %w", q.ID, err)
	}
	return nil
}

// GetByID returns the quote with the given id.
func (r *QuoteRepository) GetByID(ctx context.Context, id string) (*quote.Quote, error) {
	rows, err := r.pool.Query(ctx, getQuoteByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting quote %q: %w", id, err)
	}

	q, err := pgx.CollectExactlyOneRow(rows, scanQuote)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, quote.ErrNotFound
		}
		return nil, fmt.Errorf("getting quote %q: %w", id, err)
	}
	return &q, nil
}

func scanQuote(row pgx.CollectableRow) (quote.Quote, error) {
	var (
		q     quote.Quote
		kind  string
		lines []byte
	)
	if err := row.Scan(&q.ID, &kind, &lines, &q.Total,
		&q.Contact.Name, &q.Contact.Email, &q.Description, &q.DesignFile, &q.CreatedAt,
	); err != nil {
		return q, err
	}
	q.Kind = quote.Kind(kind)

	var err error
	if q.Lines, err = decodeLines(lines); err != nil {
		return q, fmt.Errorf("decoding lines of quote %q: %w", q.ID, err)
	}
	return q, nil
}

func encodeLines(lines []quote.Line) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, l := range lines {
		e.ObjStart()
		e.FieldStart("part_id")
		e.Int(l.PartID)
		e.FieldStart("name")
		e.Str(l.Name)
		e.FieldStart("unit_price")
		e.Str(l.UnitPrice.String())
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.FieldStart("line_total")
		e.Str(l.LineTotal.String())
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

func decodeLines(data []byte) ([]quote.Line, error) {
	var lines []quote.Line
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var l quote.Line
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var (
				err error
				s   string
			)
			switch key {
			case "part_id":
				l.PartID, err = d.Int()
			case "name":
				l.Name, err = d.Str()
			case "unit_price":
				if s, err = d.Str(); err == nil {
					l.UnitPrice, err = decimal.NewFromString(s)
				}
			case "quantity":
				l.Quantity, err = d.Int()
			case "line_total":
				if s, err = d.Str(); err == nil {
					l.LineTotal, err = decimal.NewFromString(s)
				}
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		lines = append(lines, l)
		return nil
	})
	return lines, err
}
