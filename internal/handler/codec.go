package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/robobuild/internal/domain/build"
	"github.com/xenking/robobuild/internal/domain/device"
	"github.com/xenking/robobuild/internal/domain/part"
	"github.com/xenking/robobuild/internal/domain/product"
	"github.com/xenking/robobuild/internal/domain/quote"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, code int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(code)
		e.FieldStart("message")
		e.Str(msg)
		e.ObjEnd()
	})
}

// decodeBody reads a JSON object from r and feeds each field to fn. An empty
// body is treated as an empty object.
func decodeBody(w http.ResponseWriter, r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return badRequest("read body: %v", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := jx.DecodeBytes(data).Obj(fn); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("invalid %s %q", name, raw)
	}
	return v, nil
}

// money writes amounts as strings with two fraction digits.
func money(e *jx.Encoder, d decimal.Decimal) {
	e.Str(d.StringFixed(2))
}

func encodePart(e *jx.Encoder, p part.Part) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	money(e, p.Price)
	e.FieldStart("specs")
	e.Str(p.Specs)
	e.FieldStart("category")
	e.Str(p.CategoryID)
	e.FieldStart("inStock")
	e.Bool(p.InStock)
	e.ObjEnd()
}

func encodeCategories(e *jx.Encoder, categories []part.Category) {
	e.ArrStart()
	for _, c := range categories {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(c.ID)
		e.FieldStart("name")
		e.Str(c.Name)
		e.FieldStart("parts")
		e.ArrStart()
		for _, p := range c.Parts {
			encodePart(e, p)
		}
		e.ArrEnd()
		e.ObjEnd()
	}
	e.ArrEnd()
}

// buildView is a consistent snapshot of one session.
type buildView struct {
	id     string
	lines  []build.Line
	total  decimal.Decimal
	notice *notice
}

func snapshot(id string, c *build.Configurator) buildView {
	return buildView{id: id, lines: c.Lines(), total: c.Total()}
}

func encodeBuild(e *jx.Encoder, v buildView) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(v.id)
	e.FieldStart("parts")
	e.ArrStart()
	for _, l := range v.lines {
		e.ObjStart()
		e.FieldStart("partId")
		e.Int(l.Part.ID)
		e.FieldStart("name")
		e.Str(l.Part.Name)
		e.FieldStart("category")
		e.Str(l.Part.CategoryID)
		e.FieldStart("specs")
		e.Str(l.Part.Specs)
		e.FieldStart("price")
		money(e, l.Part.Price)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.FieldStart("lineTotal")
		money(e, l.LineTotal)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("total")
	money(e, v.total)
	if v.notice != nil {
		e.FieldStart("notice")
		v.notice.encode(e)
	}
	e.ObjEnd()
}

func encodeQuote(e *jx.Encoder, q *quote.Quote) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(q.ID)
	e.FieldStart("kind")
	e.Str(string(q.Kind))
	e.FieldStart("lines")
	e.ArrStart()
	for _, l := range q.Lines {
		e.ObjStart()
		e.FieldStart("partId")
		e.Int(l.PartID)
		e.FieldStart("name")
		e.Str(l.Name)
		e.FieldStart("unitPrice")
		money(e, l.UnitPrice)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.FieldStart("lineTotal")
		money(e, l.LineTotal)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("total")
	money(e, q.Total)
	e.FieldStart("contact")
	e.ObjStart()
	e.FieldStart("name")
	e.Str(q.Contact.Name)
	e.FieldStart("email")
	e.Str(q.Contact.Email)
	e.ObjEnd()
	if q.Description != "" {
		e.FieldStart("description")
		e.Str(q.Description)
	}
	if q.DesignFile != "" {
		e.FieldStart("designFile")
		e.Str(q.DesignFile)
	}
	e.FieldStart("createdAt")
	e.Str(q.CreatedAt.Format(time.RFC3339))
	e.ObjEnd()
}

func (h *Handler) imageURL(path string) string {
	if h.imageBaseURL == "" || path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(h.imageBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (h *Handler) encodeProduct(e *jx.Encoder, p product.Product, detail bool) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("price")
	money(e, p.Price)
	if p.OriginalPrice.Valid {
		e.FieldStart("originalPrice")
		money(e, p.OriginalPrice.Decimal)
	}
	e.FieldStart("rating")
	e.Float64(p.Rating)
	e.FieldStart("reviews")
	e.Int(p.Reviews)
	if p.Badge != "" {
		e.FieldStart("badge")
		e.Str(p.Badge)
	}
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("inStock")
	e.Bool(p.InStock)
	e.FieldStart("image")
	e.Str(h.imageURL(p.Image))
	if detail {
		e.FieldStart("features")
		e.ArrStart()
		for _, f := range p.Features {
			e.Str(f)
		}
		e.ArrEnd()
		e.FieldStart("specs")
		e.ArrStart()
		for _, s := range p.Specs {
			e.ObjStart()
			e.FieldStart("name")
			e.Str(s.Name)
			e.FieldStart("value")
			e.Str(s.Value)
			e.ObjEnd()
		}
		e.ArrEnd()
	}
	e.ObjEnd()
}

func encodeDevice(e *jx.Encoder, d device.Device) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int(d.ID)
	e.FieldStart("name")
	e.Str(d.Name)
	e.FieldStart("type")
	e.Str(d.Type)
	e.FieldStart("status")
	e.Str(string(d.Status))
	e.FieldStart("battery")
	e.Int(d.Battery)
	e.FieldStart("location")
	e.Str(d.Location)
	e.FieldStart("lastSeen")
	e.Str(d.LastSeen)
	e.FieldStart("isOnline")
	e.Bool(d.Online)
	e.FieldStart("task")
	e.Str(d.Task)
	e.ObjEnd()
}

func encodeStats(e *jx.Encoder, s device.Stats) {
	e.ObjStart()
	e.FieldStart("total")
	e.Int(s.Total)
	e.FieldStart("active")
	e.Int(s.Active)
	e.FieldStart("online")
	e.Int(s.Online)
	e.FieldStart("maintenance")
	e.Int(s.Maintenance)
	e.ObjEnd()
}

// decodeInt accepts a JSON number or a numeric string.
func decodeInt(d *jx.Decoder) (int, error) {
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(s)
		return v, errors.Wrap(err, "parse int")
	}
	return d.Int()
}
