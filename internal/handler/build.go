package handler

import (
	"fmt"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/robobuild/internal/domain/build"
	"github.com/xenking/robobuild/internal/domain/quote"
)

func (h *Handler) searchParts(w http.ResponseWriter, r *http.Request) error {
	categories := h.builds.Catalog().Search(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCategories(e, categories)
	})
	return nil
}

func (h *Handler) createBuild(w http.ResponseWriter, r *http.Request) error {
	id, err := h.builds.Create()
	if err != nil {
		zctx.From(r.Context()).Warn("Build session limit reached", zap.Int("live", h.builds.Len()))
		return err
	}
	h.metrics.sessions.Add(r.Context(), 1)

	var v buildView
	if err := h.builds.View(id, func(c *build.Configurator) { v = snapshot(id, c) }); err != nil {
		return err
	}
	w.Header().Set("Location", "/api/builds/"+id)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeBuild(e, v) })
	return nil
}

func (h *Handler) getBuild(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")

	var v buildView
	if err := h.builds.View(id, func(c *build.Configurator) { v = snapshot(id, c) }); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeBuild(e, v) })
	return nil
}

func (h *Handler) deleteBuild(w http.ResponseWriter, r *http.Request) error {
	if !h.builds.Delete(r.PathValue("id")) {
		return build.ErrSessionNotFound
	}
	h.metrics.sessions.Add(r.Context(), -1)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) addPart(w http.ResponseWriter, r *http.Request) error {
	partID, ok := 0, false
	if err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		if key != "partId" {
			return d.Skip()
		}
		var err error
		partID, err = decodeInt(d)
		ok = err == nil
		return err
	}); err != nil {
		return err
	}
	if !ok {
		return badRequest("partId is required")
	}

	return h.mutate(w, r, "add", func(c *build.Configurator) (*notice, error) {
		p, err := c.Add(partID)
		if err != nil {
			return nil, err
		}
		return success("added", fmt.Sprintf("Added %s to your build", p.Name)), nil
	})
}

func (h *Handler) removePart(w http.ResponseWriter, r *http.Request) error {
	partID, err := pathInt(r, "partId")
	if err != nil {
		return err
	}

	return h.mutate(w, r, "remove", func(c *build.Configurator) (*notice, error) {
		if !c.Remove(partID) {
			return nil, nil
		}
		return success("removed", "Part removed from build"), nil
	})
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) error {
	partID, err := pathInt(r, "partId")
	if err != nil {
		return err
	}

	quantity, ok := 0, false
	if err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		if key != "quantity" {
			return d.Skip()
		}
		var err error
		quantity, err = decodeInt(d)
		ok = err == nil
		return err
	}); err != nil {
		return err
	}
	if !ok {
		return badRequest("quantity is required")
	}

	return h.mutate(w, r, "set_quantity", func(c *build.Configurator) (*notice, error) {
		if err := c.SetQuantity(partID, quantity); err != nil {
			return nil, err
		}
		return success("quantity_updated", "Quantity updated"), nil
	})
}

// mutate runs fn under the session lock and answers with the resulting build.
// Advisory rejections become a notice on a 200 response; other errors are
// returned as is.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op string, fn func(c *build.Configurator) (*notice, error)) error {
	id := r.PathValue("id")

	var v buildView
	err := h.builds.Do(id, func(c *build.Configurator) error {
		n, err := fn(c)
		if err != nil {
			if n = rejection(err); n == nil {
				return err
			}
		}
		v = snapshot(id, c)
		v.notice = n
		return nil
	})
	if err != nil {
		return err
	}

	h.metrics.operation(r.Context(), op, v.notice)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeBuild(e, v) })
	return nil
}

func (h *Handler) submitBuild(w http.ResponseWriter, r *http.Request) error {
	req := quote.SubmitRequest{Kind: quote.KindQuote}
	if err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "kind":
			var s string
			s, err = d.Str()
			req.Kind = quote.Kind(s)
		case "description":
			req.Description, err = d.Str()
		case "designFile":
			req.DesignFile, err = d.Str()
		case "contact":
			err = d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "name":
					req.Contact.Name, err = d.Str()
				case "email":
					req.Contact.Email, err = d.Str()
				default:
					err = d.Skip()
				}
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return err
	}

	id := r.PathValue("id")
	if err := h.builds.View(id, func(c *build.Configurator) {
		for _, l := range c.Lines() {
			req.Lines = append(req.Lines, quote.Line{
				PartID:    l.Part.ID,
				Name:      l.Part.Name,
				UnitPrice: l.Part.Price,
				Quantity:  l.Quantity,
			})
		}
	}); err != nil {
		return err
	}

	q, err := h.quotes.Submit(r.Context(), req)
	if err != nil {
		return err
	}
	h.metrics.submitted(r.Context(), q.Kind)

	w.Header().Set("Location", "/api/quotes/"+q.ID)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeQuote(e, q) })
	return nil
}

func (h *Handler) getQuote(w http.ResponseWriter, r *http.Request) error {
	q, err := h.quotes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeQuote(e, q) })
	return nil
}
