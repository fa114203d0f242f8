package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/robobuild/internal/domain/product"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.products.List(r.Context())
	if err != nil {
		return err
	}
	category := r.URL.Query().Get("category")
	products = product.FilterByCategory(products, category)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("categories")
		e.ArrStart()
		for _, c := range product.Categories() {
			e.ObjStart()
			e.FieldStart("id")
			e.Str(c.ID)
			e.FieldStart("name")
			e.Str(c.Name)
			e.ObjEnd()
		}
		e.ArrEnd()
		e.FieldStart("products")
		e.ArrStart()
		for _, p := range products {
			h.encodeProduct(e, p, false)
		}
		e.ArrEnd()
		e.ObjEnd()
	})
	return nil
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeProduct(e, *p, true) })
	return nil
}
