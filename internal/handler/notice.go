package handler

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/robobuild/internal/domain/build"
)

const (
	noticeSuccess  = "success"
	noticeRejected = "rejected"
)

// notice is the advisory message shown next to the build after an operation.
type notice struct {
	kind    string
	reason  string
	message string
}

func (n *notice) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("kind")
	e.Str(n.kind)
	e.FieldStart("reason")
	e.Str(n.reason)
	e.FieldStart("message")
	e.Str(n.message)
	e.ObjEnd()
}

func success(reason, message string) *notice {
	return &notice{kind: noticeSuccess, reason: reason, message: message}
}

// rejection converts an advisory configurator error into a notice. It returns
// nil for errors that are not advisory.
func rejection(err error) *notice {
	var reason, message string
	switch {
	case errors.Is(err, build.ErrOutOfStock):
		reason, message = "out_of_stock", "This part is currently out of stock"
	case errors.Is(err, build.ErrDuplicateSelection):
		reason, message = "duplicate_selection", "Part already selected"
	case errors.Is(err, build.ErrInvalidQuantity):
		reason, message = "invalid_quantity", "Quantity must be at least 1"
	case errors.Is(err, build.ErrNotSelected):
		reason, message = "not_selected", "Part is not in your build"
	default:
		return nil
	}
	return &notice{kind: noticeRejected, reason: reason, message: message}
}
