package handler

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/robobuild/internal/domain/auth"
	"github.com/xenking/robobuild/internal/domain/build"
	"github.com/xenking/robobuild/internal/domain/device"
	"github.com/xenking/robobuild/internal/domain/inquiry"
	"github.com/xenking/robobuild/internal/domain/part"
	"github.com/xenking/robobuild/internal/domain/product"
	"github.com/xenking/robobuild/internal/domain/quote"
)

// requestError is a client error with an explicit status.
type requestError struct {
	code int
	msg  string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{code: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

var errForbidden = &requestError{code: http.StatusForbidden, msg: "forbidden"}

// statusOf maps domain errors to HTTP status codes. Unknown errors are 500.
func statusOf(err error) (int, string) {
	var re *requestError
	if errors.As(err, &re) {
		return re.code, re.msg
	}
	var fe *inquiry.FieldError
	if errors.As(err, &fe) {
		return http.StatusBadRequest, fe.Error()
	}

	switch {
	case errors.Is(err, build.ErrSessionNotFound),
		errors.Is(err, part.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, quote.ErrNotFound),
		errors.Is(err, device.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, quote.ErrEmptyBuild),
		errors.Is(err, quote.ErrInvalidKind),
		errors.Is(err, quote.ErrContactRequired),
		errors.Is(err, quote.ErrInvalidDesignFile),
		errors.Is(err, device.ErrUnknownAction):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, device.ErrActionUnavailable):
		return http.StatusConflict, err.Error()
	case errors.Is(err, build.ErrTooManySessions):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// handle adapts an error-returning handler to http.Handler.
func (h *Handler) handle(fn func(w http.ResponseWriter, r *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		code, msg := statusOf(err)
		if code == http.StatusInternalServerError {
			zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		}
		writeError(w, code, msg)
	})
}
