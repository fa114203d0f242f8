package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// HeaderAPIKey carries the caller's API key.
const HeaderAPIKey = "api_key"

func apiKey(r *http.Request) string {
	if k := r.Header.Get(HeaderAPIKey); k != "" {
		return k
	}
	if v, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// requireScope admits only callers whose API key grants scope.
func (h *Handler) requireScope(scope string, next http.Handler) http.Handler {
	return h.handle(func(w http.ResponseWriter, r *http.Request) error {
		info, err := h.keys.Authenticate(r.Context(), apiKey(r))
		if err != nil {
			return err
		}
		if !info.HasScope(scope) {
			zctx.From(r.Context()).Warn("API key lacks scope",
				zap.String("key_id", info.ID),
				zap.String("scope", scope),
			)
			return errForbidden
		}
		next.ServeHTTP(w, r.WithContext(zctx.With(r.Context(), zap.String("key_id", info.ID))))
		return nil
	})
}
