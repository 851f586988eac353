package httppresentation

import (
	"context"
	"net/http"
	"strings"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/identity"
)

// TokenParser verifies a bearer token and returns the identity it carries.
type TokenParser interface {
	Parse(raw string) (identity.Identity, error)
}

type identityKey struct{}

func contextWithIdentity(ctx context.Context, ident identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

func identityFrom(ctx context.Context) (identity.Identity, bool) {
	ident, ok := ctx.Value(identityKey{}).(identity.Identity)
	return ident, ok
}

// withAuth rejects requests without a valid bearer token and stores the
// verified identity on the request context.
func (h *Handler) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("Authorization"))
		const prefix = "Bearer "
		if !strings.HasPrefix(raw, prefix) {
			writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
			return
		}

		ident, err := h.tokens.Parse(strings.TrimSpace(raw[len(prefix):]))
		if err != nil {
			writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid bearer token", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithIdentity(r.Context(), ident)))
	})
}

// requirePermission gates a route on the role/permission table.
func (h *Handler) requirePermission(perm identity.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := identityFrom(r.Context())
			if !ok {
				writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity", nil)
				return
			}
			if !ident.Role.Can(perm) {
				writeErrorCode(w, http.StatusForbidden, "FORBIDDEN", "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
