package identity

import (
	"net/http"
	"strings"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/httputil"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

// Middleware resolves the Authorization header into a Principal on the
// request context. Requests without a valid credential never reach the
// handler.
func Middleware(mgr *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.Error(w, errors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httputil.Error(w, errors.Unauthorized("invalid authorization header"))
				return
			}

			p, err := mgr.Validate(parts[1])
			if err != nil {
				httputil.Error(w, err)
				return
			}

			ctx := principal.WithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role does not match. Use behind
// Middleware; requests without a principal are treated as unauthorized.
func RequireRole(role principal.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := principal.FromContext(r.Context())
			if p == nil {
				httputil.Error(w, errors.Unauthorized("missing credentials"))
				return
			}
			if p.Role != role {
				httputil.Error(w, errors.Forbidden("operation not permitted for this role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
