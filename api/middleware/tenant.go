package middleware

import (
	"net/http"

	"github.com/linkcart/b2b-backend/api/responses"
	"github.com/linkcart/b2b-backend/internal/identity"
	"github.com/linkcart/b2b-backend/pkg/logger"
)

// Tenant resolves the authenticated email into a tenant context by
// reading the identity metadata store. An identity with no metadata
// record proceeds on the lowest tier rather than erroring, so a freshly
// created login can still reach its own rows. Must run after Auth.
func Tenant(resolver identity.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := EmailFromContext(r.Context())
			if email == "" {
				// Auth did not run; leave the anonymous default in place.
				next.ServeHTTP(w, r)
				return
			}

			tc, err := resolver.Resolve(r.Context(), email)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithTenant(r.Context(), tc)
			if logg != nil {
				ctx = logg.WithActorRole(ctx, tc.Role.String())
				if tc.CompanyID != "" {
					ctx = logg.WithCompanyID(ctx, tc.CompanyID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
