package middleware

import (
	"fmt"
	"net/http"

	"github.com/linkcart/b2b-backend/api/responses"
	"github.com/linkcart/b2b-backend/pkg/authz"
	"github.com/linkcart/b2b-backend/pkg/enums"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
	"github.com/linkcart/b2b-backend/pkg/logger"
	"github.com/linkcart/b2b-backend/pkg/metrics"
)

// RequireRole admits callers whose role meets the minimum tier.
// Unauthenticated requests get 401; authenticated but under-privileged
// requests get 403 naming the required and current roles.
func RequireRole(min enums.UserRole, m *metrics.HTTPMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc := TenantFromContext(r.Context())
			if !tc.Authenticated {
				m.IncDenial("require_role", "unauthenticated")
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !authz.HasPermission(tc.Role, min) {
				m.IncDenial("require_role", "forbidden")
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden,
					fmt.Sprintf("requires role %s, current role is %s", min, tc.Role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
