package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/linkcart/b2b-backend/api/responses"
	"github.com/linkcart/b2b-backend/pkg/authz"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
	"github.com/linkcart/b2b-backend/pkg/logger"
	"github.com/linkcart/b2b-backend/pkg/metrics"
)

const maxGuardBodyBytes = 1 << 20

// RequireCompanyAccess admits callers scoped to the target company. The
// target comes from the chi URL param "id" first, then from a
// `company_id` field in the JSON body; the body is restored so the
// handler can decode it again. Platform admins pass unconditionally.
func RequireCompanyAccess(m *metrics.HTTPMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc := TenantFromContext(r.Context())
			if !tc.Authenticated {
				m.IncDenial("company_access", "unauthenticated")
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}

			target := strings.TrimSpace(chi.URLParam(r, "id"))
			if target == "" {
				var err error
				target, err = companyIDFromBody(r)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}
			if target == "" {
				m.IncDenial("company_access", "missing_target")
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "company id is required"))
				return
			}

			if !authz.CanAccessCompany(tc.Role, tc.CompanyID, target) {
				m.IncDenial("company_access", "forbidden")
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "access denied for this company"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func companyIDFromBody(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxGuardBodyBytes))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	r.Body = io.NopCloser(bytes.NewReader(buf))

	if len(bytes.TrimSpace(buf)) == 0 {
		return "", nil
	}

	var probe struct {
		CompanyID string `json:"company_id"`
	}
	if err := json.Unmarshal(buf, &probe); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	return strings.TrimSpace(probe.CompanyID), nil
}
