package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linkcart/b2b-backend/api/middleware"
	"github.com/linkcart/b2b-backend/api/responses"
	"github.com/linkcart/b2b-backend/internal/products"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
	"github.com/linkcart/b2b-backend/pkg/logger"
)

// StoreProducts lists the products linked to a store with per-item
// degradation: products the caller cannot see are omitted, and the
// response reports both the returned and the linked counts.
func StoreProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id"))
			return
		}

		actor := middleware.TenantFromContext(r.Context()).Email
		result, err := svc.ListStoreProducts(r.Context(), actor, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CompanyProducts aggregates the product listings of every store linked
// to a company, grouped per store.
func CompanyProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company id"))
			return
		}

		actor := middleware.TenantFromContext(r.Context()).Email
		result, err := svc.ListCompanyProducts(r.Context(), actor, companyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
