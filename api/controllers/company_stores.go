package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linkcart/b2b-backend/api/middleware"
	"github.com/linkcart/b2b-backend/api/responses"
	"github.com/linkcart/b2b-backend/api/validators"
	"github.com/linkcart/b2b-backend/internal/links"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
	"github.com/linkcart/b2b-backend/pkg/logger"
)

type storeLinkRequest struct {
	StoreID string `json:"store_id" validate:"required,uuid"`
}

type storeDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanyStores lists the stores linked to a company.
func CompanyStores(svc links.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company id"))
			return
		}

		actor := middleware.TenantFromContext(r.Context()).Email
		stores, err := svc.ListCompanyStores(r.Context(), actor, companyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]storeDTO, 0, len(stores))
		for i := range stores {
			out = append(out, storeDTO{
				ID:        stores[i].ID.String(),
				Name:      stores[i].Name,
				CreatedAt: stores[i].CreatedAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

// CompanyStoreLink attaches a store to a company.
func CompanyStoreLink(svc links.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company id"))
			return
		}

		var payload storeLinkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := uuid.Parse(payload.StoreID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id"))
			return
		}

		actor := middleware.TenantFromContext(r.Context()).Email
		link, err := svc.LinkStoreToCompany(r.Context(), actor, companyID, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"id":         link.ID.String(),
			"company_id": link.CompanyID.String(),
			"store_id":   link.StoreID.String(),
		})
	}
}

// CompanyStoreUnlink removes a store from a company.
func CompanyStoreUnlink(svc links.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company id"))
			return
		}

		var payload storeLinkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := uuid.Parse(payload.StoreID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id"))
			return
		}

		actor := middleware.TenantFromContext(r.Context()).Email
		if err := svc.UnlinkStoreFromCompany(r.Context(), actor, companyID, storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"company_id": companyID.String(),
			"store_id":   storeID.String(),
			"status":     "unlinked",
		})
	}
}
