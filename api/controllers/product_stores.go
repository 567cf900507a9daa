package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linkcart/b2b-backend/api/middleware"
	"github.com/linkcart/b2b-backend/api/responses"
	"github.com/linkcart/b2b-backend/api/validators"
	"github.com/linkcart/b2b-backend/internal/links"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
	"github.com/linkcart/b2b-backend/pkg/logger"
)

// ProductStores lists the stores a product is linked to.
func ProductStores(svc links.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		actor := middleware.TenantFromContext(r.Context()).Email
		stores, err := svc.ListProductStores(r.Context(), actor, productID)
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

// ProductStoreLink attaches a product to a store.
func ProductStoreLink(svc links.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
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
		link, err := svc.LinkProductToStore(r.Context(), actor, productID, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"id":         link.ID.String(),
			"product_id": link.ProductID.String(),
			"store_id":   link.StoreID.String(),
		})
	}
}

// ProductStoreUnlink removes a product from a store.
func ProductStoreUnlink(svc links.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
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
		if err := svc.UnlinkProductFromStore(r.Context(), actor, productID, storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"product_id": productID.String(),
			"store_id":   storeID.String(),
			"status":     "unlinked",
		})
	}
}
