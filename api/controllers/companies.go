package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linkcart/b2b-backend/api/middleware"
	"github.com/linkcart/b2b-backend/api/responses"
	"github.com/linkcart/b2b-backend/api/validators"
	"github.com/linkcart/b2b-backend/internal/companies"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
	"github.com/linkcart/b2b-backend/pkg/logger"
)

type companyCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=1"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
}

type companyUpdateRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
}

// CompanyCreate registers a new company.
func CompanyCreate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload companyCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.TenantFromContext(r.Context()).Email
		company, err := svc.Create(r.Context(), actor, companies.CreateCompanyInput{
			Name:         payload.Name,
			ContactEmail: payload.ContactEmail,
			Phone:        payload.Phone,
			Address:      payload.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, company)
	}
}

// CompanyList returns the companies visible to the caller.
func CompanyList(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.TenantFromContext(r.Context()).Email
		list, err := svc.List(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CompanyDetail returns one company by id.
func CompanyDetail(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company id"))
			return
		}

		actor := middleware.TenantFromContext(r.Context()).Email
		company, err := svc.GetByID(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, company)
	}
}

// CompanyUpdate adjusts the mutable company fields.
func CompanyUpdate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company id"))
			return
		}

		var payload companyUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.TenantFromContext(r.Context()).Email
		company, err := svc.Update(r.Context(), actor, id, companies.UpdateCompanyInput{
			Name:         payload.Name,
			ContactEmail: payload.ContactEmail,
			Phone:        payload.Phone,
			Address:      payload.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, company)
	}
}
