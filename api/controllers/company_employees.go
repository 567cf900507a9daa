package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/linkcart/b2b-backend/api/middleware"
	"github.com/linkcart/b2b-backend/api/responses"
	"github.com/linkcart/b2b-backend/api/validators"
	"github.com/linkcart/b2b-backend/internal/employees"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
	"github.com/linkcart/b2b-backend/pkg/logger"
)

type employeeCreateRequest struct {
	Email         string `json:"email" validate:"required,email"`
	FirstName     string `json:"first_name" validate:"required,min=1"`
	LastName      string `json:"last_name" validate:"required,min=1"`
	IsAdmin       bool   `json:"is_admin"`
	SpendingLimit string `json:"spending_limit,omitempty"`
}

// CompanyEmployees lists the employees of a company.
func CompanyEmployees(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company id"))
			return
		}

		actor := middleware.TenantFromContext(r.Context()).Email
		list, err := svc.ListByCompany(r.Context(), actor, companyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CompanyEmployeeCreate provisions a new employee under a company.
func CompanyEmployeeCreate(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company id"))
			return
		}

		var payload employeeCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit := decimal.Zero
		if payload.SpendingLimit != "" {
			parsed, err := decimal.NewFromString(payload.SpendingLimit)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid spending limit"))
				return
			}
			limit = parsed
		}

		actor := middleware.TenantFromContext(r.Context()).Email
		result, err := svc.Provision(r.Context(), actor, companyID, employees.ProvisionInput{
			Email:         payload.Email,
			FirstName:     payload.FirstName,
			LastName:      payload.LastName,
			IsAdmin:       payload.IsAdmin,
			SpendingLimit: limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
