package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/linkcart/b2b-backend/pkg/authz"
	"github.com/linkcart/b2b-backend/pkg/db/models"
	"github.com/linkcart/b2b-backend/pkg/enums"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
)

type metadataRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.IdentityMetadata, error)
	Upsert(ctx context.Context, meta *models.IdentityMetadata) error
}

type companyStoreLister interface {
	ListStoreIDsByCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)
}

// Service resolves authenticated emails into tenant contexts and derives
// metadata records during provisioning.
type Service interface {
	Resolve(ctx context.Context, email string) (authz.TenantContext, error)
	ProvisionFromEmployee(ctx context.Context, employee *models.Employee, email string) (*models.IdentityMetadata, error)
}

type service struct {
	repo  metadataRepository
	links companyStoreLister
}

// NewService builds the identity service.
func NewService(repo metadataRepository, links companyStoreLister) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("metadata repository required")
	}
	if links == nil {
		return nil, fmt.Errorf("company store lister required")
	}
	return &service{repo: repo, links: links}, nil
}

// Resolve loads the metadata for an authenticated email and shapes it
// into a tenant context. A missing record is not an error: the identity
// degrades to the lowest tier with no company or store scope.
func (s *service) Resolve(ctx context.Context, email string) (authz.TenantContext, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return authz.Anonymous(), pkgerrors.New(pkgerrors.CodeUnauthorized, "email is required")
	}

	meta, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.Unprovisioned(email), nil
		}
		return authz.Anonymous(), pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load identity metadata")
	}

	role := meta.Role
	if !role.IsValid() {
		role = enums.DefaultUserRole
	}

	tc := authz.TenantContext{
		Email:         email,
		Role:          role,
		StoreIDs:      meta.StoreIDs,
		Authenticated: true,
		Provisioned:   true,
	}
	if meta.CompanyID != nil {
		tc.CompanyID = meta.CompanyID.String()
	}
	return tc, nil
}

// ProvisionFromEmployee derives and stores the metadata record for an
// employee identity. Admin employees become company admins scoped to
// every store currently linked to the company; everyone else lands on
// the lowest tier with no direct store set.
func (s *service) ProvisionFromEmployee(ctx context.Context, employee *models.Employee, email string) (*models.IdentityMetadata, error) {
	if employee == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee is required")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	role := enums.UserRoleCompanyUser
	storeIDs := pq.StringArray{}
	if employee.IsAdmin {
		role = enums.UserRoleCompanyAdmin
		linked, err := s.links.ListStoreIDsByCompany(ctx, employee.CompanyID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list company stores")
		}
		for _, id := range linked {
			storeIDs = append(storeIDs, id.String())
		}
	}

	companyID := employee.CompanyID
	meta := &models.IdentityMetadata{
		Email:     email,
		Role:      role,
		CompanyID: &companyID,
		StoreIDs:  storeIDs,
	}

	if err := s.repo.Upsert(ctx, meta); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert identity metadata")
	}
	return meta, nil
}
