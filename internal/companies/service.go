package companies

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkcart/b2b-backend/pkg/db/models"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
)

type tenantRunner interface {
	RunTenant(ctx context.Context, email string, fn func(ctx context.Context) error) error
}

type companyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context) ([]models.Company, error)
	Update(ctx context.Context, company *models.Company) error
}

// CompanyDTO is the serialized company shape returned to clients.
type CompanyDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail *string   `json:"contact_email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Address      *string   `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toDTO(c *models.Company) *CompanyDTO {
	return &CompanyDTO{
		ID:           c.ID.String(),
		Name:         c.Name,
		ContactEmail: c.ContactEmail,
		Phone:        c.Phone,
		Address:      c.Address,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// CreateCompanyInput captures the fields for a new company.
type CreateCompanyInput struct {
	Name         string
	ContactEmail *string
	Phone        *string
	Address      *string
}

// UpdateCompanyInput captures the mutable company fields; nil means
// leave unchanged.
type UpdateCompanyInput struct {
	Name         *string
	ContactEmail *string
	Phone        *string
	Address      *string
}

// Service exposes company operations.
type Service interface {
	Create(ctx context.Context, actor string, input CreateCompanyInput) (*CompanyDTO, error)
	GetByID(ctx context.Context, actor string, id uuid.UUID) (*CompanyDTO, error)
	List(ctx context.Context, actor string) ([]CompanyDTO, error)
	Update(ctx context.Context, actor string, id uuid.UUID, input UpdateCompanyInput) (*CompanyDTO, error)
}

type service struct {
	tenant tenantRunner
	repo   companyRepository
}

// NewService builds a company service.
func NewService(tenant tenantRunner, repo companyRepository) (Service, error) {
	if tenant == nil {
		return nil, fmt.Errorf("tenant runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("company repository required")
	}
	return &service{tenant: tenant, repo: repo}, nil
}

func (s *service) Create(ctx context.Context, actor string, input CreateCompanyInput) (*CompanyDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}

	company := &models.Company{
		Name:         name,
		ContactEmail: input.ContactEmail,
		Phone:        input.Phone,
		Address:      input.Address,
	}

	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, company); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create company")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDTO(company), nil
}

func (s *service) GetByID(ctx context.Context, actor string, id uuid.UUID) (*CompanyDTO, error) {
	var dto *CompanyDTO
	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		company, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
		}
		dto = toDTO(company)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) List(ctx context.Context, actor string) ([]CompanyDTO, error) {
	var out []CompanyDTO
	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		companies, err := s.repo.List(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list companies")
		}
		out = make([]CompanyDTO, 0, len(companies))
		for i := range companies {
			out = append(out, *toDTO(&companies[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor string, id uuid.UUID, input UpdateCompanyInput) (*CompanyDTO, error) {
	var dto *CompanyDTO
	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		company, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "company name cannot be empty")
			}
			company.Name = name
		}
		if input.ContactEmail != nil {
			company.ContactEmail = input.ContactEmail
		}
		if input.Phone != nil {
			company.Phone = input.Phone
		}
		if input.Address != nil {
			company.Address = input.Address
		}

		if err := s.repo.Update(ctx, company); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update company")
		}
		dto = toDTO(company)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
