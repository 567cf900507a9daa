package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/linkcart/b2b-backend/internal/identity"
	"github.com/linkcart/b2b-backend/pkg/config"
	"github.com/linkcart/b2b-backend/pkg/db/models"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
	"github.com/linkcart/b2b-backend/pkg/logger"
	"github.com/linkcart/b2b-backend/pkg/security"
	"github.com/linkcart/b2b-backend/pkg/workflow"
)

type tenantRunner interface {
	RunTenant(ctx context.Context, email string, fn func(ctx context.Context) error) error
}

type employeeRepository interface {
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
	FindEmployeeByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Employee, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Employee, error)
	FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	FindCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

// EmployeeDTO is the serialized employee shape returned to clients.
type EmployeeDTO struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	CustomerID    string          `json:"customer_id"`
	Email         string          `json:"email"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	IsAdmin       bool            `json:"is_admin"`
	SpendingLimit decimal.Decimal `json:"spending_limit"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ProvisionInput captures the data needed to attach an identity to a
// company as an employee.
type ProvisionInput struct {
	Email         string
	FirstName     string
	LastName      string
	IsAdmin       bool
	SpendingLimit decimal.Decimal
}

// ProvisionResult reports the created employee and, when a new customer
// record was created, the one-time temp password.
type ProvisionResult struct {
	Employee     EmployeeDTO `json:"employee"`
	TempPassword string      `json:"temp_password,omitempty"`
}

// Service exposes employee provisioning and listing.
type Service interface {
	Provision(ctx context.Context, actor string, companyID uuid.UUID, input ProvisionInput) (*ProvisionResult, error)
	ListByCompany(ctx context.Context, actor string, companyID uuid.UUID) ([]EmployeeDTO, error)
}

type service struct {
	tenant      tenantRunner
	repo        employeeRepository
	identity    identity.Service
	passwordCfg config.PasswordConfig
	runner      *workflow.Runner
}

// NewService builds an employee service.
func NewService(tenant tenantRunner, repo employeeRepository, identitySvc identity.Service, passwordCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if tenant == nil {
		return nil, fmt.Errorf("tenant runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("employee repository required")
	}
	if identitySvc == nil {
		return nil, fmt.Errorf("identity service required")
	}
	runner, err := workflow.NewRunner("employee.provision", logg)
	if err != nil {
		return nil, err
	}
	return &service{
		tenant:      tenant,
		repo:        repo,
		identity:    identitySvc,
		passwordCfg: passwordCfg,
		runner:      runner,
	}, nil
}

// Provision attaches an identity to a company. The steps compensate in
// reverse on failure so a half-provisioned employee never persists: a
// customer created here is deleted again if the employee insert or the
// metadata derivation fails.
func (s *service) Provision(ctx context.Context, actor string, companyID uuid.UUID, input ProvisionInput) (*ProvisionResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email is required")
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	if input.SpendingLimit.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spending limit cannot be negative")
	}

	var (
		customer        *models.Customer
		createdCustomer bool
		tempPassword    string
		employee        *models.Employee
	)

	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		return s.runner.Execute(ctx,
			workflow.Step{
				Name: "ensure-customer",
				Run: func(ctx context.Context) error {
					existing, err := s.repo.FindCustomerByEmail(ctx, email)
					if err == nil {
						customer = existing
						return nil
					}
					if !errors.Is(err, gorm.ErrRecordNotFound) {
						return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
					}

					password, hashErr := s.hashTempPassword()
					if hashErr != nil {
						return hashErr
					}
					created := &models.Customer{
						Email:        email,
						FirstName:    strings.TrimSpace(input.FirstName),
						LastName:     strings.TrimSpace(input.LastName),
						PasswordHash: &password.hash,
					}
					if err := s.repo.CreateCustomer(ctx, created); err != nil {
						// A customer attached to another company is
						// filtered from this tenant's reads, so the
						// lookup above misses it and the insert trips
						// the unique email constraint instead.
						if code, _ := pkgerrors.PGViolation(err); code == pkgerrors.PGUniqueViolation {
							return pkgerrors.New(pkgerrors.CodeConflict, "customer email is already in use")
						}
						return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
					}
					customer = created
					createdCustomer = true
					tempPassword = password.plain
					return nil
				},
				Compensate: func(ctx context.Context) error {
					if !createdCustomer {
						return nil
					}
					return s.repo.DeleteCustomer(ctx, customer.ID)
				},
			},
			workflow.Step{
				Name: "create-employee",
				Run: func(ctx context.Context) error {
					if _, err := s.repo.FindEmployeeByCustomer(ctx, customer.ID); err == nil {
						return pkgerrors.New(pkgerrors.CodeConflict, "customer is already an employee")
					} else if !errors.Is(err, gorm.ErrRecordNotFound) {
						return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing employee")
					}

					row := &models.Employee{
						CompanyID:     companyID,
						CustomerID:    customer.ID,
						IsAdmin:       input.IsAdmin,
						SpendingLimit: input.SpendingLimit,
					}
					if err := s.repo.CreateEmployee(ctx, row); err != nil {
						return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create employee")
					}
					employee = row
					return nil
				},
				Compensate: func(ctx context.Context) error {
					return s.repo.DeleteEmployee(ctx, employee.ID)
				},
			},
			workflow.Step{
				Name: "derive-metadata",
				Run: func(ctx context.Context) error {
					_, err := s.identity.ProvisionFromEmployee(ctx, employee, email)
					return err
				},
			},
		)
	})
	if err != nil {
		return nil, err
	}

	return &ProvisionResult{
		Employee: EmployeeDTO{
			ID:            employee.ID.String(),
			CompanyID:     employee.CompanyID.String(),
			CustomerID:    customer.ID.String(),
			Email:         customer.Email,
			FirstName:     customer.FirstName,
			LastName:      customer.LastName,
			IsAdmin:       employee.IsAdmin,
			SpendingLimit: employee.SpendingLimit,
			CreatedAt:     employee.CreatedAt,
		},
		TempPassword: tempPassword,
	}, nil
}

// ListByCompany returns the employees of a company with their customer
// identity fields resolved. A customer row the session cannot see is
// skipped rather than failing the whole listing.
func (s *service) ListByCompany(ctx context.Context, actor string, companyID uuid.UUID) ([]EmployeeDTO, error) {
	var out []EmployeeDTO
	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		rows, err := s.repo.ListByCompany(ctx, companyID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list employees")
		}
		out = make([]EmployeeDTO, 0, len(rows))
		for i := range rows {
			customer, err := s.repo.FindCustomerByID(ctx, rows[i].CustomerID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee customer")
			}
			out = append(out, EmployeeDTO{
				ID:            rows[i].ID.String(),
				CompanyID:     rows[i].CompanyID.String(),
				CustomerID:    customer.ID.String(),
				Email:         customer.Email,
				FirstName:     customer.FirstName,
				LastName:      customer.LastName,
				IsAdmin:       rows[i].IsAdmin,
				SpendingLimit: rows[i].SpendingLimit,
				CreatedAt:     rows[i].CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type hashedPassword struct {
	plain string
	hash  string
}

func (s *service) hashTempPassword() (*hashedPassword, error) {
	plain, err := security.GenerateTempPassword(16)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(plain, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash temp password")
	}
	return &hashedPassword{plain: plain, hash: hash}, nil
}
