package employees

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/linkcart/b2b-backend/pkg/authz"
	"github.com/linkcart/b2b-backend/pkg/config"
	"github.com/linkcart/b2b-backend/pkg/db/models"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
)

type stubTenantRunner struct {
	emails []string
}

func (s *stubTenantRunner) RunTenant(ctx context.Context, email string, fn func(ctx context.Context) error) error {
	s.emails = append(s.emails, email)
	return fn(ctx)
}

type stubEmployeeRepo struct {
	customersByEmail map[string]*models.Customer
	customersByID    map[uuid.UUID]*models.Customer
	employeeByCust   map[uuid.UUID]*models.Employee
	listRows         []models.Employee
	listErr          error
	createEmpErr     error
	createCustErr    error

	createdCustomers []uuid.UUID
	deletedCustomers []uuid.UUID
	deletedEmployees []uuid.UUID
}

func newStubEmployeeRepo() *stubEmployeeRepo {
	return &stubEmployeeRepo{
		customersByEmail: make(map[string]*models.Customer),
		customersByID:    make(map[uuid.UUID]*models.Customer),
		employeeByCust:   make(map[uuid.UUID]*models.Employee),
	}
}

func (s *stubEmployeeRepo) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	if s.createEmpErr != nil {
		return s.createEmpErr
	}
	employee.ID = uuid.New()
	s.employeeByCust[employee.CustomerID] = employee
	return nil
}

func (s *stubEmployeeRepo) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	s.deletedEmployees = append(s.deletedEmployees, id)
	return nil
}

func (s *stubEmployeeRepo) FindEmployeeByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Employee, error) {
	if emp, ok := s.employeeByCust[customerID]; ok {
		return emp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubEmployeeRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Employee, error) {
	return s.listRows, s.listErr
}

func (s *stubEmployeeRepo) FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	if customer, ok := s.customersByEmail[email]; ok {
		return customer, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubEmployeeRepo) FindCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if customer, ok := s.customersByID[id]; ok {
		return customer, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubEmployeeRepo) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if s.createCustErr != nil {
		return s.createCustErr
	}
	customer.ID = uuid.New()
	s.customersByEmail[customer.Email] = customer
	s.customersByID[customer.ID] = customer
	s.createdCustomers = append(s.createdCustomers, customer.ID)
	return nil
}

func (s *stubEmployeeRepo) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	s.deletedCustomers = append(s.deletedCustomers, id)
	return nil
}

type fakeIdentityService struct {
	provisionErr error
	provisioned  *models.Employee
}

func (f *fakeIdentityService) Resolve(ctx context.Context, email string) (authz.TenantContext, error) {
	return authz.Unprovisioned(email), nil
}

func (f *fakeIdentityService) ProvisionFromEmployee(ctx context.Context, employee *models.Employee, email string) (*models.IdentityMetadata, error) {
	if f.provisionErr != nil {
		return nil, f.provisionErr
	}
	f.provisioned = employee
	return &models.IdentityMetadata{Email: email}, nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newTestService(t *testing.T, tenant *stubTenantRunner, repo *stubEmployeeRepo, ident *fakeIdentityService) Service {
	t.Helper()
	svc, err := NewService(tenant, repo, ident, testPasswordConfig(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestProvisionCreatesCustomerAndEmployee(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := newStubEmployeeRepo()
	ident := &fakeIdentityService{}
	svc := newTestService(t, tenant, repo, ident)

	companyID := uuid.New()
	result, err := svc.Provision(context.Background(), "admin@acme.test", companyID, ProvisionInput{
		Email:     "New.Hire@Acme.Test",
		FirstName: "New",
		LastName:  "Hire",
		IsAdmin:   true,
	})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}

	if result.Employee.Email != "new.hire@acme.test" {
		t.Fatalf("expected lowercased email, got %q", result.Employee.Email)
	}
	if result.Employee.CompanyID != companyID.String() {
		t.Fatalf("unexpected company %q", result.Employee.CompanyID)
	}
	if !result.Employee.IsAdmin {
		t.Fatal("expected admin employee")
	}
	if result.TempPassword == "" {
		t.Fatal("expected temp password for a fresh customer")
	}
	if len(repo.createdCustomers) != 1 {
		t.Fatalf("expected 1 customer created, got %d", len(repo.createdCustomers))
	}
	if ident.provisioned == nil {
		t.Fatal("expected metadata derivation to run")
	}
	if len(tenant.emails) != 1 || tenant.emails[0] != "admin@acme.test" {
		t.Fatalf("expected tenant transaction for actor, got %v", tenant.emails)
	}

	created := repo.customersByEmail["new.hire@acme.test"]
	if created == nil || created.PasswordHash == nil || *created.PasswordHash == "" {
		t.Fatal("expected password hash stored on the new customer")
	}
}

func TestProvisionReusesExistingCustomer(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := newStubEmployeeRepo()
	existing := &models.Customer{ID: uuid.New(), Email: "veteran@acme.test", FirstName: "Vera", LastName: "Tran"}
	repo.customersByEmail[existing.Email] = existing
	repo.customersByID[existing.ID] = existing
	svc := newTestService(t, tenant, repo, &fakeIdentityService{})

	result, err := svc.Provision(context.Background(), "admin@acme.test", uuid.New(), ProvisionInput{
		Email:     "veteran@acme.test",
		FirstName: "Vera",
		LastName:  "Tran",
	})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if result.TempPassword != "" {
		t.Fatal("existing customer must not get a new temp password")
	}
	if len(repo.createdCustomers) != 0 {
		t.Fatal("expected no customer created")
	}
	if result.Employee.CustomerID != existing.ID.String() {
		t.Fatalf("expected existing customer reused, got %q", result.Employee.CustomerID)
	}
}

func TestProvisionConflictWhenAlreadyEmployee(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := newStubEmployeeRepo()
	existing := &models.Customer{ID: uuid.New(), Email: "veteran@acme.test", FirstName: "Vera", LastName: "Tran"}
	repo.customersByEmail[existing.Email] = existing
	repo.customersByID[existing.ID] = existing
	repo.employeeByCust[existing.ID] = &models.Employee{ID: uuid.New(), CustomerID: existing.ID}
	svc := newTestService(t, tenant, repo, &fakeIdentityService{})

	_, err := svc.Provision(context.Background(), "admin@acme.test", uuid.New(), ProvisionInput{
		Email:     "veteran@acme.test",
		FirstName: "Vera",
		LastName:  "Tran",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestProvisionConflictWhenEmailClaimedElsewhere(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := newStubEmployeeRepo()
	// The customer belongs to another company: invisible to this
	// tenant's lookup, so the insert hits the unique email constraint.
	repo.createCustErr = &pgconn.PgError{Code: "23505", ConstraintName: "customers_email_key"}
	svc := newTestService(t, tenant, repo, &fakeIdentityService{})

	_, err := svc.Provision(context.Background(), "admin@acme.test", uuid.New(), ProvisionInput{
		Email:     "taken@globex.test",
		FirstName: "Tess",
		LastName:  "Aken",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.deletedCustomers) != 0 {
		t.Fatal("nothing was created, nothing should be compensated")
	}
}

func TestProvisionConflictUnwindsCreatedCustomer(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := newStubEmployeeRepo()
	repo.createEmpErr = errors.New("insert failed")
	svc := newTestService(t, tenant, repo, &fakeIdentityService{})

	_, err := svc.Provision(context.Background(), "admin@acme.test", uuid.New(), ProvisionInput{
		Email:     "new.hire@acme.test",
		FirstName: "New",
		LastName:  "Hire",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.createdCustomers) != 1 {
		t.Fatalf("expected customer creation before failure, got %d", len(repo.createdCustomers))
	}
	if len(repo.deletedCustomers) != 1 || repo.deletedCustomers[0] != repo.createdCustomers[0] {
		t.Fatalf("expected created customer compensated away, got %v", repo.deletedCustomers)
	}
}

func TestProvisionMetadataFailureUnwindsEmployeeAndCustomer(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := newStubEmployeeRepo()
	svc := newTestService(t, tenant, repo, &fakeIdentityService{provisionErr: errors.New("metadata store down")})

	_, err := svc.Provision(context.Background(), "admin@acme.test", uuid.New(), ProvisionInput{
		Email:     "new.hire@acme.test",
		FirstName: "New",
		LastName:  "Hire",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.deletedEmployees) != 1 {
		t.Fatalf("expected employee compensated away, got %v", repo.deletedEmployees)
	}
	if len(repo.deletedCustomers) != 1 {
		t.Fatalf("expected customer compensated away, got %v", repo.deletedCustomers)
	}
}

func TestProvisionValidation(t *testing.T) {
	svc := newTestService(t, &stubTenantRunner{}, newStubEmployeeRepo(), &fakeIdentityService{})
	ctx := context.Background()
	companyID := uuid.New()

	cases := []struct {
		name  string
		input ProvisionInput
	}{
		{"missing email", ProvisionInput{FirstName: "A", LastName: "B"}},
		{"malformed email", ProvisionInput{Email: "not-an-email", FirstName: "A", LastName: "B"}},
		{"missing first name", ProvisionInput{Email: "a@b.test", LastName: "B"}},
		{"missing last name", ProvisionInput{Email: "a@b.test", FirstName: "A"}},
		{"negative spending limit", ProvisionInput{Email: "a@b.test", FirstName: "A", LastName: "B", SpendingLimit: decimal.NewFromInt(-1)}},
	}
	for _, tc := range cases {
		_, err := svc.Provision(ctx, "admin@acme.test", companyID, tc.input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestListByCompanySkipsInvisibleCustomers(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := newStubEmployeeRepo()

	visible := &models.Customer{ID: uuid.New(), Email: "visible@acme.test", FirstName: "Vi", LastName: "Sible"}
	repo.customersByID[visible.ID] = visible

	companyID := uuid.New()
	repo.listRows = []models.Employee{
		{ID: uuid.New(), CompanyID: companyID, CustomerID: visible.ID},
		{ID: uuid.New(), CompanyID: companyID, CustomerID: uuid.New()},
	}
	svc := newTestService(t, tenant, repo, &fakeIdentityService{})

	out, err := svc.ListByCompany(context.Background(), "admin@acme.test", companyID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected hidden customer skipped, got %d rows", len(out))
	}
	if out[0].Email != "visible@acme.test" {
		t.Fatalf("unexpected row %+v", out[0])
	}
}

func TestListByCompanyRepoFailure(t *testing.T) {
	repo := newStubEmployeeRepo()
	repo.listErr = errors.New("boom")
	svc := newTestService(t, &stubTenantRunner{}, repo, &fakeIdentityService{})

	_, err := svc.ListByCompany(context.Background(), "admin@acme.test", uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
