package links

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

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

type stubLinkRepo struct {
	companyLink    *models.CompanyStoreLink
	productLink    *models.ProductStoreLink
	createErr      error
	removeErr      error
	existsResult   bool
	existsErr      error
	storeIDs       []uuid.UUID
	listErr        error
	createdCompany int
	createdProduct int
	removedCompany int
	removedProduct int
}

func (s *stubLinkRepo) CreateCompanyStoreLink(ctx context.Context, companyID, storeID uuid.UUID) (*models.CompanyStoreLink, error) {
	s.createdCompany++
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.companyLink != nil {
		return s.companyLink, nil
	}
	return &models.CompanyStoreLink{ID: uuid.New(), CompanyID: companyID, StoreID: storeID}, nil
}

func (s *stubLinkRepo) RemoveCompanyStoreLink(ctx context.Context, companyID, storeID uuid.UUID) error {
	s.removedCompany++
	return s.removeErr
}

func (s *stubLinkRepo) CompanyStoreLinkExists(ctx context.Context, companyID, storeID uuid.UUID) (bool, error) {
	return s.existsResult, s.existsErr
}

func (s *stubLinkRepo) ListStoreIDsByCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	return s.storeIDs, s.listErr
}

func (s *stubLinkRepo) CreateProductStoreLink(ctx context.Context, productID, storeID uuid.UUID) (*models.ProductStoreLink, error) {
	s.createdProduct++
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.productLink != nil {
		return s.productLink, nil
	}
	return &models.ProductStoreLink{ID: uuid.New(), ProductID: productID, StoreID: storeID}, nil
}

func (s *stubLinkRepo) RemoveProductStoreLink(ctx context.Context, productID, storeID uuid.UUID) error {
	s.removedProduct++
	return s.removeErr
}

func (s *stubLinkRepo) ProductStoreLinkExists(ctx context.Context, productID, storeID uuid.UUID) (bool, error) {
	return s.existsResult, s.existsErr
}

func (s *stubLinkRepo) ListStoreIDsByProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	return s.storeIDs, s.listErr
}

type stubCompanyFinder struct {
	err error
}

func (s stubCompanyFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Company{ID: id, Name: "Acme"}, nil
}

type stubStoreFinder struct {
	err    error
	stores []models.Store
}

func (s stubStoreFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Store{ID: id, Name: "Main Street"}, nil
}

func (s stubStoreFinder) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stores, nil
}

type stubProductFinder struct {
	err error
}

func (s stubProductFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Product{ID: id, Title: "Widget"}, nil
}

func newTestService(t *testing.T, tenant *stubTenantRunner, repo *stubLinkRepo, company stubCompanyFinder, store stubStoreFinder, product stubProductFinder) Service {
	t.Helper()
	svc, err := NewService(tenant, repo, company, store, product, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	repo := &stubLinkRepo{}
	tenant := &stubTenantRunner{}
	if _, err := NewService(nil, repo, stubCompanyFinder{}, stubStoreFinder{}, stubProductFinder{}, nil); err == nil {
		t.Fatal("expected error without tenant runner")
	}
	if _, err := NewService(tenant, nil, stubCompanyFinder{}, stubStoreFinder{}, stubProductFinder{}, nil); err == nil {
		t.Fatal("expected error without repo")
	}
}

func TestLinkStoreToCompanySuccess(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := &stubLinkRepo{}
	svc := newTestService(t, tenant, repo, stubCompanyFinder{}, stubStoreFinder{}, stubProductFinder{})

	companyID, storeID := uuid.New(), uuid.New()
	link, err := svc.LinkStoreToCompany(context.Background(), "admin@acme.test", companyID, storeID)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if link.CompanyID != companyID || link.StoreID != storeID {
		t.Fatalf("unexpected link %+v", link)
	}
	if repo.createdCompany != 1 {
		t.Fatalf("expected 1 create, got %d", repo.createdCompany)
	}
	if len(tenant.emails) != 1 || tenant.emails[0] != "admin@acme.test" {
		t.Fatalf("expected tenant transaction for actor, got %v", tenant.emails)
	}
}

func TestLinkStoreToCompanyMissingCompany(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := &stubLinkRepo{}
	svc := newTestService(t, tenant, repo, stubCompanyFinder{err: gorm.ErrRecordNotFound}, stubStoreFinder{}, stubProductFinder{})

	_, err := svc.LinkStoreToCompany(context.Background(), "admin@acme.test", uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.createdCompany != 0 {
		t.Fatal("expected no link created for missing company")
	}
}

func TestLinkStoreToCompanyMissingStore(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := &stubLinkRepo{createErr: &pgconn.PgError{Code: "23503", ConstraintName: "company_store_links_store_id_fkey"}}
	svc := newTestService(t, tenant, repo, stubCompanyFinder{}, stubStoreFinder{}, stubProductFinder{})

	_, err := svc.LinkStoreToCompany(context.Background(), "admin@acme.test", uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if typed.Message() != "store not found" {
		t.Fatalf("expected the store side named, got %q", typed.Message())
	}
}

func TestLinkStoreToCompanyCreateFailure(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := &stubLinkRepo{createErr: errors.New("connection reset")}
	svc := newTestService(t, tenant, repo, stubCompanyFinder{}, stubStoreFinder{}, stubProductFinder{})

	_, err := svc.LinkStoreToCompany(context.Background(), "admin@acme.test", uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestUnlinkStoreFromCompanyNotLinked(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := &stubLinkRepo{removeErr: pkgerrors.New(pkgerrors.CodeNotFound, "company store link not found")}
	svc := newTestService(t, tenant, repo, stubCompanyFinder{}, stubStoreFinder{}, stubProductFinder{})

	err := svc.UnlinkStoreFromCompany(context.Background(), "admin@acme.test", uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListCompanyStores(t *testing.T) {
	storeID := uuid.New()
	tenant := &stubTenantRunner{}
	repo := &stubLinkRepo{storeIDs: []uuid.UUID{storeID}}
	finder := stubStoreFinder{stores: []models.Store{{ID: storeID, Name: "Main Street"}}}
	svc := newTestService(t, tenant, repo, stubCompanyFinder{}, finder, stubProductFinder{})

	stores, err := svc.ListCompanyStores(context.Background(), "admin@acme.test", uuid.New())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stores) != 1 || stores[0].ID != storeID {
		t.Fatalf("unexpected stores %v", stores)
	}
}

func TestListCompanyStoresEmpty(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := &stubLinkRepo{}
	svc := newTestService(t, tenant, repo, stubCompanyFinder{}, stubStoreFinder{}, stubProductFinder{})

	stores, err := svc.ListCompanyStores(context.Background(), "admin@acme.test", uuid.New())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if stores == nil || len(stores) != 0 {
		t.Fatalf("expected empty slice, got %v", stores)
	}
}

func TestCompanyStoreLinkExistsRunsAsActor(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := &stubLinkRepo{existsResult: true}
	svc := newTestService(t, tenant, repo, stubCompanyFinder{}, stubStoreFinder{}, stubProductFinder{})

	ok, err := svc.CompanyStoreLinkExists(context.Background(), "admin@acme.test", uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatal("expected link to exist")
	}
	if len(tenant.emails) != 1 || tenant.emails[0] != "admin@acme.test" {
		t.Fatalf("guard lookup must run as the caller, got %v", tenant.emails)
	}
}

func TestLinkProductToStoreSuccess(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := &stubLinkRepo{}
	svc := newTestService(t, tenant, repo, stubCompanyFinder{}, stubStoreFinder{}, stubProductFinder{})

	productID, storeID := uuid.New(), uuid.New()
	link, err := svc.LinkProductToStore(context.Background(), "admin@acme.test", productID, storeID)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if link.ProductID != productID || link.StoreID != storeID {
		t.Fatalf("unexpected link %+v", link)
	}
}

func TestLinkProductToStoreMissingProduct(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := &stubLinkRepo{createErr: &pgconn.PgError{Code: "23503", ConstraintName: "product_store_links_product_id_fkey"}}
	svc := newTestService(t, tenant, repo, stubCompanyFinder{}, stubStoreFinder{}, stubProductFinder{})

	_, err := svc.LinkProductToStore(context.Background(), "admin@acme.test", uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if typed.Message() != "product not found" {
		t.Fatalf("expected the product side named, got %q", typed.Message())
	}
}

func TestLinkProductToStoreMissingStore(t *testing.T) {
	tenant := &stubTenantRunner{}
	repo := &stubLinkRepo{}
	svc := newTestService(t, tenant, repo, stubCompanyFinder{}, stubStoreFinder{err: gorm.ErrRecordNotFound}, stubProductFinder{})

	_, err := svc.LinkProductToStore(context.Background(), "admin@acme.test", uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.createdProduct != 0 {
		t.Fatal("expected no link created for a store outside the caller's reach")
	}
}

func TestListProductStores(t *testing.T) {
	storeID := uuid.New()
	tenant := &stubTenantRunner{}
	repo := &stubLinkRepo{storeIDs: []uuid.UUID{storeID}}
	finder := stubStoreFinder{stores: []models.Store{{ID: storeID, Name: "Main Street"}}}
	svc := newTestService(t, tenant, repo, stubCompanyFinder{}, finder, stubProductFinder{})

	stores, err := svc.ListProductStores(context.Background(), "admin@acme.test", uuid.New())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stores) != 1 || stores[0].ID != storeID {
		t.Fatalf("unexpected stores %v", stores)
	}
}
