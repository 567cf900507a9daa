//go:build db
// +build db

package links

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/linkcart/b2b-backend/pkg/db"
	"github.com/linkcart/b2b-backend/pkg/db/models"
	"github.com/linkcart/b2b-backend/pkg/enums"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("LINKCART_DB_DSN")
	if dsn == "" {
		t.Skip("LINKCART_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

// seedIdentity registers a login identity so the row policies can
// resolve a role for it. identity_metadata itself is not policed, so
// this works before any session email is bound.
func seedIdentity(t *testing.T, tx *gorm.DB, role enums.UserRole, companyID *uuid.UUID) string {
	t.Helper()

	email := fmt.Sprintf("lc_%s_%s@test.local", role, uuid.NewString())
	row := &models.IdentityMetadata{Email: email, Role: role, CompanyID: companyID}
	if err := tx.Create(row).Error; err != nil {
		t.Fatalf("seed identity: %v", err)
	}
	return email
}

// bindSession switches the transaction-local session identity, the
// same call the tenant runner issues for real requests.
func bindSession(t *testing.T, tx *gorm.DB, email string) {
	t.Helper()
	if err := db.BindSessionEmail(tx, email); err != nil {
		t.Fatalf("bind session %s: %v", email, err)
	}
}

func beginPlatformTx(t *testing.T) *gorm.DB {
	t.Helper()

	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})
	bindSession(t, tx, seedIdentity(t, tx, enums.UserRolePlatformAdmin, nil))
	return tx
}

func seedCompanyAndStores(t *testing.T, tx *gorm.DB) (*models.Company, []*models.Store) {
	t.Helper()

	company := &models.Company{ID: uuid.New(), Name: fmt.Sprintf("lc_test_%s", uuid.NewString())}
	if err := tx.Create(company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}

	stores := make([]*models.Store, 2)
	for i := range stores {
		stores[i] = &models.Store{ID: uuid.New(), Name: fmt.Sprintf("lc_store_%d_%s", i, uuid.NewString())}
		if err := tx.Create(stores[i]).Error; err != nil {
			t.Fatalf("create store: %v", err)
		}
	}
	return company, stores
}

func TestRepositoryCompanyStoreLinkFlow(t *testing.T) {
	tx := beginPlatformTx(t)

	repo := NewRepository(tx)
	ctx := context.Background()
	company, stores := seedCompanyAndStores(t, tx)

	link, err := repo.CreateCompanyStoreLink(ctx, company.ID, stores[0].ID)
	if err != nil {
		t.Fatalf("create link: %v", err)
	}
	if link.CompanyID != company.ID || link.StoreID != stores[0].ID {
		t.Fatalf("unexpected link %+v", link)
	}

	// Linking the same pair again is a no-op, not an error, and the
	// caller still gets the surviving row back.
	again, err := repo.CreateCompanyStoreLink(ctx, company.ID, stores[0].ID)
	if err != nil {
		t.Fatalf("repeat create link: %v", err)
	}
	if again.ID != link.ID {
		t.Fatalf("expected the surviving row, got id %s want %s", again.ID, link.ID)
	}
	ids, err := repo.ListStoreIDsByCompany(ctx, company.ID)
	if err != nil {
		t.Fatalf("list store ids: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected duplicate link absorbed, got %d rows", len(ids))
	}

	ok, err := repo.CompanyStoreLinkExists(ctx, company.ID, stores[0].ID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatal("expected link to exist")
	}
	ok, err = repo.CompanyStoreLinkExists(ctx, company.ID, stores[1].ID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatal("expected no link for unlinked store")
	}

	if _, err := repo.CreateCompanyStoreLink(ctx, company.ID, stores[1].ID); err != nil {
		t.Fatalf("create second link: %v", err)
	}
	ids, err = repo.ListStoreIDsByCompany(ctx, company.ID)
	if err != nil {
		t.Fatalf("list store ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != stores[0].ID || ids[1] != stores[1].ID {
		t.Fatalf("expected creation-ordered ids, got %v", ids)
	}

	companies, err := repo.ListCompanyIDsByStore(ctx, stores[0].ID)
	if err != nil {
		t.Fatalf("list company ids: %v", err)
	}
	if len(companies) != 1 || companies[0] != company.ID {
		t.Fatalf("unexpected companies %v", companies)
	}

	if err := repo.RemoveCompanyStoreLink(ctx, company.ID, stores[0].ID); err != nil {
		t.Fatalf("remove link: %v", err)
	}
	err = repo.RemoveCompanyStoreLink(ctx, company.ID, stores[0].ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second removal, got %v", err)
	}
}

// The store guard's link lookup runs with the caller's session email
// bound. The policies must answer it: a company admin sees their own
// company's link rows, while an admin of another company sees nothing
// for the same pair.
func TestRepositoryLinkLookupFollowsSessionIdentity(t *testing.T) {
	tx := beginPlatformTx(t)

	repo := NewRepository(tx)
	ctx := context.Background()
	company, stores := seedCompanyAndStores(t, tx)
	other := &models.Company{ID: uuid.New(), Name: fmt.Sprintf("lc_other_%s", uuid.NewString())}
	if err := tx.Create(other).Error; err != nil {
		t.Fatalf("create other company: %v", err)
	}

	if _, err := repo.CreateCompanyStoreLink(ctx, company.ID, stores[0].ID); err != nil {
		t.Fatalf("create link: %v", err)
	}

	ownAdmin := seedIdentity(t, tx, enums.UserRoleCompanyAdmin, &company.ID)
	otherAdmin := seedIdentity(t, tx, enums.UserRoleCompanyAdmin, &other.ID)

	bindSession(t, tx, ownAdmin)
	ok, err := repo.CompanyStoreLinkExists(ctx, company.ID, stores[0].ID)
	if err != nil {
		t.Fatalf("exists as own admin: %v", err)
	}
	if !ok {
		t.Fatal("expected own company admin to see the link")
	}

	bindSession(t, tx, otherAdmin)
	ok, err = repo.CompanyStoreLinkExists(ctx, company.ID, stores[0].ID)
	if err != nil {
		t.Fatalf("exists as other admin: %v", err)
	}
	if ok {
		t.Fatal("expected the link hidden from another company's admin")
	}
}

// A company admin can attach a store their company has never been
// linked to: there is no pre-read of the store, and the insert passes
// the link table's own-company write policy.
func TestRepositoryCompanyAdminLinksNewStore(t *testing.T) {
	tx := beginPlatformTx(t)

	repo := NewRepository(tx)
	ctx := context.Background()
	company, stores := seedCompanyAndStores(t, tx)
	admin := seedIdentity(t, tx, enums.UserRoleCompanyAdmin, &company.ID)

	bindSession(t, tx, admin)
	link, err := repo.CreateCompanyStoreLink(ctx, company.ID, stores[0].ID)
	if err != nil {
		t.Fatalf("create link as company admin: %v", err)
	}
	if link.ID == uuid.Nil {
		t.Fatal("expected a persisted link id")
	}

	ok, err := repo.CompanyStoreLinkExists(ctx, company.ID, stores[0].ID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatal("expected the admin to see the link they created")
	}
}

func TestRepositoryProductStoreLinkFlow(t *testing.T) {
	tx := beginPlatformTx(t)

	repo := NewRepository(tx)
	ctx := context.Background()
	_, stores := seedCompanyAndStores(t, tx)

	product := &models.Product{
		ID:     uuid.New(),
		Title:  "Test Widget",
		Handle: fmt.Sprintf("lc-widget-%s", uuid.NewString()),
		Status: "active",
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	link, err := repo.CreateProductStoreLink(ctx, product.ID, stores[0].ID)
	if err != nil {
		t.Fatalf("create link: %v", err)
	}
	again, err := repo.CreateProductStoreLink(ctx, product.ID, stores[0].ID)
	if err != nil {
		t.Fatalf("repeat create link: %v", err)
	}
	if again.ID != link.ID {
		t.Fatalf("expected the surviving row, got id %s want %s", again.ID, link.ID)
	}

	productIDs, err := repo.ListProductIDsByStore(ctx, stores[0].ID)
	if err != nil {
		t.Fatalf("list product ids: %v", err)
	}
	if len(productIDs) != 1 || productIDs[0] != product.ID {
		t.Fatalf("unexpected product ids %v", productIDs)
	}

	storeIDs, err := repo.ListStoreIDsByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("list store ids: %v", err)
	}
	if len(storeIDs) != 1 || storeIDs[0] != stores[0].ID {
		t.Fatalf("unexpected store ids %v", storeIDs)
	}

	if err := repo.RemoveProductStoreLink(ctx, product.ID, stores[0].ID); err != nil {
		t.Fatalf("remove link: %v", err)
	}
	err = repo.RemoveProductStoreLink(ctx, product.ID, stores[0].ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second removal, got %v", err)
	}
}
