package links

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkcart/b2b-backend/pkg/db/models"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
	"github.com/linkcart/b2b-backend/pkg/logger"
	"github.com/linkcart/b2b-backend/pkg/workflow"
)

type tenantRunner interface {
	RunTenant(ctx context.Context, email string, fn func(ctx context.Context) error) error
}

type linkRepository interface {
	CreateCompanyStoreLink(ctx context.Context, companyID, storeID uuid.UUID) (*models.CompanyStoreLink, error)
	RemoveCompanyStoreLink(ctx context.Context, companyID, storeID uuid.UUID) error
	CompanyStoreLinkExists(ctx context.Context, companyID, storeID uuid.UUID) (bool, error)
	ListStoreIDsByCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)
	CreateProductStoreLink(ctx context.Context, productID, storeID uuid.UUID) (*models.ProductStoreLink, error)
	RemoveProductStoreLink(ctx context.Context, productID, storeID uuid.UUID) error
	ProductStoreLinkExists(ctx context.Context, productID, storeID uuid.UUID) (bool, error)
	ListStoreIDsByProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
}

type companyFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

type storeFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Store, error)
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the tenant link operations. Every method that touches
// protected rows takes the acting identity's email so the work runs
// inside a tenant transaction and the row-level-security policies see
// the same actor the guards did.
type Service interface {
	LinkStoreToCompany(ctx context.Context, actor string, companyID, storeID uuid.UUID) (*models.CompanyStoreLink, error)
	UnlinkStoreFromCompany(ctx context.Context, actor string, companyID, storeID uuid.UUID) error
	ListCompanyStores(ctx context.Context, actor string, companyID uuid.UUID) ([]models.Store, error)
	CompanyStoreLinkExists(ctx context.Context, actor string, companyID, storeID uuid.UUID) (bool, error)
	LinkProductToStore(ctx context.Context, actor string, productID, storeID uuid.UUID) (*models.ProductStoreLink, error)
	UnlinkProductFromStore(ctx context.Context, actor string, productID, storeID uuid.UUID) error
	ListProductStores(ctx context.Context, actor string, productID uuid.UUID) ([]models.Store, error)
}

type service struct {
	tenant   tenantRunner
	repo     linkRepository
	company  companyFinder
	store    storeFinder
	product  productFinder
	runner   *workflow.Runner
	unlinker *workflow.Runner
}

// NewService builds the link service with workflow-backed mutations.
func NewService(tenant tenantRunner, repo linkRepository, company companyFinder, store storeFinder, product productFinder, logg *logger.Logger) (Service, error) {
	if tenant == nil {
		return nil, fmt.Errorf("tenant runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("link repository required")
	}
	if company == nil {
		return nil, fmt.Errorf("company repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if product == nil {
		return nil, fmt.Errorf("product repository required")
	}
	runner, err := workflow.NewRunner("link.create", logg)
	if err != nil {
		return nil, err
	}
	unlinker, err := workflow.NewRunner("link.remove", logg)
	if err != nil {
		return nil, err
	}
	return &service{
		tenant:   tenant,
		repo:     repo,
		company:  company,
		store:    store,
		product:  product,
		runner:   runner,
		unlinker: unlinker,
	}, nil
}

// LinkStoreToCompany attaches a store to a company. The create itself
// is idempotent, so retrying a half-finished request converges rather
// than erroring. Existence of the store is left to the foreign key:
// an unlinked store is not yet visible to a company admin, so a
// pre-read here would reject exactly the rows this call is meant to
// attach. Referential checks see the row regardless.
func (s *service) LinkStoreToCompany(ctx context.Context, actor string, companyID, storeID uuid.UUID) (*models.CompanyStoreLink, error) {
	var link *models.CompanyStoreLink
	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		return s.runner.Execute(ctx,
			workflow.Step{
				Name: "verify-company",
				Run: func(ctx context.Context) error {
					return s.verifyCompany(ctx, companyID)
				},
			},
			workflow.Step{
				Name: "create-link",
				Run: func(ctx context.Context) error {
					created, err := s.repo.CreateCompanyStoreLink(ctx, companyID, storeID)
					if err != nil {
						return linkWriteError(err, "create company store link")
					}
					link = created
					return nil
				},
				Compensate: func(ctx context.Context) error {
					err := s.repo.RemoveCompanyStoreLink(ctx, companyID, storeID)
					if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
						return nil
					}
					return err
				},
			},
		)
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// UnlinkStoreFromCompany removes the company/store association.
// NotFound surfaces when the pair was never linked.
func (s *service) UnlinkStoreFromCompany(ctx context.Context, actor string, companyID, storeID uuid.UUID) error {
	return s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		return s.unlinker.Execute(ctx,
			workflow.Step{
				Name: "verify-company",
				Run: func(ctx context.Context) error {
					return s.verifyCompany(ctx, companyID)
				},
			},
			workflow.Step{
				Name: "remove-link",
				Run: func(ctx context.Context) error {
					return s.repo.RemoveCompanyStoreLink(ctx, companyID, storeID)
				},
				Compensate: func(ctx context.Context) error {
					_, err := s.repo.CreateCompanyStoreLink(ctx, companyID, storeID)
					return err
				},
			},
		)
	})
}

// ListCompanyStores resolves the stores currently linked to a company.
func (s *service) ListCompanyStores(ctx context.Context, actor string, companyID uuid.UUID) ([]models.Store, error) {
	var stores []models.Store
	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		if err := s.verifyCompany(ctx, companyID); err != nil {
			return err
		}
		ids, err := s.repo.ListStoreIDsByCompany(ctx, companyID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list company store links")
		}
		if len(ids) == 0 {
			stores = []models.Store{}
			return nil
		}
		stores, err = s.store.FindByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load linked stores")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stores, nil
}

// CompanyStoreLinkExists reports whether the pair is linked. The check
// runs in a tenant transaction bound to the acting identity so the
// answer reflects the same row set the policies enforce. Used by the
// store access guard.
func (s *service) CompanyStoreLinkExists(ctx context.Context, actor string, companyID, storeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		found, err := s.repo.CompanyStoreLinkExists(ctx, companyID, storeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check company store link")
		}
		exists = found
		return nil
	})
	if err != nil {
		return false, err
	}
	return exists, nil
}

// LinkProductToStore attaches a product to a store, idempotently. The
// store must be visible to the actor; the product side rides on the
// foreign key because an unlinked product has no policy path for a
// company admin yet.
func (s *service) LinkProductToStore(ctx context.Context, actor string, productID, storeID uuid.UUID) (*models.ProductStoreLink, error) {
	var link *models.ProductStoreLink
	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		return s.runner.Execute(ctx,
			workflow.Step{
				Name: "verify-store",
				Run: func(ctx context.Context) error {
					return s.verifyStore(ctx, storeID)
				},
			},
			workflow.Step{
				Name: "create-link",
				Run: func(ctx context.Context) error {
					created, err := s.repo.CreateProductStoreLink(ctx, productID, storeID)
					if err != nil {
						return linkWriteError(err, "create product store link")
					}
					link = created
					return nil
				},
				Compensate: func(ctx context.Context) error {
					err := s.repo.RemoveProductStoreLink(ctx, productID, storeID)
					if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
						return nil
					}
					return err
				},
			},
		)
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// UnlinkProductFromStore removes the product/store association.
func (s *service) UnlinkProductFromStore(ctx context.Context, actor string, productID, storeID uuid.UUID) error {
	return s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		return s.unlinker.Execute(ctx,
			workflow.Step{
				Name: "verify-product",
				Run: func(ctx context.Context) error {
					return s.verifyProduct(ctx, productID)
				},
			},
			workflow.Step{
				Name: "remove-link",
				Run: func(ctx context.Context) error {
					return s.repo.RemoveProductStoreLink(ctx, productID, storeID)
				},
				Compensate: func(ctx context.Context) error {
					_, err := s.repo.CreateProductStoreLink(ctx, productID, storeID)
					return err
				},
			},
		)
	})
}

// ListProductStores resolves the stores a product is linked to.
func (s *service) ListProductStores(ctx context.Context, actor string, productID uuid.UUID) ([]models.Store, error) {
	var stores []models.Store
	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		if err := s.verifyProduct(ctx, productID); err != nil {
			return err
		}
		ids, err := s.repo.ListStoreIDsByProduct(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product store links")
		}
		if len(ids) == 0 {
			stores = []models.Store{}
			return nil
		}
		stores, err = s.store.FindByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load linked stores")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (s *service) verifyCompany(ctx context.Context, id uuid.UUID) error {
	if _, err := s.company.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	return nil
}

func (s *service) verifyStore(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return nil
}

func (s *service) verifyProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.product.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return nil
}

// linkWriteError maps a foreign key violation from a link insert onto
// the missing side. The constraint name carries the referencing column.
func linkWriteError(err error, op string) error {
	code, constraint := pkgerrors.PGViolation(err)
	if code == pkgerrors.PGForeignKeyViolation {
		switch {
		case strings.Contains(constraint, "company_id"):
			return pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		case strings.Contains(constraint, "product_id"):
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		case strings.Contains(constraint, "store_id"):
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
