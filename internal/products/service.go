package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkcart/b2b-backend/pkg/db/models"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
	"github.com/linkcart/b2b-backend/pkg/logger"
)

type tenantRunner interface {
	RunTenant(ctx context.Context, email string, fn func(ctx context.Context) error) error
}

type productRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type productLinkLister interface {
	ListProductIDsByStore(ctx context.Context, storeID uuid.UUID) ([]uuid.UUID, error)
	ListStoreIDsByCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)
}

// ProductDTO is the serialized product shape returned to clients.
type ProductDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoreProductsResult reports the products resolved for a store.
// LinkedCount is the number of link rows seen; Count is the number of
// products actually returned, which is lower when individual product
// loads were filtered or failed.
type StoreProductsResult struct {
	StoreID     string       `json:"store_id"`
	Products    []ProductDTO `json:"products"`
	Count       int          `json:"count"`
	LinkedCount int          `json:"linked_count"`
}

// CompanyProductsResult groups the per-store product listings for every
// store linked to a company.
type CompanyProductsResult struct {
	CompanyID  string                `json:"company_id"`
	Stores     []StoreProductsResult `json:"stores"`
	StoreCount int                   `json:"store_count"`
	Count      int                   `json:"count"`
}

// Service exposes the store- and company-scoped product read side.
type Service interface {
	ListStoreProducts(ctx context.Context, actor string, storeID uuid.UUID) (*StoreProductsResult, error)
	ListCompanyProducts(ctx context.Context, actor string, companyID uuid.UUID) (*CompanyProductsResult, error)
}

type service struct {
	tenant tenantRunner
	repo   productRepository
	links  productLinkLister
	logg   *logger.Logger
}

// NewService builds the product read service.
func NewService(tenant tenantRunner, repo productRepository, links productLinkLister, logg *logger.Logger) (Service, error) {
	if tenant == nil {
		return nil, fmt.Errorf("tenant runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if links == nil {
		return nil, fmt.Errorf("link lister required")
	}
	return &service{tenant: tenant, repo: repo, links: links, logg: logg}, nil
}

// ListStoreProducts resolves the products linked to a store. Each
// product loads individually; a row the row-level-security policies hide
// or a load that fails degrades to an omitted entry instead of failing
// the batch. The whole read runs inside one tenant transaction.
func (s *service) ListStoreProducts(ctx context.Context, actor string, storeID uuid.UUID) (*StoreProductsResult, error) {
	var result *StoreProductsResult

	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		collected, err := s.collectStoreProducts(ctx, storeID)
		if err != nil {
			return err
		}
		result = collected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListCompanyProducts walks every store linked to the company and
// aggregates their product listings. Stores and products the policies
// hide from the actor simply do not contribute, so the same endpoint
// serves platform and company admins with different slices.
func (s *service) ListCompanyProducts(ctx context.Context, actor string, companyID uuid.UUID) (*CompanyProductsResult, error) {
	result := &CompanyProductsResult{CompanyID: companyID.String(), Stores: []StoreProductsResult{}}

	err := s.tenant.RunTenant(ctx, actor, func(ctx context.Context) error {
		storeIDs, err := s.links.ListStoreIDsByCompany(ctx, companyID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list company store links")
		}

		for _, storeID := range storeIDs {
			collected, err := s.collectStoreProducts(ctx, storeID)
			if err != nil {
				if s.logg != nil {
					lctx := s.logg.WithFields(ctx, map[string]any{
						"company_id": companyID.String(),
						"store_id":   storeID.String(),
					})
					s.logg.Warn(lctx, "skipping store that failed to list")
				}
				continue
			}
			result.Stores = append(result.Stores, *collected)
			result.Count += collected.Count
		}
		result.StoreCount = len(result.Stores)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// collectStoreProducts must run inside a tenant transaction.
func (s *service) collectStoreProducts(ctx context.Context, storeID uuid.UUID) (*StoreProductsResult, error) {
	result := &StoreProductsResult{StoreID: storeID.String(), Products: []ProductDTO{}}

	ids, err := s.links.ListProductIDsByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product store links")
	}
	result.LinkedCount = len(ids)

	for _, id := range ids {
		product, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) && s.logg != nil {
				lctx := s.logg.WithFields(ctx, map[string]any{
					"product_id": id.String(),
					"store_id":   storeID.String(),
				})
				s.logg.Warn(lctx, "skipping product that failed to load")
			}
			continue
		}
		result.Products = append(result.Products, ProductDTO{
			ID:          product.ID.String(),
			Title:       product.Title,
			Handle:      product.Handle,
			Description: product.Description,
			Status:      product.Status,
			CreatedAt:   product.CreatedAt,
		})
	}
	result.Count = len(result.Products)
	return result, nil
}
