package links

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/linkcart/b2b-backend/pkg/db"
	"github.com/linkcart/b2b-backend/pkg/db/models"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
)

// Repository handles the company/store and product/store link tables.
// The link rows are the entire tenancy model: every visibility decision
// in the system reduces to whether one of these rows exists.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to link operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// conn prefers a transaction carried by the context (the tenant-bound
// per-request transaction) over the base connection.
func (r *Repository) conn(ctx context.Context) *gorm.DB {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// CreateCompanyStoreLink links a store to a company. Creating an
// existing link is a no-op: the composite unique constraint absorbs the
// duplicate via ON CONFLICT DO NOTHING, and the surviving row is
// re-read so callers never see a zero-valued id.
func (r *Repository) CreateCompanyStoreLink(ctx context.Context, companyID, storeID uuid.UUID) (*models.CompanyStoreLink, error) {
	link := &models.CompanyStoreLink{CompanyID: companyID, StoreID: storeID}
	res := r.conn(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(link)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		existing := &models.CompanyStoreLink{}
		if err := r.conn(ctx).
			Where("company_id = ? AND store_id = ?", companyID, storeID).
			First(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}
	return link, nil
}

// RemoveCompanyStoreLink unlinks a store from a company. Removing a
// link that does not exist returns NotFound so callers can distinguish
// "never linked" from "now unlinked".
func (r *Repository) RemoveCompanyStoreLink(ctx context.Context, companyID, storeID uuid.UUID) error {
	res := r.conn(ctx).
		Where("company_id = ? AND store_id = ?", companyID, storeID).
		Delete(&models.CompanyStoreLink{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "company store link not found")
	}
	return nil
}

// CompanyStoreLinkExists reports whether the company/store pair is linked.
func (r *Repository) CompanyStoreLinkExists(ctx context.Context, companyID, storeID uuid.UUID) (bool, error) {
	var link models.CompanyStoreLink
	err := r.conn(ctx).
		Where("company_id = ? AND store_id = ?", companyID, storeID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListStoreIDsByCompany returns the store ids linked to a company.
func (r *Repository) ListStoreIDsByCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.conn(ctx).
		Model(&models.CompanyStoreLink{}).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Pluck("store_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListCompanyIDsByStore returns the company ids linked to a store.
func (r *Repository) ListCompanyIDsByStore(ctx context.Context, storeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.conn(ctx).
		Model(&models.CompanyStoreLink{}).
		Where("store_id = ?", storeID).
		Order("created_at ASC").
		Pluck("company_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateProductStoreLink links a product to a store, idempotently. A
// duplicate pair returns the surviving row.
func (r *Repository) CreateProductStoreLink(ctx context.Context, productID, storeID uuid.UUID) (*models.ProductStoreLink, error) {
	link := &models.ProductStoreLink{ProductID: productID, StoreID: storeID}
	res := r.conn(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(link)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		existing := &models.ProductStoreLink{}
		if err := r.conn(ctx).
			Where("product_id = ? AND store_id = ?", productID, storeID).
			First(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}
	return link, nil
}

// RemoveProductStoreLink unlinks a product from a store; NotFound when
// the pair was not linked.
func (r *Repository) RemoveProductStoreLink(ctx context.Context, productID, storeID uuid.UUID) error {
	res := r.conn(ctx).
		Where("product_id = ? AND store_id = ?", productID, storeID).
		Delete(&models.ProductStoreLink{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product store link not found")
	}
	return nil
}

// ProductStoreLinkExists reports whether the product/store pair is linked.
func (r *Repository) ProductStoreLinkExists(ctx context.Context, productID, storeID uuid.UUID) (bool, error) {
	var link models.ProductStoreLink
	err := r.conn(ctx).
		Where("product_id = ? AND store_id = ?", productID, storeID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListProductIDsByStore returns the product ids linked to a store.
func (r *Repository) ListProductIDsByStore(ctx context.Context, storeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.conn(ctx).
		Model(&models.ProductStoreLink{}).
		Where("store_id = ?", storeID).
		Order("created_at ASC").
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListStoreIDsByProduct returns the store ids a product is linked to.
func (r *Repository) ListStoreIDsByProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.conn(ctx).
		Model(&models.ProductStoreLink{}).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Pluck("store_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
