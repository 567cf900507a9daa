package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanyStoreLink associates a company with a store. At most one logical
// link exists per pair; absence of the row is what hides the store from
// the company.
type CompanyStoreLink struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;uniqueIndex:ux_company_store,priority:1;index"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_company_store,priority:2;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CompanyStoreLink) TableName() string {
	return "company_store_links"
}

// ProductStoreLink associates a product with the storefront exposing it.
type ProductStoreLink struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_product_store,priority:1;index"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_product_store,priority:2;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProductStoreLink) TableName() string {
	return "product_store_links"
}
