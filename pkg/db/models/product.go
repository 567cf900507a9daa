package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is catalog inventory. Visibility to a tenant is determined
// solely by ProductStoreLink existence.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Handle      string    `gorm:"column:handle;not null;uniqueIndex"`
	Description *string   `gorm:"column:description"`
	Status      string    `gorm:"column:status;not null;default:'draft'"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
