package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is a sellable storefront. It carries no tenant column; company
// ownership is expressed through CompanyStoreLink rows.
type Store struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Store) TableName() string {
	return "stores"
}
