package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/linkcart/b2b-backend/pkg/enums"
)

// IdentityMetadata carries the authorization attributes of one login
// identity, keyed by email. It is written by provisioning flows only and
// read on every authenticated request, both by the middleware chain and
// by the row-level-security helper functions.
type IdentityMetadata struct {
	Email     string         `gorm:"column:email;type:text;primaryKey"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'company_user'"`
	CompanyID *uuid.UUID     `gorm:"column:company_id;type:uuid"`
	StoreIDs  pq.StringArray `gorm:"column:store_ids;type:text[];not null;default:'{}'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (IdentityMetadata) TableName() string {
	return "identity_metadata"
}
