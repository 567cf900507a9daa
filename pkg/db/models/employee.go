package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Employee attaches a customer identity to a company. Admin employees are
// the source record for company_admin role metadata.
type Employee struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID     uuid.UUID       `gorm:"column:company_id;type:uuid;not null;index"`
	CustomerID    uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;uniqueIndex"`
	IsAdmin       bool            `gorm:"column:is_admin;not null;default:false"`
	SpendingLimit decimal.Decimal `gorm:"column:spending_limit;type:numeric(12,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
