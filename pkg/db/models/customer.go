package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the login-facing identity record. The email doubles as the
// stable identifier mirrored into the database session for row filtering.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	FirstName string    `gorm:"column:first_name;not null"`
	LastName  string    `gorm:"column:last_name;not null"`

	// PasswordHash holds the Argon2id hash set during provisioning.
	PasswordHash *string `gorm:"column:password_hash"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Customer) TableName() string {
	return "customers"
}
