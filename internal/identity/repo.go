package identity

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/linkcart/b2b-backend/pkg/db"
	"github.com/linkcart/b2b-backend/pkg/db/models"
)

// Repository handles identity metadata persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to identity metadata operations.
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

// FindByEmail loads the metadata record for an email. Returns
// gorm.ErrRecordNotFound when no record exists; callers decide whether
// that degrades to the default tier or surfaces.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.IdentityMetadata, error) {
	var meta models.IdentityMetadata
	if err := r.conn(ctx).
		Where("email = ?", email).
		First(&meta).Error; err != nil {
		return nil, err
	}
	return &meta, nil
}

// Upsert writes the metadata record, replacing the authorization
// attributes when a row for the email already exists.
func (r *Repository) Upsert(ctx context.Context, meta *models.IdentityMetadata) error {
	return r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "company_id", "store_ids", "updated_at"}),
		}).
		Create(meta).Error
}

// Delete removes the metadata record for an email.
func (r *Repository) Delete(ctx context.Context, email string) error {
	return r.conn(ctx).
		Where("email = ?", email).
		Delete(&models.IdentityMetadata{}).Error
}
