package companies

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkcart/b2b-backend/pkg/db"
	"github.com/linkcart/b2b-backend/pkg/db/models"
)

// Repository handles company persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to company operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Create persists a new company row.
func (r *Repository) Create(ctx context.Context, company *models.Company) error {
	return r.conn(ctx).Create(company).Error
}

// FindByID loads a company by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.conn(ctx).
		Where("id = ?", id).
		First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// List returns the companies visible to the current session. Under
// row-level security a company admin sees exactly their own row here
// while a platform admin sees everything.
func (r *Repository) List(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := r.conn(ctx).
		Order("created_at ASC").
		Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// Update saves the provided company.
func (r *Repository) Update(ctx context.Context, company *models.Company) error {
	if company == nil {
		return gorm.ErrInvalidValue
	}
	return r.conn(ctx).Save(company).Error
}
