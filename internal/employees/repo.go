package employees

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkcart/b2b-backend/pkg/db"
	"github.com/linkcart/b2b-backend/pkg/db/models"
)

// Repository handles employee and customer persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to employee operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// CreateEmployee persists a new employee row.
func (r *Repository) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	return r.conn(ctx).Create(employee).Error
}

// DeleteEmployee removes an employee row by id.
func (r *Repository) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).
		Where("id = ?", id).
		Delete(&models.Employee{}).Error
}

// FindEmployeeByID loads an employee by its UUID.
func (r *Repository) FindEmployeeByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := r.conn(ctx).
		Where("id = ?", id).
		First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindEmployeeByCustomer loads the employee row attached to a customer.
func (r *Repository) FindEmployeeByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := r.conn(ctx).
		Where("customer_id = ?", customerID).
		First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// ListByCompany returns all employees of a company.
func (r *Repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Employee, error) {
	var rows []models.Employee
	if err := r.conn(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindCustomerByEmail loads a customer by email.
func (r *Repository) FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.conn(ctx).
		Where("email = ?", email).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindCustomerByID loads a customer by its UUID.
func (r *Repository) FindCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.conn(ctx).
		Where("id = ?", id).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCustomer persists a new customer row.
func (r *Repository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return r.conn(ctx).Create(customer).Error
}

// DeleteCustomer removes a customer row by id.
func (r *Repository) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).
		Where("id = ?", id).
		Delete(&models.Customer{}).Error
}
