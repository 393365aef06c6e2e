package repositories

import (
	"context"

	"libris-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormCompanyRepository handles company data access
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Create creates a new company
func (r *GormCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	return dbFrom(ctx, r.db).Create(company).Error
}

// GetByID gets a company by ID
func (r *GormCompanyRepository) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	err := dbFrom(ctx, r.db).First(&company, id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetByRegistrationNo gets a company by registration number
func (r *GormCompanyRepository) GetByRegistrationNo(ctx context.Context, registrationNo string) (*models.Company, error) {
	var company models.Company
	err := dbFrom(ctx, r.db).Where("registration_no = ?", registrationNo).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// List lists companies with pagination
func (r *GormCompanyRepository) List(ctx context.Context, offset, limit int) ([]*models.Company, int64, error) {
	var companies []*models.Company
	var total int64

	db := dbFrom(ctx, r.db)
	if err := db.Model(&models.Company{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.
		Order("legal_name ASC").
		Offset(offset).
		Limit(limit).
		Find(&companies).Error

	return companies, total, err
}

// Update updates a company
func (r *GormCompanyRepository) Update(ctx context.Context, company *models.Company) error {
	return dbFrom(ctx, r.db).Save(company).Error
}

// Delete soft deletes a company
func (r *GormCompanyRepository) Delete(ctx context.Context, id uint) error {
	return dbFrom(ctx, r.db).Delete(&models.Company{}, id).Error
}

// ExistsByRegistrationNo reports whether another company already carries the
// registration number
func (r *GormCompanyRepository) ExistsByRegistrationNo(ctx context.Context, registrationNo string, excludeID uint) (bool, error) {
	var count int64
	query := dbFrom(ctx, r.db).
		Model(&models.Company{}).
		Where("registration_no = ?", registrationNo)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
