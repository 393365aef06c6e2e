package repositories

import (
	"context"

	"libris-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormUserRepository handles user data access
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return dbFrom(ctx, r.db).Create(user).Error
}

// GetByID gets a user by ID
func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := dbFrom(ctx, r.db).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := dbFrom(ctx, r.db).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List lists users with pagination; role filters when non-empty
func (r *GormUserRepository) List(ctx context.Context, role string, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	db := dbFrom(ctx, r.db)
	query := db.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error

	return users, total, err
}

// ListByPosition lists staff users; position filters when non-empty
func (r *GormUserRepository) ListByPosition(ctx context.Context, position string) ([]*models.User, error) {
	var users []*models.User
	query := dbFrom(ctx, r.db).
		Where("role IN ?", []string{"EMPLOYEE", "ADMIN"})
	if position != "" {
		query = query.Where("position = ?", position)
	}
	err := query.Find(&users).Error
	return users, err
}

// ListByCustomerType lists customers; customerType filters when non-empty
func (r *GormUserRepository) ListByCustomerType(ctx context.Context, customerType string) ([]*models.User, error) {
	var users []*models.User
	query := dbFrom(ctx, r.db).Where("role = ?", "CUSTOMER")
	if customerType != "" {
		query = query.Where("customer_type = ?", customerType)
	}
	err := query.Find(&users).Error
	return users, err
}

// Update updates a user
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return dbFrom(ctx, r.db).Save(user).Error
}

// Delete soft deletes a user
func (r *GormUserRepository) Delete(ctx context.Context, id uint) error {
	return dbFrom(ctx, r.db).Delete(&models.User{}, id).Error
}

// ExistsByEmail reports whether another user already carries the email
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	query := dbFrom(ctx, r.db).Model(&models.User{}).Where("email = ?", email)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
