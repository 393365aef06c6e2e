package repositories

import (
	"context"

	"libris-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormCopyRepository handles book copy data access
type GormCopyRepository struct {
	db *gorm.DB
}

// NewCopyRepository creates a new copy repository
func NewCopyRepository(db *gorm.DB) *GormCopyRepository {
	return &GormCopyRepository{db: db}
}

// Create creates a new copy
func (r *GormCopyRepository) Create(ctx context.Context, copy *models.BookCopy) error {
	return dbFrom(ctx, r.db).Create(copy).Error
}

// GetByID gets a copy by ID with its book
func (r *GormCopyRepository) GetByID(ctx context.Context, id uint) (*models.BookCopy, error) {
	var copy models.BookCopy
	err := dbFrom(ctx, r.db).Preload("Book").First(&copy, id).Error
	if err != nil {
		return nil, err
	}
	return &copy, nil
}

// List lists copies with pagination
func (r *GormCopyRepository) List(ctx context.Context, offset, limit int) ([]*models.BookCopy, int64, error) {
	var copies []*models.BookCopy
	var total int64

	db := dbFrom(ctx, r.db)
	if err := db.Model(&models.BookCopy{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.
		Preload("Book").
		Order("book_id ASC, copy_number ASC").
		Offset(offset).
		Limit(limit).
		Find(&copies).Error

	return copies, total, err
}

// ListAvailable lists copies currently available for loan
func (r *GormCopyRepository) ListAvailable(ctx context.Context) ([]*models.BookCopy, error) {
	var copies []*models.BookCopy
	err := dbFrom(ctx, r.db).
		Preload("Book").
		Where("is_available = ?", true).
		Order("book_id ASC, copy_number ASC").
		Find(&copies).Error
	return copies, err
}

// ListByBook lists the copies of one book
func (r *GormCopyRepository) ListByBook(ctx context.Context, bookID uint) ([]*models.BookCopy, error) {
	var copies []*models.BookCopy
	err := dbFrom(ctx, r.db).
		Where("book_id = ?", bookID).
		Order("copy_number ASC").
		Find(&copies).Error
	return copies, err
}

// Update updates a copy
func (r *GormCopyRepository) Update(ctx context.Context, copy *models.BookCopy) error {
	return dbFrom(ctx, r.db).Save(copy).Error
}

// Delete deletes a copy
func (r *GormCopyRepository) Delete(ctx context.Context, id uint) error {
	return dbFrom(ctx, r.db).Delete(&models.BookCopy{}, id).Error
}

// ExistsByBookAndNumber reports whether another copy of the book already
// carries the copy number
func (r *GormCopyRepository) ExistsByBookAndNumber(ctx context.Context, bookID uint, copyNumber int, excludeID uint) (bool, error) {
	var count int64
	query := dbFrom(ctx, r.db).
		Model(&models.BookCopy{}).
		Where("book_id = ? AND copy_number = ?", bookID, copyNumber)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
