package repositories

import (
	"context"

	"libris-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormBookRepository handles book data access
type GormBookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

// Create creates a new book
func (r *GormBookRepository) Create(ctx context.Context, book *models.Book) error {
	return dbFrom(ctx, r.db).Create(book).Error
}

// GetByID gets a book by ID
func (r *GormBookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := dbFrom(ctx, r.db).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByISBN gets a book by ISBN
func (r *GormBookRepository) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var book models.Book
	err := dbFrom(ctx, r.db).Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetWithCopies gets a book by ID with all its copies
func (r *GormBookRepository) GetWithCopies(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := dbFrom(ctx, r.db).Preload("Copies").First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List lists books with pagination
func (r *GormBookRepository) List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	db := dbFrom(ctx, r.db)
	if err := db.Model(&models.Book{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

// ListByAuthor lists books whose author name contains the term
func (r *GormBookRepository) ListByAuthor(ctx context.Context, author string) ([]*models.Book, error) {
	var books []*models.Book
	err := dbFrom(ctx, r.db).
		Where("author LIKE ?", "%"+author+"%").
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// Update updates a book
func (r *GormBookRepository) Update(ctx context.Context, book *models.Book) error {
	return dbFrom(ctx, r.db).Save(book).Error
}

// Delete soft deletes a book
func (r *GormBookRepository) Delete(ctx context.Context, id uint) error {
	return dbFrom(ctx, r.db).Delete(&models.Book{}, id).Error
}

// ExistsByISBN reports whether another book already carries the ISBN
func (r *GormBookRepository) ExistsByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error) {
	var count int64
	query := dbFrom(ctx, r.db).Model(&models.Book{}).Where("isbn = ?", isbn)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// CountCopies counts the registered copies of a book
func (r *GormBookRepository) CountCopies(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).
		Model(&models.BookCopy{}).
		Where("book_id = ?", bookID).
		Count(&count).Error
	return count, err
}
