package repositories

import (
	"context"
	"time"

	"libris-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormLoanRepository handles loan data access
type GormLoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// Create creates a new loan
func (r *GormLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return dbFrom(ctx, r.db).Create(loan).Error
}

// GetByID gets a loan by ID
func (r *GormLoanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := dbFrom(ctx, r.db).First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetDetailByID gets a loan by ID with copy, book and user relations
func (r *GormLoanRepository) GetDetailByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := dbFrom(ctx, r.db).
		Preload("Copy").
		Preload("Copy.Book").
		Preload("Borrower").
		Preload("Lender").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// List lists loans with pagination; active filters on open/closed when set
func (r *GormLoanRepository) List(ctx context.Context, active *bool, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	db := dbFrom(ctx, r.db)
	query := db.Model(&models.Loan{})
	if active != nil {
		if *active {
			query = query.Where("return_date IS NULL")
		} else {
			query = query.Where("return_date IS NOT NULL")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// ListByBorrower lists loans of one borrower with relations for display
func (r *GormLoanRepository) ListByBorrower(ctx context.Context, borrowerID uint, active *bool) ([]*models.Loan, error) {
	var loans []*models.Loan

	query := dbFrom(ctx, r.db).
		Preload("Copy").
		Preload("Copy.Book").
		Preload("Borrower").
		Preload("Lender").
		Where("borrower_id = ?", borrowerID)
	if active != nil {
		if *active {
			query = query.Where("return_date IS NULL")
		} else {
			query = query.Where("return_date IS NOT NULL")
		}
	}

	err := query.Order("created_at DESC").Find(&loans).Error
	return loans, err
}

// ListOpenByBorrower lists open loans of one borrower (policy input)
func (r *GormLoanRepository) ListOpenByBorrower(ctx context.Context, borrowerID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := dbFrom(ctx, r.db).
		Where("borrower_id = ? AND return_date IS NULL", borrowerID).
		Find(&loans).Error
	return loans, err
}

// ListOpen lists all open loans with their borrowers
func (r *GormLoanRepository) ListOpen(ctx context.Context) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := dbFrom(ctx, r.db).
		Preload("Borrower").
		Where("return_date IS NULL").
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}

// ListOverdue lists open loans past their due date, with relations
func (r *GormLoanRepository) ListOverdue(ctx context.Context, now time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := dbFrom(ctx, r.db).
		Preload("Copy").
		Preload("Copy.Book").
		Preload("Borrower").
		Preload("Lender").
		Where("return_date IS NULL AND due_date < ?", now).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}

// Update updates a loan
func (r *GormLoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return dbFrom(ctx, r.db).Save(loan).Error
}

// ExistsByCopy reports whether any loan, open or closed, references the copy
func (r *GormLoanRepository) ExistsByCopy(ctx context.Context, copyID uint) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).
		Model(&models.Loan{}).
		Where("copy_id = ?", copyID).
		Count(&count).Error
	return count > 0, err
}
