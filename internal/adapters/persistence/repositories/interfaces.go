package repositories

import (
	"context"
	"time"

	"libris-backend/internal/adapters/persistence/models"
)

// TxManager groups repository writes into one database transaction.
// The callback receives a context carrying the transaction handle; repository
// calls made with that context join the transaction.
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, role string, offset, limit int) ([]*models.User, int64, error)
	ListByPosition(ctx context.Context, position string) ([]*models.User, error)
	ListByCustomerType(ctx context.Context, customerType string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error)
}

// RefreshTokenRepository defines refresh token data access
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// BookRepository defines book data access
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	GetWithCopies(ctx context.Context, id uint) (*models.Book, error)
	List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error)
	ListByAuthor(ctx context.Context, author string) ([]*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
	ExistsByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error)
	CountCopies(ctx context.Context, bookID uint) (int64, error)
}

// CopyRepository defines book copy data access
type CopyRepository interface {
	Create(ctx context.Context, copy *models.BookCopy) error
	GetByID(ctx context.Context, id uint) (*models.BookCopy, error)
	List(ctx context.Context, offset, limit int) ([]*models.BookCopy, int64, error)
	ListAvailable(ctx context.Context) ([]*models.BookCopy, error)
	ListByBook(ctx context.Context, bookID uint) ([]*models.BookCopy, error)
	Update(ctx context.Context, copy *models.BookCopy) error
	Delete(ctx context.Context, id uint) error
	ExistsByBookAndNumber(ctx context.Context, bookID uint, copyNumber int, excludeID uint) (bool, error)
}

// LoanRepository defines loan data access
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	GetDetailByID(ctx context.Context, id uint) (*models.Loan, error)
	List(ctx context.Context, active *bool, offset, limit int) ([]*models.Loan, int64, error)
	ListByBorrower(ctx context.Context, borrowerID uint, active *bool) ([]*models.Loan, error)
	ListOpenByBorrower(ctx context.Context, borrowerID uint) ([]*models.Loan, error)
	ListOpen(ctx context.Context) ([]*models.Loan, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	ExistsByCopy(ctx context.Context, copyID uint) (bool, error)
}

// CompanyRepository defines company data access
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uint) (*models.Company, error)
	GetByRegistrationNo(ctx context.Context, registrationNo string) (*models.Company, error)
	List(ctx context.Context, offset, limit int) ([]*models.Company, int64, error)
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id uint) error
	ExistsByRegistrationNo(ctx context.Context, registrationNo string, excludeID uint) (bool, error)
}
