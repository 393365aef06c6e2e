package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Users
// ============================================================

// User represents the users table.
// Employee/customer specifics live in nullable columns selected by Role
// rather than in subtype tables.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:128;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`
	Role     string `gorm:"size:20;not null;default:'CUSTOMER'" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Employee fields
	Position *string    `gorm:"size:100" json:"position,omitempty"`
	HiredAt  *time.Time `json:"hired_at,omitempty"`

	// Customer fields
	CustomerType *string `gorm:"size:50" json:"customer_type,omitempty"`
	Address      *string `gorm:"size:255" json:"address,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	Position     *string    `json:"position,omitempty"`
	HiredAt      *time.Time `json:"hired_at,omitempty"`
	CustomerType *string    `json:"customer_type,omitempty"`
	Address      *string    `json:"address,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		IsActive:     u.IsActive,
		Position:     u.Position,
		HiredAt:      u.HiredAt,
		CustomerType: u.CustomerType,
		Address:      u.Address,
		CreatedAt:    u.CreatedAt,
	}
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Catalog
// ============================================================

// Book represents the books table (one row per title)
type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:256;not null" json:"title"`
	Author          string         `gorm:"size:128;not null" json:"author"`
	ISBN            *string        `gorm:"size:20;uniqueIndex" json:"isbn"`
	Publisher       string         `gorm:"size:128" json:"publisher"`
	PublicationYear *int           `json:"publication_year"`
	Genre           string         `gorm:"size:100" json:"genre"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Copies []BookCopy `gorm:"foreignKey:BookID" json:"copies,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

// BookCopy represents the book_copies table (one row per physical copy).
// IsAvailable is false exactly while one open loan references the copy.
type BookCopy struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BookID      uint      `gorm:"not null;index;uniqueIndex:idx_book_copy_no" json:"book_id"`
	CopyNumber  int       `gorm:"not null;uniqueIndex:idx_book_copy_no" json:"copy_number"`
	Edition     string    `gorm:"size:64" json:"edition"`
	Condition   string    `gorm:"size:64" json:"condition"`
	IsAvailable bool      `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (BookCopy) TableName() string {
	return "book_copies"
}

// ============================================================
// Loans
// ============================================================

// Loan represents the loans table. A loan is open while ReturnDate is nil
// and is mutated exactly once, when it is closed.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CopyID     uint       `gorm:"not null;index" json:"copy_id"`
	BorrowerID uint       `gorm:"not null;index" json:"borrower_id"`
	LenderID   uint       `gorm:"not null" json:"lender_id"`
	BorrowDate time.Time  `gorm:"not null" json:"borrow_date"`
	DueDate    time.Time  `gorm:"not null" json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Copy     *BookCopy `gorm:"foreignKey:CopyID" json:"copy,omitempty"`
	Borrower *User     `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
	Lender   *User     `gorm:"foreignKey:LenderID" json:"lender,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// IsOpen reports whether the loan has not been returned yet.
func (l *Loan) IsOpen() bool {
	return l.ReturnDate == nil
}

// IsOverdue reports whether the loan is open past its due date.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsOpen() && l.DueDate.Before(now)
}

// LoanDetailResponse DTO with joined book and user display fields
type LoanDetailResponse struct {
	ID         uint       `json:"id"`
	CopyID     uint       `json:"copy_id"`
	BorrowerID uint       `json:"borrower_id"`
	LenderID   uint       `json:"lender_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`

	BookTitle     string `json:"book_title,omitempty"`
	BookAuthor    string `json:"book_author,omitempty"`
	CopyNumber    int    `json:"copy_number,omitempty"`
	CopyCondition string `json:"copy_condition,omitempty"`

	BorrowerName  string `json:"borrower_name,omitempty"`
	BorrowerEmail string `json:"borrower_email,omitempty"`
	LenderName    string `json:"lender_name,omitempty"`
	LenderEmail   string `json:"lender_email,omitempty"`
}

func (l *Loan) ToDetailResponse() *LoanDetailResponse {
	resp := &LoanDetailResponse{
		ID:         l.ID,
		CopyID:     l.CopyID,
		BorrowerID: l.BorrowerID,
		LenderID:   l.LenderID,
		BorrowDate: l.BorrowDate,
		DueDate:    l.DueDate,
		ReturnDate: l.ReturnDate,
	}

	if l.Copy != nil {
		resp.CopyNumber = l.Copy.CopyNumber
		resp.CopyCondition = l.Copy.Condition
		if l.Copy.Book != nil {
			resp.BookTitle = l.Copy.Book.Title
			resp.BookAuthor = l.Copy.Book.Author
		}
	}
	if l.Borrower != nil {
		resp.BorrowerName = l.Borrower.Name
		resp.BorrowerEmail = l.Borrower.Email
	}
	if l.Lender != nil {
		resp.LenderName = l.Lender.Name
		resp.LenderEmail = l.Lender.Email
	}

	return resp
}

// ============================================================
// Companies
// ============================================================

// Company represents the companies table (corporate customers)
type Company struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	RegistrationNo string         `gorm:"size:20;uniqueIndex;not null" json:"registration_no"`
	LegalName      string         `gorm:"size:128;not null" json:"legal_name"`
	TradeName      string         `gorm:"size:128" json:"trade_name"`
	ContactNumber  string         `gorm:"size:30" json:"contact_number"`
	ContactEmail   string         `gorm:"size:128" json:"contact_email"`
	Website        string         `gorm:"size:128" json:"website"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Book{},
		&BookCopy{},
		&Loan{},
		&Company{},
	)
}
