package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"libris-backend/internal/adapters/persistence/models"
	"libris-backend/internal/adapters/persistence/repositories"
	"libris-backend/internal/pkg/pagination"

	"gorm.io/gorm"
)

// Book service errors
var (
	ErrBookNotFoundSvc = errors.New("book not found")
	ErrInvalidISBN     = errors.New("invalid ISBN")
	ErrISBNTaken       = errors.New("a book with this ISBN already exists")
	ErrInvalidPubYear  = errors.New("invalid publication year")
	ErrBookHasCopies   = errors.New("book still has registered copies")
)

// BookService handles book catalog business logic
type BookService struct {
	bookRepo repositories.BookRepository
}

// NewBookService creates a new book service
func NewBookService(bookRepo repositories.BookRepository) *BookService {
	return &BookService{bookRepo: bookRepo}
}

// CreateBookInput represents create book input
type CreateBookInput struct {
	Title           string  `json:"title" validate:"required"`
	Author          string  `json:"author" validate:"required"`
	ISBN            *string `json:"isbn,omitempty"`
	Publisher       string  `json:"publisher,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty"`
	Genre           string  `json:"genre,omitempty"`
}

// Create creates a new book
func (s *BookService) Create(ctx context.Context, input *CreateBookInput) (*models.Book, error) {
	if input.ISBN != nil {
		clean := normalizeISBN(*input.ISBN)
		if !validISBN(clean) {
			return nil, ErrInvalidISBN
		}
		taken, err := s.bookRepo.ExistsByISBN(ctx, clean, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrISBNTaken
		}
		input.ISBN = &clean
	}

	if input.PublicationYear != nil && !validPublicationYear(*input.PublicationYear) {
		return nil, ErrInvalidPubYear
	}

	book := &models.Book{
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		Publisher:       input.Publisher,
		PublicationYear: input.PublicationYear,
		Genre:           input.Genre,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// GetByID gets a book by ID
func (s *BookService) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFoundSvc
		}
		return nil, err
	}
	return book, nil
}

// GetByISBN gets a book by ISBN; separators in the query are ignored
func (s *BookService) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	book, err := s.bookRepo.GetByISBN(ctx, normalizeISBN(isbn))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFoundSvc
		}
		return nil, err
	}
	return book, nil
}

// GetWithCopies gets a book with all its copies
func (s *BookService) GetWithCopies(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetWithCopies(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFoundSvc
		}
		return nil, err
	}
	return book, nil
}

// ListBooksOutput represents list output
type ListBooksOutput struct {
	Books []*models.Book   `json:"books"`
	Meta  *pagination.Meta `json:"meta"`
}

// List lists books
func (s *BookService) List(ctx context.Context, page, limit int) (*ListBooksOutput, error) {
	p := pagination.Normalize(page, limit)

	books, total, err := s.bookRepo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	return &ListBooksOutput{
		Books: books,
		Meta:  pagination.GetMeta(p, total),
	}, nil
}

// UpdateBookInput represents update book input
type UpdateBookInput struct {
	Title           *string `json:"title,omitempty"`
	Author          *string `json:"author,omitempty"`
	ISBN            *string `json:"isbn,omitempty"`
	Publisher       *string `json:"publisher,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty"`
	Genre           *string `json:"genre,omitempty"`
}

// Update updates a book
func (s *BookService) Update(ctx context.Context, id uint, input *UpdateBookInput) (*models.Book, error) {
	book, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ISBN != nil {
		clean := normalizeISBN(*input.ISBN)
		if !validISBN(clean) {
			return nil, ErrInvalidISBN
		}
		taken, err := s.bookRepo.ExistsByISBN(ctx, clean, book.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrISBNTaken
		}
		book.ISBN = &clean
	}

	if input.PublicationYear != nil {
		if !validPublicationYear(*input.PublicationYear) {
			return nil, ErrInvalidPubYear
		}
		book.PublicationYear = input.PublicationYear
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.Publisher != nil {
		book.Publisher = *input.Publisher
	}
	if input.Genre != nil {
		book.Genre = *input.Genre
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// Delete deletes a book; rejected while copies are registered
func (s *BookService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	copies, err := s.bookRepo.CountCopies(ctx, id)
	if err != nil {
		return err
	}
	if copies > 0 {
		return ErrBookHasCopies
	}

	return s.bookRepo.Delete(ctx, id)
}

// ListByAuthor lists books whose author name contains the term
func (s *BookService) ListByAuthor(ctx context.Context, author string) ([]*models.Book, error) {
	return s.bookRepo.ListByAuthor(ctx, author)
}

// normalizeISBN strips the separators an ISBN is commonly written with.
// Books store the stripped form so lookups match regardless of hyphenation.
func normalizeISBN(isbn string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(isbn)
}

// validISBN checks ISBN-10/ISBN-13 shape after stripping separators
func validISBN(isbn string) bool {
	clean := normalizeISBN(isbn)

	switch len(clean) {
	case 10:
		for _, r := range clean[:9] {
			if r < '0' || r > '9' {
				return false
			}
		}
		last := clean[9]
		return (last >= '0' && last <= '9') || last == 'X' || last == 'x'
	case 13:
		for _, r := range clean {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}

	return false
}

// validPublicationYear bounds the year to something printable
func validPublicationYear(year int) bool {
	return year >= 1000 && year <= time.Now().Year()
}
