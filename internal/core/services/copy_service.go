package services

import (
	"context"
	"errors"

	"libris-backend/internal/adapters/persistence/models"
	"libris-backend/internal/adapters/persistence/repositories"
	"libris-backend/internal/pkg/pagination"

	"gorm.io/gorm"
)

// Copy service errors
var (
	ErrCopyNumberTaken = errors.New("a copy with this number already exists for the book")
	ErrCopyOnLoan      = errors.New("copy is currently on loan")
	ErrCopyWasLoaned   = errors.New("copy has loan history and cannot be deleted")
)

// CopyService handles book copy business logic
type CopyService struct {
	copyRepo repositories.CopyRepository
	bookRepo repositories.BookRepository
	loanRepo repositories.LoanRepository
}

// NewCopyService creates a new copy service
func NewCopyService(
	copyRepo repositories.CopyRepository,
	bookRepo repositories.BookRepository,
	loanRepo repositories.LoanRepository,
) *CopyService {
	return &CopyService{
		copyRepo: copyRepo,
		bookRepo: bookRepo,
		loanRepo: loanRepo,
	}
}

// CreateCopyInput represents create copy input
type CreateCopyInput struct {
	BookID     uint   `json:"book_id" validate:"required"`
	CopyNumber int    `json:"copy_number" validate:"required"`
	Edition    string `json:"edition,omitempty"`
	Condition  string `json:"condition,omitempty"`
}

// Create registers a new physical copy of a book
func (s *CopyService) Create(ctx context.Context, input *CreateCopyInput) (*models.BookCopy, error) {
	if _, err := s.bookRepo.GetByID(ctx, input.BookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFoundSvc
		}
		return nil, err
	}

	taken, err := s.copyRepo.ExistsByBookAndNumber(ctx, input.BookID, input.CopyNumber, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrCopyNumberTaken
	}

	copy := &models.BookCopy{
		BookID:      input.BookID,
		CopyNumber:  input.CopyNumber,
		Edition:     input.Edition,
		Condition:   input.Condition,
		IsAvailable: true,
	}

	if err := s.copyRepo.Create(ctx, copy); err != nil {
		return nil, err
	}

	return copy, nil
}

// GetByID gets a copy by ID
func (s *CopyService) GetByID(ctx context.Context, id uint) (*models.BookCopy, error) {
	copy, err := s.copyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCopyNotFoundSvc
		}
		return nil, err
	}
	return copy, nil
}

// ListCopiesOutput represents list output
type ListCopiesOutput struct {
	Copies []*models.BookCopy `json:"copies"`
	Meta   *pagination.Meta   `json:"meta"`
}

// List lists copies
func (s *CopyService) List(ctx context.Context, page, limit int) (*ListCopiesOutput, error) {
	p := pagination.Normalize(page, limit)

	copies, total, err := s.copyRepo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	return &ListCopiesOutput{
		Copies: copies,
		Meta:   pagination.GetMeta(p, total),
	}, nil
}

// ListAvailable lists copies open for loan
func (s *CopyService) ListAvailable(ctx context.Context) ([]*models.BookCopy, error) {
	return s.copyRepo.ListAvailable(ctx)
}

// ListByBook lists the copies of one book
func (s *CopyService) ListByBook(ctx context.Context, bookID uint) ([]*models.BookCopy, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFoundSvc
		}
		return nil, err
	}
	return s.copyRepo.ListByBook(ctx, bookID)
}

// UpdateCopyInput represents update copy input
type UpdateCopyInput struct {
	CopyNumber *int    `json:"copy_number,omitempty"`
	Edition    *string `json:"edition,omitempty"`
	Condition  *string `json:"condition,omitempty"`
}

// Update updates a copy's descriptive fields. Availability is owned by the
// loan lifecycle and cannot be set here.
func (s *CopyService) Update(ctx context.Context, id uint, input *UpdateCopyInput) (*models.BookCopy, error) {
	copy, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.CopyNumber != nil {
		taken, err := s.copyRepo.ExistsByBookAndNumber(ctx, copy.BookID, *input.CopyNumber, copy.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrCopyNumberTaken
		}
		copy.CopyNumber = *input.CopyNumber
	}

	if input.Edition != nil {
		copy.Edition = *input.Edition
	}
	if input.Condition != nil {
		copy.Condition = *input.Condition
	}

	if err := s.copyRepo.Update(ctx, copy); err != nil {
		return nil, err
	}

	return copy, nil
}

// Delete removes a copy. Rejected while the copy is on loan or when any loan
// record still references it.
func (s *CopyService) Delete(ctx context.Context, id uint) error {
	copy, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !copy.IsAvailable {
		return ErrCopyOnLoan
	}

	referenced, err := s.loanRepo.ExistsByCopy(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrCopyWasLoaned
	}

	return s.copyRepo.Delete(ctx, id)
}
