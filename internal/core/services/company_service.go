package services

import (
	"context"
	"errors"
	"regexp"

	"libris-backend/internal/adapters/persistence/models"
	"libris-backend/internal/adapters/persistence/repositories"
	"libris-backend/internal/pkg/pagination"

	"gorm.io/gorm"
)

// Company service errors
var (
	ErrCompanyNotFoundSvc    = errors.New("company not found")
	ErrInvalidRegistrationNo = errors.New("invalid registration number")
	ErrRegistrationNoTaken   = errors.New("a company with this registration number already exists")
)

// Registration numbers are digit strings, 8 to 14 digits
var registrationNoPattern = regexp.MustCompile(`^[0-9]{8,14}$`)

// CompanyService handles corporate customer business logic
type CompanyService struct {
	companyRepo repositories.CompanyRepository
}

// NewCompanyService creates a new company service
func NewCompanyService(companyRepo repositories.CompanyRepository) *CompanyService {
	return &CompanyService{companyRepo: companyRepo}
}

// CreateCompanyInput represents create company input
type CreateCompanyInput struct {
	RegistrationNo string `json:"registration_no" validate:"required"`
	LegalName      string `json:"legal_name" validate:"required"`
	TradeName      string `json:"trade_name,omitempty"`
	ContactNumber  string `json:"contact_number,omitempty"`
	ContactEmail   string `json:"contact_email,omitempty"`
	Website        string `json:"website,omitempty"`
}

// Create creates a new company
func (s *CompanyService) Create(ctx context.Context, input *CreateCompanyInput) (*models.Company, error) {
	if !registrationNoPattern.MatchString(input.RegistrationNo) {
		return nil, ErrInvalidRegistrationNo
	}

	taken, err := s.companyRepo.ExistsByRegistrationNo(ctx, input.RegistrationNo, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrRegistrationNoTaken
	}

	company := &models.Company{
		RegistrationNo: input.RegistrationNo,
		LegalName:      input.LegalName,
		TradeName:      input.TradeName,
		ContactNumber:  input.ContactNumber,
		ContactEmail:   input.ContactEmail,
		Website:        input.Website,
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}

	return company, nil
}

// GetByID gets a company by ID
func (s *CompanyService) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFoundSvc
		}
		return nil, err
	}
	return company, nil
}

// GetByRegistrationNo gets a company by registration number
func (s *CompanyService) GetByRegistrationNo(ctx context.Context, registrationNo string) (*models.Company, error) {
	company, err := s.companyRepo.GetByRegistrationNo(ctx, registrationNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFoundSvc
		}
		return nil, err
	}
	return company, nil
}

// ListCompaniesOutput represents list output
type ListCompaniesOutput struct {
	Companies []*models.Company `json:"companies"`
	Meta      *pagination.Meta  `json:"meta"`
}

// List lists companies
func (s *CompanyService) List(ctx context.Context, page, limit int) (*ListCompaniesOutput, error) {
	p := pagination.Normalize(page, limit)

	companies, total, err := s.companyRepo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	return &ListCompaniesOutput{
		Companies: companies,
		Meta:      pagination.GetMeta(p, total),
	}, nil
}

// UpdateCompanyInput represents update company input
type UpdateCompanyInput struct {
	RegistrationNo *string `json:"registration_no,omitempty"`
	LegalName      *string `json:"legal_name,omitempty"`
	TradeName      *string `json:"trade_name,omitempty"`
	ContactNumber  *string `json:"contact_number,omitempty"`
	ContactEmail   *string `json:"contact_email,omitempty"`
	Website        *string `json:"website,omitempty"`
}

// Update updates a company
func (s *CompanyService) Update(ctx context.Context, id uint, input *UpdateCompanyInput) (*models.Company, error) {
	company, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.RegistrationNo != nil {
		if !registrationNoPattern.MatchString(*input.RegistrationNo) {
			return nil, ErrInvalidRegistrationNo
		}
		taken, err := s.companyRepo.ExistsByRegistrationNo(ctx, *input.RegistrationNo, company.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrRegistrationNoTaken
		}
		company.RegistrationNo = *input.RegistrationNo
	}

	if input.LegalName != nil {
		company.LegalName = *input.LegalName
	}
	if input.TradeName != nil {
		company.TradeName = *input.TradeName
	}
	if input.ContactNumber != nil {
		company.ContactNumber = *input.ContactNumber
	}
	if input.ContactEmail != nil {
		company.ContactEmail = *input.ContactEmail
	}
	if input.Website != nil {
		company.Website = *input.Website
	}

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}

	return company, nil
}

// Delete deletes a company
func (s *CompanyService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.companyRepo.Delete(ctx, id)
}
