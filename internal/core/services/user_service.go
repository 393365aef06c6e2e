package services

import (
	"context"
	"errors"
	"regexp"
	"time"

	"libris-backend/internal/adapters/persistence/models"
	"libris-backend/internal/adapters/persistence/repositories"
	"libris-backend/internal/core/domain"
	"libris-backend/internal/pkg/pagination"
	"libris-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrUserNotFoundSvc    = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserHasOpenLoans   = errors.New("user still holds open loans")
	ErrCannotDeleteSelf   = errors.New("cannot delete own account")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService handles user business logic
type UserService struct {
	userRepo repositories.UserRepository
	loanRepo repositories.LoanRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, loanRepo repositories.LoanRepository) *UserService {
	return &UserService{userRepo: userRepo, loanRepo: loanRepo}
}

// CreateUserInput represents create user input
type CreateUserInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`

	// Employee fields
	Position *string    `json:"position,omitempty"`
	HiredAt  *time.Time `json:"hired_at,omitempty"`

	// Customer fields
	CustomerType *string `json:"customer_type,omitempty"`
	Address      *string `json:"address,omitempty"`
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, input *CreateUserInput) (*models.UserResponse, error) {
	if !emailPattern.MatchString(input.Email) {
		return nil, ErrInvalidEmail
	}
	if !password.ValidatePassword(input.Password) {
		return nil, ErrPasswordTooShort
	}
	if !domain.Role(input.Role).Valid() {
		return nil, ErrInvalidRole
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		Password:     hashedPassword,
		Role:         input.Role,
		IsActive:     true,
		Position:     input.Position,
		HiredAt:      input.HiredAt,
		CustomerType: input.CustomerType,
		Address:      input.Address,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// GetByID gets a user by ID
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFoundSvc
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// GetByEmail gets a user by email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFoundSvc
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// ListUsersInput represents list input
type ListUsersInput struct {
	Page  int
	Limit int
	Role  string
}

// ListUsersOutput represents list output
type ListUsersOutput struct {
	Users []*models.UserResponse `json:"users"`
	Meta  *pagination.Meta       `json:"meta"`
}

// List lists users, optionally filtered by role
func (s *UserService) List(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	if input.Role != "" && !domain.Role(input.Role).Valid() {
		return nil, ErrInvalidRole
	}

	p := pagination.Normalize(input.Page, input.Limit)
	users, total, err := s.userRepo.List(ctx, input.Role, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, user.ToResponse())
	}

	return &ListUsersOutput{
		Users: responses,
		Meta:  pagination.GetMeta(p, total),
	}, nil
}

// ListEmployeesByPosition lists employees holding one position
func (s *UserService) ListEmployeesByPosition(ctx context.Context, position string) ([]*models.UserResponse, error) {
	users, err := s.userRepo.ListByPosition(ctx, position)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, user.ToResponse())
	}
	return responses, nil
}

// ListCustomersByType lists customers of one customer type
func (s *UserService) ListCustomersByType(ctx context.Context, customerType string) ([]*models.UserResponse, error) {
	users, err := s.userRepo.ListByCustomerType(ctx, customerType)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, user.ToResponse())
	}
	return responses, nil
}

// UpdateUserInput represents update user input
type UpdateUserInput struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`

	Position     *string    `json:"position,omitempty"`
	HiredAt      *time.Time `json:"hired_at,omitempty"`
	CustomerType *string    `json:"customer_type,omitempty"`
	Address      *string    `json:"address,omitempty"`
	IsActive     *bool      `json:"is_active,omitempty"`
}

// Update updates a user
func (s *UserService) Update(ctx context.Context, id uint, input *UpdateUserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFoundSvc
		}
		return nil, err
	}

	if input.Email != nil {
		if !emailPattern.MatchString(*input.Email) {
			return nil, ErrInvalidEmail
		}
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = *input.Email
	}

	if input.Password != nil {
		if !password.ValidatePassword(*input.Password) {
			return nil, ErrPasswordTooShort
		}
		hashed, err := password.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Position != nil {
		user.Position = input.Position
	}
	if input.HiredAt != nil {
		user.HiredAt = input.HiredAt
	}
	if input.CustomerType != nil {
		user.CustomerType = input.CustomerType
	}
	if input.Address != nil {
		user.Address = input.Address
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// Delete removes a user. Rejected while the user holds open loans, and a
// user may never delete their own account.
func (s *UserService) Delete(ctx context.Context, id, requesterID uint) error {
	if id == requesterID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFoundSvc
		}
		return err
	}

	open, err := s.loanRepo.ListOpenByBorrower(ctx, id)
	if err != nil {
		return err
	}
	if len(open) > 0 {
		return ErrUserHasOpenLoans
	}

	return s.userRepo.Delete(ctx, id)
}
