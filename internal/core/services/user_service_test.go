package services

import (
	"context"
	"testing"

	"libris-backend/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() (*UserService, *fakeUserRepo, *fakeLoanRepo) {
	userRepo := newFakeUserRepo()
	loanRepo := newFakeLoanRepo()
	return NewUserService(userRepo, loanRepo), userRepo, loanRepo
}

func TestUserService_Create(t *testing.T) {
	svc, _, _ := newTestUserService()

	user, err := svc.Create(context.Background(), &CreateUserInput{
		Name:     "Reader",
		Email:    "reader@example.org",
		Password: "secret-password",
		Role:     "CUSTOMER",
	})
	require.NoError(t, err)
	assert.Equal(t, "CUSTOMER", user.Role)
	assert.True(t, user.IsActive)
}

func TestUserService_Create_Validation(t *testing.T) {
	svc, _, _ := newTestUserService()

	_, err := svc.Create(context.Background(), &CreateUserInput{
		Name: "X", Email: "not-an-email", Password: "secret-password", Role: "CUSTOMER",
	})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Create(context.Background(), &CreateUserInput{
		Name: "X", Email: "x@example.org", Password: "short", Role: "CUSTOMER",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.Create(context.Background(), &CreateUserInput{
		Name: "X", Email: "x@example.org", Password: "secret-password", Role: "WIZARD",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserService_Create_RejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestUserService()

	_, err := svc.Create(context.Background(), &CreateUserInput{
		Name: "First", Email: "dup@example.org", Password: "secret-password", Role: "CUSTOMER",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &CreateUserInput{
		Name: "Second", Email: "dup@example.org", Password: "secret-password", Role: "EMPLOYEE",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestUserService_Update(t *testing.T) {
	svc, userRepo, _ := newTestUserService()
	userRepo.Create(context.Background(), &models.User{
		ID: 1, Name: "Reader", Email: "reader@example.org", Role: "CUSTOMER", IsActive: true,
	})

	updated, err := svc.Update(context.Background(), 1, &UpdateUserInput{
		Name:    strPtr("Renamed"),
		Address: strPtr("1 Library Way"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "1 Library Way", *updated.Address)

	_, err = svc.Update(context.Background(), 1, &UpdateUserInput{Email: strPtr("bad email")})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Update(context.Background(), 99, &UpdateUserInput{Name: strPtr("X")})
	assert.ErrorIs(t, err, ErrUserNotFoundSvc)
}

func TestUserService_Delete(t *testing.T) {
	svc, userRepo, loanRepo := newTestUserService()
	userRepo.Create(context.Background(), &models.User{ID: 1, Name: "Reader", Email: "r@example.org", Role: "CUSTOMER"})
	userRepo.Create(context.Background(), &models.User{ID: 2, Name: "Admin", Email: "a@example.org", Role: "ADMIN"})

	// Self-deletion is rejected
	assert.ErrorIs(t, svc.Delete(context.Background(), 2, 2), ErrCannotDeleteSelf)

	// Open loans block deletion
	loanRepo.Create(context.Background(), &models.Loan{CopyID: 1, BorrowerID: 1, LenderID: 2, DueDate: testNow})
	assert.ErrorIs(t, svc.Delete(context.Background(), 1, 2), ErrUserHasOpenLoans)

	// Once the loan closes the user can go
	returnDate := testNow
	for _, loan := range loanRepo.loans {
		loan.ReturnDate = &returnDate
	}
	require.NoError(t, svc.Delete(context.Background(), 1, 2))

	assert.ErrorIs(t, svc.Delete(context.Background(), 99, 2), ErrUserNotFoundSvc)
}
