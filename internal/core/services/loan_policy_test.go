package services

import (
	"testing"
	"time"

	"libris-backend/internal/adapters/persistence/models"
	"libris-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func policyFixtures() (*models.BookCopy, *models.User, *models.User, time.Time) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	copy := &models.BookCopy{ID: 1, BookID: 1, CopyNumber: 1, IsAvailable: true}
	borrower := &models.User{ID: 2, Name: "Reader", Role: "CUSTOMER"}
	lender := &models.User{ID: 3, Name: "Clerk", Role: "EMPLOYEE"}
	return copy, borrower, lender, now
}

func TestCanOpenLoan_Allows(t *testing.T) {
	policy := NewLoanPolicy(3)
	copy, borrower, lender, now := policyFixtures()

	err := policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, 14), now, nil)
	assert.NoError(t, err)
}

func TestCanOpenLoan_RejectsPastDueDate(t *testing.T) {
	policy := NewLoanPolicy(3)
	copy, borrower, lender, now := policyFixtures()

	err := policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, -1), now, nil)
	assert.ErrorIs(t, err, domain.ErrDueDateNotFuture)

	// The exact current instant is not in the future either
	err = policy.CanOpenLoan(copy, borrower, lender, now, now, nil)
	assert.ErrorIs(t, err, domain.ErrDueDateNotFuture)
}

func TestCanOpenLoan_RejectsUnavailableCopy(t *testing.T) {
	policy := NewLoanPolicy(3)
	copy, borrower, lender, now := policyFixtures()
	copy.IsAvailable = false

	err := policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, 14), now, nil)
	assert.ErrorIs(t, err, domain.ErrCopyNotAvailable)
}

func TestCanOpenLoan_RejectsCustomerLender(t *testing.T) {
	policy := NewLoanPolicy(3)
	copy, borrower, lender, now := policyFixtures()
	lender.Role = "CUSTOMER"

	err := policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, 14), now, nil)
	assert.ErrorIs(t, err, domain.ErrLenderNotCapable)
}

func TestCanOpenLoan_AdminMayLend(t *testing.T) {
	policy := NewLoanPolicy(3)
	copy, borrower, lender, now := policyFixtures()
	lender.Role = "ADMIN"

	err := policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, 14), now, nil)
	assert.NoError(t, err)
}

func TestCanOpenLoan_RejectsAtLoanLimit(t *testing.T) {
	policy := NewLoanPolicy(3)
	copy, borrower, lender, now := policyFixtures()

	open := []*models.Loan{
		{ID: 10, DueDate: now.AddDate(0, 0, 5)},
		{ID: 11, DueDate: now.AddDate(0, 0, 6)},
		{ID: 12, DueDate: now.AddDate(0, 0, 7)},
	}

	err := policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, 14), now, open)
	assert.ErrorIs(t, err, domain.ErrLoanLimitExceeded)

	// One below the limit is fine
	err = policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, 14), now, open[:2])
	assert.NoError(t, err)
}

func TestCanOpenLoan_RejectsDelinquentBorrower(t *testing.T) {
	policy := NewLoanPolicy(3)
	copy, borrower, lender, now := policyFixtures()

	open := []*models.Loan{
		{ID: 10, DueDate: now.AddDate(0, 0, -2)}, // overdue
	}

	err := policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, 14), now, open)
	assert.ErrorIs(t, err, domain.ErrBorrowerDelinquent)
}

func TestCanOpenLoan_CheckOrder(t *testing.T) {
	policy := NewLoanPolicy(3)
	copy, borrower, lender, now := policyFixtures()

	// Everything is wrong at once; the due date check wins.
	copy.IsAvailable = false
	lender.Role = "CUSTOMER"
	open := []*models.Loan{
		{DueDate: now.AddDate(0, 0, -1)},
		{DueDate: now.AddDate(0, 0, 1)},
		{DueDate: now.AddDate(0, 0, 2)},
	}

	err := policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, -1), now, open)
	assert.ErrorIs(t, err, domain.ErrDueDateNotFuture)

	// Fix the due date; availability is checked next.
	err = policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, 14), now, open)
	assert.ErrorIs(t, err, domain.ErrCopyNotAvailable)

	// Fix availability; the lender role is checked before the borrower's loans.
	copy.IsAvailable = true
	err = policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, 14), now, open)
	assert.ErrorIs(t, err, domain.ErrLenderNotCapable)

	// Fix the lender; the loan limit fires before delinquency.
	lender.Role = "EMPLOYEE"
	err = policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, 14), now, open)
	assert.ErrorIs(t, err, domain.ErrLoanLimitExceeded)

	// Below the limit the overdue loan is what rejects.
	err = policy.CanOpenLoan(copy, borrower, lender, now.AddDate(0, 0, 14), now, open[:2])
	assert.ErrorIs(t, err, domain.ErrBorrowerDelinquent)
}

func TestCanCloseLoan(t *testing.T) {
	policy := NewLoanPolicy(3)
	now := time.Now()

	open := &models.Loan{ID: 1, DueDate: now.AddDate(0, 0, 7)}
	assert.NoError(t, policy.CanCloseLoan(open))

	returned := now.AddDate(0, 0, -1)
	closed := &models.Loan{ID: 2, DueDate: now.AddDate(0, 0, 7), ReturnDate: &returned}
	assert.ErrorIs(t, policy.CanCloseLoan(closed), domain.ErrLoanAlreadyReturned)
}

func TestCanUpdateDueDate(t *testing.T) {
	policy := NewLoanPolicy(3)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	loan := &models.Loan{ID: 1, DueDate: now.AddDate(0, 0, 7)}
	assert.NoError(t, policy.CanUpdateDueDate(loan, now.AddDate(0, 0, 21), now))
	assert.ErrorIs(t, policy.CanUpdateDueDate(loan, now.AddDate(0, 0, -1), now), domain.ErrDueDateNotFuture)

	returned := now
	loan.ReturnDate = &returned
	assert.ErrorIs(t, policy.CanUpdateDueDate(loan, now.AddDate(0, 0, 21), now), domain.ErrLoanAlreadyReturned)
}

func TestNewLoanPolicy_DefaultsLimit(t *testing.T) {
	assert.Equal(t, DefaultMaxActiveLoans, NewLoanPolicy(0).MaxActiveLoans)
	assert.Equal(t, 5, NewLoanPolicy(5).MaxActiveLoans)
}
