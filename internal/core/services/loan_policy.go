package services

import (
	"time"

	"libris-backend/internal/adapters/persistence/models"
	"libris-backend/internal/core/domain"
)

// DefaultMaxActiveLoans is the borrow limit applied when none is configured.
const DefaultMaxActiveLoans = 3

// LoanPolicy decides whether loan transitions are allowed. It never mutates
// anything; callers act on the verdict.
type LoanPolicy struct {
	MaxActiveLoans int
}

// NewLoanPolicy creates a loan policy
func NewLoanPolicy(maxActiveLoans int) *LoanPolicy {
	if maxActiveLoans < 1 {
		maxActiveLoans = DefaultMaxActiveLoans
	}
	return &LoanPolicy{MaxActiveLoans: maxActiveLoans}
}

// CanOpenLoan checks whether a new loan may be opened. Checks run in order
// and the first failure is returned.
func (p *LoanPolicy) CanOpenLoan(
	copy *models.BookCopy,
	borrower *models.User,
	lender *models.User,
	dueDate time.Time,
	now time.Time,
	openLoans []*models.Loan,
) error {
	if !dueDate.After(now) {
		return domain.ErrDueDateNotFuture
	}

	if !copy.IsAvailable {
		return domain.ErrCopyNotAvailable
	}

	if !domain.Role(lender.Role).IsLenderCapable() {
		return domain.ErrLenderNotCapable
	}

	if len(openLoans) >= p.MaxActiveLoans {
		return domain.ErrLoanLimitExceeded
	}

	// Any user may borrow, so the borrower itself carries no restriction
	// beyond its open loans.
	for _, loan := range openLoans {
		if loan.DueDate.Before(now) {
			return domain.ErrBorrowerDelinquent
		}
	}

	return nil
}

// CanCloseLoan checks whether a loan may be closed.
func (p *LoanPolicy) CanCloseLoan(loan *models.Loan) error {
	if loan.ReturnDate != nil {
		return domain.ErrLoanAlreadyReturned
	}
	return nil
}

// CanUpdateDueDate checks whether a loan's due date may be moved.
func (p *LoanPolicy) CanUpdateDueDate(loan *models.Loan, newDueDate, now time.Time) error {
	if loan.ReturnDate != nil {
		return domain.ErrLoanAlreadyReturned
	}
	if !newDueDate.After(now) {
		return domain.ErrDueDateNotFuture
	}
	return nil
}
