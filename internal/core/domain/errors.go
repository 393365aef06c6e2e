package domain

import "errors"

// Loan policy errors. These are sentinel values so handlers can map each
// rejection to the right HTTP status with errors.Is.
var (
	ErrCopyNotAvailable    = errors.New("copy is not available for loan")
	ErrLoanLimitExceeded   = errors.New("borrower has reached the active loan limit")
	ErrBorrowerDelinquent  = errors.New("borrower has overdue loans")
	ErrLenderNotCapable    = errors.New("only employees may process loans")
	ErrLoanAlreadyReturned = errors.New("loan has already been returned")
	ErrDueDateNotFuture    = errors.New("due date must be in the future")
)
