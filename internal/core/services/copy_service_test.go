package services

import (
	"context"
	"testing"

	"libris-backend/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCopyService(t *testing.T) (*CopyService, *fakeCopyRepo, *fakeLoanRepo, *models.Book) {
	t.Helper()

	bookRepo := newFakeBookRepo()
	book := &models.Book{Title: "T", Author: "A"}
	require.NoError(t, bookRepo.Create(context.Background(), book))

	copyRepo := newFakeCopyRepo()
	loanRepo := newFakeLoanRepo()

	return NewCopyService(copyRepo, bookRepo, loanRepo), copyRepo, loanRepo, book
}

func TestCopyService_Create(t *testing.T) {
	svc, _, _, book := newTestCopyService(t)

	copy, err := svc.Create(context.Background(), &CreateCopyInput{
		BookID:     book.ID,
		CopyNumber: 1,
		Condition:  "good",
	})
	require.NoError(t, err)
	assert.True(t, copy.IsAvailable)

	// Same number for the same book is rejected
	_, err = svc.Create(context.Background(), &CreateCopyInput{BookID: book.ID, CopyNumber: 1})
	assert.ErrorIs(t, err, ErrCopyNumberTaken)

	// Unknown book is rejected
	_, err = svc.Create(context.Background(), &CreateCopyInput{BookID: 99, CopyNumber: 1})
	assert.ErrorIs(t, err, ErrBookNotFoundSvc)
}

func TestCopyService_Update(t *testing.T) {
	svc, copyRepo, _, book := newTestCopyService(t)

	copyRepo.Create(context.Background(), &models.BookCopy{ID: 1, BookID: book.ID, CopyNumber: 1, IsAvailable: true})
	copyRepo.Create(context.Background(), &models.BookCopy{ID: 2, BookID: book.ID, CopyNumber: 2, IsAvailable: true})

	updated, err := svc.Update(context.Background(), 1, &UpdateCopyInput{Condition: strPtr("worn")})
	require.NoError(t, err)
	assert.Equal(t, "worn", updated.Condition)

	// Moving to a taken number is rejected
	_, err = svc.Update(context.Background(), 1, &UpdateCopyInput{CopyNumber: intPtr(2)})
	assert.ErrorIs(t, err, ErrCopyNumberTaken)
}

func TestCopyService_Delete(t *testing.T) {
	svc, copyRepo, loanRepo, book := newTestCopyService(t)

	copyRepo.Create(context.Background(), &models.BookCopy{ID: 1, BookID: book.ID, CopyNumber: 1, IsAvailable: true})
	require.NoError(t, svc.Delete(context.Background(), 1))

	// On loan: rejected
	copyRepo.Create(context.Background(), &models.BookCopy{ID: 2, BookID: book.ID, CopyNumber: 2, IsAvailable: false})
	assert.ErrorIs(t, svc.Delete(context.Background(), 2), ErrCopyOnLoan)

	// Returned but referenced by loan history: still rejected
	copyRepo.Create(context.Background(), &models.BookCopy{ID: 3, BookID: book.ID, CopyNumber: 3, IsAvailable: true})
	returnDate := testNow
	loanRepo.Create(context.Background(), &models.Loan{CopyID: 3, BorrowerID: 1, LenderID: 2, ReturnDate: &returnDate})
	assert.ErrorIs(t, svc.Delete(context.Background(), 3), ErrCopyWasLoaned)
}
