package services

import (
	"context"
	"testing"
	"time"

	"libris-backend/internal/adapters/persistence/models"
	"libris-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ============================================================
// In-memory fakes
// ============================================================

type fakeLoanRepo struct {
	loans  map[uint]*models.Loan
	nextID uint
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[uint]*models.Loan), nextID: 1}
}

func (r *fakeLoanRepo) Create(_ context.Context, loan *models.Loan) error {
	loan.ID = r.nextID
	r.nextID++
	stored := *loan
	r.loans[loan.ID] = &stored
	return nil
}

func (r *fakeLoanRepo) GetByID(_ context.Context, id uint) (*models.Loan, error) {
	loan, ok := r.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *loan
	return &cp, nil
}

func (r *fakeLoanRepo) GetDetailByID(ctx context.Context, id uint) (*models.Loan, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeLoanRepo) List(_ context.Context, active *bool, offset, limit int) ([]*models.Loan, int64, error) {
	var out []*models.Loan
	for _, loan := range r.loans {
		if active != nil && *active != loan.IsOpen() {
			continue
		}
		cp := *loan
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeLoanRepo) ListByBorrower(_ context.Context, borrowerID uint, active *bool) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, loan := range r.loans {
		if loan.BorrowerID != borrowerID {
			continue
		}
		if active != nil && *active != loan.IsOpen() {
			continue
		}
		cp := *loan
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLoanRepo) ListOpenByBorrower(_ context.Context, borrowerID uint) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, loan := range r.loans {
		if loan.BorrowerID == borrowerID && loan.IsOpen() {
			cp := *loan
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) ListOpen(_ context.Context) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, loan := range r.loans {
		if loan.IsOpen() {
			cp := *loan
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) ListOverdue(_ context.Context, now time.Time) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, loan := range r.loans {
		if loan.IsOverdue(now) {
			cp := *loan
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) Update(_ context.Context, loan *models.Loan) error {
	if _, ok := r.loans[loan.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *loan
	r.loans[loan.ID] = &stored
	return nil
}

func (r *fakeLoanRepo) ExistsByCopy(_ context.Context, copyID uint) (bool, error) {
	for _, loan := range r.loans {
		if loan.CopyID == copyID {
			return true, nil
		}
	}
	return false, nil
}

type fakeCopyRepo struct {
	copies map[uint]*models.BookCopy
	nextID uint
}

func newFakeCopyRepo(copies ...*models.BookCopy) *fakeCopyRepo {
	r := &fakeCopyRepo{copies: make(map[uint]*models.BookCopy), nextID: 1}
	for _, c := range copies {
		stored := *c
		r.copies[c.ID] = &stored
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *fakeCopyRepo) Create(_ context.Context, copy *models.BookCopy) error {
	if copy.ID == 0 {
		copy.ID = r.nextID
	}
	if copy.ID >= r.nextID {
		r.nextID = copy.ID + 1
	}
	stored := *copy
	r.copies[copy.ID] = &stored
	return nil
}

func (r *fakeCopyRepo) GetByID(_ context.Context, id uint) (*models.BookCopy, error) {
	copy, ok := r.copies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *copy
	return &cp, nil
}

func (r *fakeCopyRepo) List(_ context.Context, offset, limit int) ([]*models.BookCopy, int64, error) {
	var out []*models.BookCopy
	for _, c := range r.copies {
		cp := *c
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCopyRepo) ListAvailable(_ context.Context) ([]*models.BookCopy, error) {
	var out []*models.BookCopy
	for _, c := range r.copies {
		if c.IsAvailable {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCopyRepo) ListByBook(_ context.Context, bookID uint) ([]*models.BookCopy, error) {
	var out []*models.BookCopy
	for _, c := range r.copies {
		if c.BookID == bookID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCopyRepo) Update(_ context.Context, copy *models.BookCopy) error {
	if _, ok := r.copies[copy.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *copy
	r.copies[copy.ID] = &stored
	return nil
}

func (r *fakeCopyRepo) Delete(_ context.Context, id uint) error {
	delete(r.copies, id)
	return nil
}

func (r *fakeCopyRepo) ExistsByBookAndNumber(_ context.Context, bookID uint, copyNumber int, excludeID uint) (bool, error) {
	for _, c := range r.copies {
		if c.BookID == bookID && c.CopyNumber == copyNumber && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
	for _, u := range users {
		stored := *u
		r.users[u.ID] = &stored
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == 0 {
		user.ID = r.nextID
	}
	if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, role string, offset, limit int) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range r.users {
		if role != "" && u.Role != role {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) ListByPosition(_ context.Context, position string) ([]*models.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) ListByCustomerType(_ context.Context, customerType string) ([]*models.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string, excludeID uint) (bool, error) {
	for _, u := range r.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// fakeTxManager runs the callback directly; the fakes have no transactions.
type fakeTxManager struct{}

func (fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ============================================================
// Fixtures
// ============================================================

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestLoanService() (*LoanService, *fakeLoanRepo, *fakeCopyRepo, *fakeUserRepo) {
	loanRepo := newFakeLoanRepo()
	copyRepo := newFakeCopyRepo(
		&models.BookCopy{ID: 1, BookID: 1, CopyNumber: 1, IsAvailable: true},
		&models.BookCopy{ID: 2, BookID: 1, CopyNumber: 2, IsAvailable: true},
		&models.BookCopy{ID: 3, BookID: 2, CopyNumber: 1, IsAvailable: true},
		&models.BookCopy{ID: 4, BookID: 2, CopyNumber: 2, IsAvailable: true},
	)
	userRepo := newFakeUserRepo(
		&models.User{ID: 1, Name: "Reader", Email: "reader@example.org", Role: "CUSTOMER", IsActive: true},
		&models.User{ID: 2, Name: "Clerk", Email: "clerk@example.org", Role: "EMPLOYEE", IsActive: true},
	)

	svc := NewLoanService(loanRepo, copyRepo, userRepo, fakeTxManager{}, NewLoanPolicy(3))
	svc.now = func() time.Time { return testNow }

	return svc, loanRepo, copyRepo, userRepo
}

func openTestLoan(t *testing.T, svc *LoanService, copyID uint) *models.Loan {
	t.Helper()
	loan, err := svc.Open(context.Background(), &OpenLoanInput{
		CopyID:     copyID,
		BorrowerID: 1,
		LenderID:   2,
		DueDate:    testNow.AddDate(0, 0, 14),
	})
	require.NoError(t, err)
	return loan
}

// ============================================================
// Tests
// ============================================================

func TestLoanService_Open(t *testing.T) {
	svc, _, copyRepo, _ := newTestLoanService()

	loan := openTestLoan(t, svc, 1)
	assert.Equal(t, uint(1), loan.CopyID)
	assert.Equal(t, uint(1), loan.BorrowerID)
	assert.Equal(t, uint(2), loan.LenderID)
	assert.Equal(t, testNow, loan.BorrowDate)
	assert.Nil(t, loan.ReturnDate)

	// The copy is no longer loanable
	copy, err := copyRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, copy.IsAvailable)
}

func TestLoanService_Open_UnknownReferences(t *testing.T) {
	svc, _, _, _ := newTestLoanService()
	due := testNow.AddDate(0, 0, 14)

	_, err := svc.Open(context.Background(), &OpenLoanInput{CopyID: 99, BorrowerID: 1, LenderID: 2, DueDate: due})
	assert.ErrorIs(t, err, ErrCopyNotFoundSvc)

	_, err = svc.Open(context.Background(), &OpenLoanInput{CopyID: 1, BorrowerID: 99, LenderID: 2, DueDate: due})
	assert.ErrorIs(t, err, ErrBorrowerNotFound)

	_, err = svc.Open(context.Background(), &OpenLoanInput{CopyID: 1, BorrowerID: 1, LenderID: 99, DueDate: due})
	assert.ErrorIs(t, err, ErrLenderNotFound)
}

func TestLoanService_Open_RejectsLoanedCopy(t *testing.T) {
	svc, loanRepo, _, _ := newTestLoanService()

	openTestLoan(t, svc, 1)

	_, err := svc.Open(context.Background(), &OpenLoanInput{
		CopyID:     1,
		BorrowerID: 1,
		LenderID:   2,
		DueDate:    testNow.AddDate(0, 0, 14),
	})
	assert.ErrorIs(t, err, domain.ErrCopyNotAvailable)

	// No second loan was written
	assert.Len(t, loanRepo.loans, 1)
}

func TestLoanService_Open_RejectsFourthLoan(t *testing.T) {
	svc, _, _, _ := newTestLoanService()

	openTestLoan(t, svc, 1)
	openTestLoan(t, svc, 2)
	openTestLoan(t, svc, 3)

	_, err := svc.Open(context.Background(), &OpenLoanInput{
		CopyID:     4,
		BorrowerID: 1,
		LenderID:   2,
		DueDate:    testNow.AddDate(0, 0, 14),
	})
	assert.ErrorIs(t, err, domain.ErrLoanLimitExceeded)
}

func TestLoanService_Open_RejectsDelinquentBorrower(t *testing.T) {
	svc, _, _, _ := newTestLoanService()

	loan := openTestLoan(t, svc, 1)

	// Push time past the due date; the open loan is now overdue.
	svc.now = func() time.Time { return loan.DueDate.AddDate(0, 0, 1) }

	_, err := svc.Open(context.Background(), &OpenLoanInput{
		CopyID:     2,
		BorrowerID: 1,
		LenderID:   2,
		DueDate:    loan.DueDate.AddDate(0, 0, 30),
	})
	assert.ErrorIs(t, err, domain.ErrBorrowerDelinquent)
}

func TestLoanService_Open_RejectsCustomerLender(t *testing.T) {
	svc, loanRepo, copyRepo, _ := newTestLoanService()

	_, err := svc.Open(context.Background(), &OpenLoanInput{
		CopyID:     1,
		BorrowerID: 1,
		LenderID:   1, // customer lending to themselves
		DueDate:    testNow.AddDate(0, 0, 14),
	})
	assert.ErrorIs(t, err, domain.ErrLenderNotCapable)

	// Rejection leaves no partial state
	assert.Empty(t, loanRepo.loans)
	copy, _ := copyRepo.GetByID(context.Background(), 1)
	assert.True(t, copy.IsAvailable)
}

func TestLoanService_Return(t *testing.T) {
	svc, _, copyRepo, _ := newTestLoanService()

	loan := openTestLoan(t, svc, 1)

	returned, err := svc.Return(context.Background(), loan.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, testNow, *returned.ReturnDate)

	copy, err := copyRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, copy.IsAvailable)
}

func TestLoanService_Return_RejectsSecondReturn(t *testing.T) {
	svc, _, _, _ := newTestLoanService()

	loan := openTestLoan(t, svc, 1)

	_, err := svc.Return(context.Background(), loan.ID, nil)
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), loan.ID, nil)
	assert.ErrorIs(t, err, domain.ErrLoanAlreadyReturned)
}

func TestLoanService_Return_UnknownLoan(t *testing.T) {
	svc, _, _, _ := newTestLoanService()

	_, err := svc.Return(context.Background(), 99, nil)
	assert.ErrorIs(t, err, ErrLoanNotFoundSvc)
}

func TestLoanService_Return_MissingCopyStillCloses(t *testing.T) {
	svc, _, copyRepo, _ := newTestLoanService()

	loan := openTestLoan(t, svc, 1)

	// The copy row disappears while the loan is open.
	require.NoError(t, copyRepo.Delete(context.Background(), 1))

	returned, err := svc.Return(context.Background(), loan.ID, nil)
	require.NoError(t, err)
	assert.NotNil(t, returned.ReturnDate)
}

func TestLoanService_RoundTrip(t *testing.T) {
	svc, _, _, _ := newTestLoanService()

	// Borrow, return, borrow again: the copy cycles back to loanable.
	first := openTestLoan(t, svc, 1)
	_, err := svc.Return(context.Background(), first.ID, nil)
	require.NoError(t, err)

	second := openTestLoan(t, svc, 1)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestLoanService_UpdateDueDate(t *testing.T) {
	svc, _, _, _ := newTestLoanService()

	loan := openTestLoan(t, svc, 1)
	newDue := testNow.AddDate(0, 1, 0)

	updated, err := svc.UpdateDueDate(context.Background(), loan.ID, &UpdateDueDateInput{DueDate: newDue})
	require.NoError(t, err)
	assert.Equal(t, newDue, updated.DueDate)

	_, err = svc.UpdateDueDate(context.Background(), loan.ID, &UpdateDueDateInput{DueDate: testNow.AddDate(0, 0, -1)})
	assert.ErrorIs(t, err, domain.ErrDueDateNotFuture)
}

func TestLoanService_ListOverdueAndStats(t *testing.T) {
	svc, _, _, _ := newTestLoanService()

	loan := openTestLoan(t, svc, 1)
	openTestLoan(t, svc, 2)

	// Only the first loan goes overdue.
	_, err := svc.UpdateDueDate(context.Background(), loan.ID, &UpdateDueDateInput{DueDate: testNow.AddDate(0, 0, 1)})
	require.NoError(t, err)
	svc.now = func() time.Time { return testNow.AddDate(0, 0, 2) }

	overdue, err := svc.ListOverdue(context.Background())
	require.NoError(t, err)
	assert.Len(t, overdue, 1)

	stats, err := svc.OverdueStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)

	active, err := svc.ActiveStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), active.Total)
}
