package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"libris-backend/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeBookRepo struct {
	books      map[uint]*models.Book
	copyCounts map[uint]int64
	nextID     uint
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{
		books:      make(map[uint]*models.Book),
		copyCounts: make(map[uint]int64),
		nextID:     1,
	}
}

func (r *fakeBookRepo) Create(_ context.Context, book *models.Book) error {
	book.ID = r.nextID
	r.nextID++
	stored := *book
	r.books[book.ID] = &stored
	return nil
}

func (r *fakeBookRepo) GetByID(_ context.Context, id uint) (*models.Book, error) {
	book, ok := r.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *book
	return &cp, nil
}

func (r *fakeBookRepo) GetByISBN(_ context.Context, isbn string) (*models.Book, error) {
	for _, b := range r.books {
		if b.ISBN != nil && *b.ISBN == isbn {
			cp := *b
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeBookRepo) GetWithCopies(ctx context.Context, id uint) (*models.Book, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeBookRepo) List(_ context.Context, offset, limit int) ([]*models.Book, int64, error) {
	var out []*models.Book
	for _, b := range r.books {
		cp := *b
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookRepo) ListByAuthor(_ context.Context, author string) ([]*models.Book, error) {
	needle := strings.ToLower(author)
	var out []*models.Book
	for _, b := range r.books {
		if strings.Contains(strings.ToLower(b.Author), needle) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBookRepo) Update(_ context.Context, book *models.Book) error {
	if _, ok := r.books[book.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *book
	r.books[book.ID] = &stored
	return nil
}

func (r *fakeBookRepo) Delete(_ context.Context, id uint) error {
	delete(r.books, id)
	return nil
}

func (r *fakeBookRepo) ExistsByISBN(_ context.Context, isbn string, excludeID uint) (bool, error) {
	for _, b := range r.books {
		if b.ISBN != nil && *b.ISBN == isbn && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookRepo) CountCopies(_ context.Context, bookID uint) (int64, error) {
	return r.copyCounts[bookID], nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestBookService_Create(t *testing.T) {
	svc := NewBookService(newFakeBookRepo())

	book, err := svc.Create(context.Background(), &CreateBookInput{
		Title:           "The Go Programming Language",
		Author:          "Donovan & Kernighan",
		ISBN:            strPtr("978-0134190440"),
		PublicationYear: intPtr(2015),
	})
	require.NoError(t, err)
	assert.NotZero(t, book.ID)

	// A title without an ISBN is fine
	_, err = svc.Create(context.Background(), &CreateBookInput{Title: "Pamphlet", Author: "Anon"})
	assert.NoError(t, err)
}

func TestBookService_Create_RejectsBadInput(t *testing.T) {
	svc := NewBookService(newFakeBookRepo())

	_, err := svc.Create(context.Background(), &CreateBookInput{
		Title: "Bad", Author: "Anon", ISBN: strPtr("not-an-isbn"),
	})
	assert.ErrorIs(t, err, ErrInvalidISBN)

	_, err = svc.Create(context.Background(), &CreateBookInput{
		Title: "Bad", Author: "Anon", PublicationYear: intPtr(time.Now().Year() + 1),
	})
	assert.ErrorIs(t, err, ErrInvalidPubYear)
}

func TestBookService_Create_RejectsDuplicateISBN(t *testing.T) {
	svc := NewBookService(newFakeBookRepo())

	_, err := svc.Create(context.Background(), &CreateBookInput{
		Title: "First", Author: "A", ISBN: strPtr("9780134190440"),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &CreateBookInput{
		Title: "Second", Author: "B", ISBN: strPtr("9780134190440"),
	})
	assert.ErrorIs(t, err, ErrISBNTaken)

	// Hyphenation does not make it a different ISBN
	_, err = svc.Create(context.Background(), &CreateBookInput{
		Title: "Third", Author: "C", ISBN: strPtr("978-0-13-419044-0"),
	})
	assert.ErrorIs(t, err, ErrISBNTaken)
}

func TestBookService_GetByISBN(t *testing.T) {
	svc := NewBookService(newFakeBookRepo())

	created, err := svc.Create(context.Background(), &CreateBookInput{
		Title: "The Go Programming Language", Author: "Donovan & Kernighan", ISBN: strPtr("978-0134190440"),
	})
	require.NoError(t, err)

	// Lookup ignores separators in both the stored and the queried form
	book, err := svc.GetByISBN(context.Background(), "978-0-13-419044-0")
	require.NoError(t, err)
	assert.Equal(t, created.ID, book.ID)

	book, err = svc.GetByISBN(context.Background(), "9780134190440")
	require.NoError(t, err)
	assert.Equal(t, created.ID, book.ID)

	_, err = svc.GetByISBN(context.Background(), "0306406152")
	assert.ErrorIs(t, err, ErrBookNotFoundSvc)
}

func TestBookService_ListByAuthor(t *testing.T) {
	svc := NewBookService(newFakeBookRepo())

	_, err := svc.Create(context.Background(), &CreateBookInput{Title: "The C Programming Language", Author: "Kernighan & Ritchie"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), &CreateBookInput{Title: "The Go Programming Language", Author: "Donovan & Kernighan"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), &CreateBookInput{Title: "SICP", Author: "Abelson & Sussman"})
	require.NoError(t, err)

	// Partial, case-insensitive match on the author name
	books, err := svc.ListByAuthor(context.Background(), "kernighan")
	require.NoError(t, err)
	assert.Len(t, books, 2)

	// No match is an empty result, not an error
	books, err = svc.ListByAuthor(context.Background(), "knuth")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestBookService_List_Meta(t *testing.T) {
	svc := NewBookService(newFakeBookRepo())

	for _, title := range []string{"A", "B", "C"} {
		_, err := svc.Create(context.Background(), &CreateBookInput{Title: title, Author: "X"})
		require.NoError(t, err)
	}

	out, err := svc.List(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Meta.Total)
	assert.Equal(t, 2, out.Meta.TotalPages)
	assert.True(t, out.Meta.HasNext)
	assert.False(t, out.Meta.HasPrev)
}

func TestBookService_Update(t *testing.T) {
	repo := newFakeBookRepo()
	svc := NewBookService(repo)

	book, err := svc.Create(context.Background(), &CreateBookInput{Title: "Old", Author: "A"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), book.ID, &UpdateBookInput{
		Title: strPtr("New"),
		ISBN:  strPtr("0-306-40615-2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)

	// A book may keep its own ISBN on update
	_, err = svc.Update(context.Background(), book.ID, &UpdateBookInput{ISBN: strPtr("0-306-40615-2")})
	assert.NoError(t, err)

	_, err = svc.Update(context.Background(), 99, &UpdateBookInput{Title: strPtr("X")})
	assert.ErrorIs(t, err, ErrBookNotFoundSvc)
}

func TestBookService_Delete(t *testing.T) {
	repo := newFakeBookRepo()
	svc := NewBookService(repo)

	book, err := svc.Create(context.Background(), &CreateBookInput{Title: "T", Author: "A"})
	require.NoError(t, err)

	// With registered copies the delete is rejected
	repo.copyCounts[book.ID] = 2
	assert.ErrorIs(t, svc.Delete(context.Background(), book.ID), ErrBookHasCopies)

	repo.copyCounts[book.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), book.ID))

	_, err = svc.GetByID(context.Background(), book.ID)
	assert.ErrorIs(t, err, ErrBookNotFoundSvc)
}

func TestValidISBN(t *testing.T) {
	valid := []string{
		"0306406152",
		"0-306-40615-2",
		"043942089X",
		"9780134190440",
		"978-0-13-419044-0",
		"978 0 13 419044 0",
	}
	for _, isbn := range valid {
		assert.True(t, validISBN(isbn), isbn)
	}

	invalid := []string{
		"",
		"123",
		"03064061520000",
		"030640615X2",
		"978013419044a",
		"X306406152",
	}
	for _, isbn := range invalid {
		assert.False(t, validISBN(isbn), isbn)
	}
}

func TestValidPublicationYear(t *testing.T) {
	assert.True(t, validPublicationYear(1455))
	assert.True(t, validPublicationYear(time.Now().Year()))
	assert.False(t, validPublicationYear(999))
	assert.False(t, validPublicationYear(time.Now().Year()+1))
}
