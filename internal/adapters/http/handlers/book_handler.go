package handlers

import (
	"errors"
	"strconv"

	"libris-backend/internal/core/services"
	"libris-backend/internal/pkg/pagination"
	"libris-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles book catalog endpoints
type BookHandler struct {
	bookService *services.BookService
	copyService *services.CopyService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService, copyService *services.CopyService) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		copyService: copyService,
	}
}

// CreateBookRequest represents create book request body
type CreateBookRequest struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	ISBN            *string `json:"isbn"`
	Publisher       string  `json:"publisher"`
	PublicationYear *int    `json:"publication_year"`
	Genre           string  `json:"genre"`
}

// Create handles book creation
// @Summary Create book
// @Description Add a new title to the catalog
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateBookRequest true "Book data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books [post]
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var req CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Title == "" {
		return response.BadRequest(c, "Title is required")
	}
	if req.Author == "" {
		return response.BadRequest(c, "Author is required")
	}

	book, err := h.bookService.Create(c.Context(), &services.CreateBookInput{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
		Genre:           req.Genre,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidISBN):
			return response.BadRequest(c, "Invalid ISBN")
		case errors.Is(err, services.ErrInvalidPubYear):
			return response.BadRequest(c, "Invalid publication year")
		case errors.Is(err, services.ErrISBNTaken):
			return response.Conflict(c, "A book with this ISBN already exists")
		default:
			return response.InternalServerError(c, "Failed to create book")
		}
	}

	return response.Created(c, "Book created successfully", book)
}

// List handles book listing
// @Summary List books
// @Description List catalog titles with pagination, or look one up by ISBN / search by author
// @Tags Books
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param isbn query string false "Look up a single book by ISBN"
// @Param author query string false "Search books by author name"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books [get]
func (h *BookHandler) List(c *fiber.Ctx) error {
	// Exact ISBN lookup short-circuits the listing
	if isbn := c.Query("isbn"); isbn != "" {
		book, err := h.bookService.GetByISBN(c.Context(), isbn)
		if err != nil {
			if errors.Is(err, services.ErrBookNotFoundSvc) {
				return response.NotFound(c, "Book not found")
			}
			return response.InternalServerError(c, "Failed to get book")
		}
		return response.Success(c, "Book retrieved successfully", book)
	}

	// Author search returns every match, unpaginated
	if author := c.Query("author"); author != "" {
		books, err := h.bookService.ListByAuthor(c.Context(), author)
		if err != nil {
			return response.InternalServerError(c, "Failed to search books")
		}
		return response.Success(c, "Books retrieved successfully", books)
	}

	p := pagination.GetParams(c)

	result, err := h.bookService.List(c.Context(), p.Page, p.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	return response.Success(c, "Books retrieved successfully", result)
}

// GetByID handles fetching one book with its copies
// @Summary Get book
// @Description Get a book by ID, including its copies
// @Tags Books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [get]
func (h *BookHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.bookService.GetWithCopies(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrBookNotFoundSvc) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to get book")
	}

	return response.Success(c, "Book retrieved successfully", book)
}

// UpdateBookRequest represents update book request body
type UpdateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	Publisher       *string `json:"publisher"`
	PublicationYear *int    `json:"publication_year"`
	Genre           *string `json:"genre"`
}

// Update handles book update
// @Summary Update book
// @Description Update a book's fields
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body UpdateBookRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	var req UpdateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookService.Update(c.Context(), uint(id), &services.UpdateBookInput{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
		Genre:           req.Genre,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFoundSvc):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, services.ErrInvalidISBN):
			return response.BadRequest(c, "Invalid ISBN")
		case errors.Is(err, services.ErrInvalidPubYear):
			return response.BadRequest(c, "Invalid publication year")
		case errors.Is(err, services.ErrISBNTaken):
			return response.Conflict(c, "A book with this ISBN already exists")
		default:
			return response.InternalServerError(c, "Failed to update book")
		}
	}

	return response.Success(c, "Book updated successfully", book)
}

// Delete handles book deletion
// @Summary Delete book
// @Description Delete a book; rejected while copies are registered
// @Tags Books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 204
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	if err := h.bookService.Delete(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFoundSvc):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, services.ErrBookHasCopies):
			return response.Conflict(c, "Book still has registered copies")
		default:
			return response.InternalServerError(c, "Failed to delete book")
		}
	}

	return response.NoContent(c)
}

// ListCopies handles listing the copies of one book
// @Summary List copies of a book
// @Description List all physical copies registered for a book
// @Tags Books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id}/copies [get]
func (h *BookHandler) ListCopies(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	copies, err := h.copyService.ListByBook(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrBookNotFoundSvc) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to list copies")
	}

	return response.Success(c, "Copies retrieved successfully", copies)
}
