package handlers

import (
	"errors"
	"strconv"

	"libris-backend/internal/core/services"
	"libris-backend/internal/pkg/pagination"
	"libris-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CopyHandler handles book copy endpoints
type CopyHandler struct {
	copyService *services.CopyService
}

// NewCopyHandler creates a new copy handler
func NewCopyHandler(copyService *services.CopyService) *CopyHandler {
	return &CopyHandler{copyService: copyService}
}

// CreateCopyRequest represents create copy request body
type CreateCopyRequest struct {
	BookID     uint   `json:"book_id"`
	CopyNumber int    `json:"copy_number"`
	Edition    string `json:"edition"`
	Condition  string `json:"condition"`
}

// Create handles copy registration
// @Summary Register copy
// @Description Register a new physical copy of a book
// @Tags Copies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateCopyRequest true "Copy data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /copies [post]
func (h *CopyHandler) Create(c *fiber.Ctx) error {
	var req CreateCopyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}
	if req.CopyNumber <= 0 {
		return response.BadRequest(c, "Copy number must be positive")
	}

	copy, err := h.copyService.Create(c.Context(), &services.CreateCopyInput{
		BookID:     req.BookID,
		CopyNumber: req.CopyNumber,
		Edition:    req.Edition,
		Condition:  req.Condition,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFoundSvc):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, services.ErrCopyNumberTaken):
			return response.Conflict(c, "A copy with this number already exists for the book")
		default:
			return response.InternalServerError(c, "Failed to register copy")
		}
	}

	return response.Created(c, "Copy registered successfully", copy)
}

// List handles copy listing
// @Summary List copies
// @Description List all copies with pagination; available=true lists only loanable copies
// @Tags Copies
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param available query bool false "Only available copies"
// @Success 200 {object} response.Response
// @Router /copies [get]
func (h *CopyHandler) List(c *fiber.Ctx) error {
	if c.Query("available") == "true" {
		copies, err := h.copyService.ListAvailable(c.Context())
		if err != nil {
			return response.InternalServerError(c, "Failed to list copies")
		}
		return response.Success(c, "Copies retrieved successfully", copies)
	}

	p := pagination.GetParams(c)

	result, err := h.copyService.List(c.Context(), p.Page, p.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list copies")
	}

	return response.Success(c, "Copies retrieved successfully", result)
}

// GetByID handles fetching one copy
// @Summary Get copy
// @Description Get a copy by ID
// @Tags Copies
// @Produce json
// @Param id path int true "Copy ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /copies/{id} [get]
func (h *CopyHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid copy ID")
	}

	copy, err := h.copyService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrCopyNotFoundSvc) {
			return response.NotFound(c, "Copy not found")
		}
		return response.InternalServerError(c, "Failed to get copy")
	}

	return response.Success(c, "Copy retrieved successfully", copy)
}

// UpdateCopyRequest represents update copy request body
type UpdateCopyRequest struct {
	CopyNumber *int    `json:"copy_number"`
	Edition    *string `json:"edition"`
	Condition  *string `json:"condition"`
}

// Update handles copy update
// @Summary Update copy
// @Description Update a copy's descriptive fields
// @Tags Copies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Copy ID"
// @Param body body UpdateCopyRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /copies/{id} [put]
func (h *CopyHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid copy ID")
	}

	var req UpdateCopyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	copy, err := h.copyService.Update(c.Context(), uint(id), &services.UpdateCopyInput{
		CopyNumber: req.CopyNumber,
		Edition:    req.Edition,
		Condition:  req.Condition,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCopyNotFoundSvc):
			return response.NotFound(c, "Copy not found")
		case errors.Is(err, services.ErrCopyNumberTaken):
			return response.Conflict(c, "A copy with this number already exists for the book")
		default:
			return response.InternalServerError(c, "Failed to update copy")
		}
	}

	return response.Success(c, "Copy updated successfully", copy)
}

// Delete handles copy deletion
// @Summary Delete copy
// @Description Delete a copy; rejected while on loan or referenced by loan history
// @Tags Copies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Copy ID"
// @Success 204
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /copies/{id} [delete]
func (h *CopyHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid copy ID")
	}

	if err := h.copyService.Delete(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrCopyNotFoundSvc):
			return response.NotFound(c, "Copy not found")
		case errors.Is(err, services.ErrCopyOnLoan):
			return response.Conflict(c, "Copy is currently on loan")
		case errors.Is(err, services.ErrCopyWasLoaned):
			return response.Conflict(c, "Copy has loan history and cannot be deleted")
		default:
			return response.InternalServerError(c, "Failed to delete copy")
		}
	}

	return response.NoContent(c)
}
