package handlers

import (
	"errors"
	"strconv"
	"time"

	"libris-backend/internal/core/domain"
	"libris-backend/internal/core/services"
	"libris-backend/internal/pkg/pagination"
	"libris-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan lifecycle endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// OpenLoanRequest represents open loan request body
type OpenLoanRequest struct {
	CopyID     uint      `json:"copy_id"`
	BorrowerID uint      `json:"borrower_id"`
	LenderID   uint      `json:"lender_id"`
	DueDate    time.Time `json:"due_date"`
}

// Open handles opening a loan
// @Summary Open loan
// @Description Lend a copy to a borrower; all policy checks must pass
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body OpenLoanRequest true "Loan data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Open(c *fiber.Ctx) error {
	var req OpenLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.CopyID == 0 {
		return response.BadRequest(c, "Copy ID is required")
	}
	if req.BorrowerID == 0 {
		return response.BadRequest(c, "Borrower ID is required")
	}
	if req.LenderID == 0 {
		return response.BadRequest(c, "Lender ID is required")
	}
	if req.DueDate.IsZero() {
		return response.BadRequest(c, "Due date is required")
	}

	loan, err := h.loanService.Open(c.Context(), &services.OpenLoanInput{
		CopyID:     req.CopyID,
		BorrowerID: req.BorrowerID,
		LenderID:   req.LenderID,
		DueDate:    req.DueDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCopyNotFoundSvc):
			return response.NotFound(c, "Book copy not found")
		case errors.Is(err, services.ErrBorrowerNotFound):
			return response.NotFound(c, "Borrower not found")
		case errors.Is(err, services.ErrLenderNotFound):
			return response.NotFound(c, "Lender not found")
		case errors.Is(err, domain.ErrDueDateNotFuture):
			return response.Conflict(c, "Due date must be in the future")
		case errors.Is(err, domain.ErrCopyNotAvailable):
			return response.Conflict(c, "Copy is not available")
		case errors.Is(err, domain.ErrLenderNotCapable):
			return response.Conflict(c, "Lender must be an employee or admin")
		case errors.Is(err, domain.ErrLoanLimitExceeded):
			return response.Conflict(c, "Borrower has reached the active loan limit")
		case errors.Is(err, domain.ErrBorrowerDelinquent):
			return response.Conflict(c, "Borrower holds overdue loans")
		default:
			return response.InternalServerError(c, "Failed to open loan")
		}
	}

	return response.Created(c, "Loan opened successfully", loan)
}

// List handles loan listing
// @Summary List loans
// @Description List loans with pagination; active=true/false filters open/closed
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param active query bool false "Filter open (true) or closed (false) loans"
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	p := pagination.GetParams(c)

	input := &services.ListLoansInput{Page: p.Page, Limit: p.Limit}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid active filter")
		}
		input.Active = &active
	}

	result, err := h.loanService.List(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", result)
}

// GetByID handles fetching one loan with details
// @Summary Get loan
// @Description Get a loan by ID with book and user details
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrLoanNotFoundSvc) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", loan)
}

// ReturnLoanRequest represents return loan request body
type ReturnLoanRequest struct {
	ReturnDate *time.Time `json:"return_date"`
}

// Return handles closing a loan
// @Summary Return loan
// @Description Close an open loan and restore copy availability
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body ReturnLoanRequest false "Optional return date"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/return [post]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req ReturnLoanRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	loan, err := h.loanService.Return(c.Context(), uint(id), &services.ReturnLoanInput{
		ReturnDate: req.ReturnDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoanNotFoundSvc):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanAlreadyReturned):
			return response.Conflict(c, "Loan has already been returned")
		default:
			return response.InternalServerError(c, "Failed to return loan")
		}
	}

	return response.Success(c, "Loan returned successfully", loan)
}

// UpdateDueDateRequest represents due date update request body
type UpdateDueDateRequest struct {
	DueDate time.Time `json:"due_date"`
}

// UpdateDueDate handles moving the due date of an open loan
// @Summary Update due date
// @Description Move the due date of an open loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body UpdateDueDateRequest true "New due date"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/due-date [patch]
func (h *LoanHandler) UpdateDueDate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req UpdateDueDateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.DueDate.IsZero() {
		return response.BadRequest(c, "Due date is required")
	}

	loan, err := h.loanService.UpdateDueDate(c.Context(), uint(id), &services.UpdateDueDateInput{
		DueDate: req.DueDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoanNotFoundSvc):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanAlreadyReturned):
			return response.Conflict(c, "Loan has already been returned")
		case errors.Is(err, domain.ErrDueDateNotFuture):
			return response.Conflict(c, "Due date must be in the future")
		default:
			return response.InternalServerError(c, "Failed to update due date")
		}
	}

	return response.Success(c, "Due date updated successfully", loan)
}

// ListOverdue handles listing overdue loans
// @Summary List overdue loans
// @Description List open loans past their due date
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans/overdue [get]
func (h *LoanHandler) ListOverdue(c *fiber.Ctx) error {
	loans, err := h.loanService.ListOverdue(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list overdue loans")
	}

	return response.Success(c, "Overdue loans retrieved successfully", loans)
}

// ListByUser handles listing one borrower's loans
// @Summary List loans by user
// @Description List the loans of one borrower; active=true/false filters open/closed
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param active query bool false "Filter open (true) or closed (false) loans"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/user/{id} [get]
func (h *LoanHandler) ListByUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var active *bool
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid active filter")
		}
		active = &parsed
	}

	loans, err := h.loanService.ListByUser(c.Context(), uint(id), active)
	if err != nil {
		if errors.Is(err, services.ErrBorrowerNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", loans)
}

// OverdueStats handles the overdue aggregate report
// @Summary Overdue loan stats
// @Description Count overdue loans and list the borrowers holding them
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans/stats/overdue [get]
func (h *LoanHandler) OverdueStats(c *fiber.Ctx) error {
	stats, err := h.loanService.OverdueStats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build overdue stats")
	}

	return response.Success(c, "Overdue stats retrieved successfully", stats)
}

// ActiveStats handles the open-loan aggregate report
// @Summary Active loan stats
// @Description Count open loans and list the borrowers holding them
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans/stats/active [get]
func (h *LoanHandler) ActiveStats(c *fiber.Ctx) error {
	stats, err := h.loanService.ActiveStats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build active stats")
	}

	return response.Success(c, "Active stats retrieved successfully", stats)
}
