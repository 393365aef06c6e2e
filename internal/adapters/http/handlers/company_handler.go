package handlers

import (
	"errors"
	"strconv"

	"libris-backend/internal/core/services"
	"libris-backend/internal/pkg/pagination"
	"libris-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CompanyHandler handles corporate customer endpoints
type CompanyHandler struct {
	companyService *services.CompanyService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyService *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// CreateCompanyRequest represents create company request body
type CreateCompanyRequest struct {
	RegistrationNo string `json:"registration_no"`
	LegalName      string `json:"legal_name"`
	TradeName      string `json:"trade_name"`
	ContactNumber  string `json:"contact_number"`
	ContactEmail   string `json:"contact_email"`
	Website        string `json:"website"`
}

// Create handles company creation
// @Summary Create company
// @Description Register a corporate customer
// @Tags Companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateCompanyRequest true "Company data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /companies [post]
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var req CreateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.RegistrationNo == "" {
		return response.BadRequest(c, "Registration number is required")
	}
	if req.LegalName == "" {
		return response.BadRequest(c, "Legal name is required")
	}

	company, err := h.companyService.Create(c.Context(), &services.CreateCompanyInput{
		RegistrationNo: req.RegistrationNo,
		LegalName:      req.LegalName,
		TradeName:      req.TradeName,
		ContactNumber:  req.ContactNumber,
		ContactEmail:   req.ContactEmail,
		Website:        req.Website,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRegistrationNo):
			return response.BadRequest(c, "Invalid registration number")
		case errors.Is(err, services.ErrRegistrationNoTaken):
			return response.Conflict(c, "A company with this registration number already exists")
		default:
			return response.InternalServerError(c, "Failed to create company")
		}
	}

	return response.Created(c, "Company created successfully", company)
}

// List handles company listing
// @Summary List companies
// @Description List companies with pagination
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /companies [get]
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	p := pagination.GetParams(c)

	result, err := h.companyService.List(c.Context(), p.Page, p.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list companies")
	}

	return response.Success(c, "Companies retrieved successfully", result)
}

// GetByID handles fetching one company
// @Summary Get company
// @Description Get a company by ID
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid company ID")
	}

	company, err := h.companyService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrCompanyNotFoundSvc) {
			return response.NotFound(c, "Company not found")
		}
		return response.InternalServerError(c, "Failed to get company")
	}

	return response.Success(c, "Company retrieved successfully", company)
}

// GetByRegistrationNo handles company lookup by registration number
// @Summary Get company by registration number
// @Description Look up a company by its registration number
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Param no path string true "Registration number"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/registration/{no} [get]
func (h *CompanyHandler) GetByRegistrationNo(c *fiber.Ctx) error {
	registrationNo := c.Params("no")
	if registrationNo == "" {
		return response.BadRequest(c, "Registration number is required")
	}

	company, err := h.companyService.GetByRegistrationNo(c.Context(), registrationNo)
	if err != nil {
		if errors.Is(err, services.ErrCompanyNotFoundSvc) {
			return response.NotFound(c, "Company not found")
		}
		return response.InternalServerError(c, "Failed to get company")
	}

	return response.Success(c, "Company retrieved successfully", company)
}

// UpdateCompanyRequest represents update company request body
type UpdateCompanyRequest struct {
	RegistrationNo *string `json:"registration_no"`
	LegalName      *string `json:"legal_name"`
	TradeName      *string `json:"trade_name"`
	ContactNumber  *string `json:"contact_number"`
	ContactEmail   *string `json:"contact_email"`
	Website        *string `json:"website"`
}

// Update handles company update
// @Summary Update company
// @Description Update a company's fields
// @Tags Companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Param body body UpdateCompanyRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /companies/{id} [put]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid company ID")
	}

	var req UpdateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	company, err := h.companyService.Update(c.Context(), uint(id), &services.UpdateCompanyInput{
		RegistrationNo: req.RegistrationNo,
		LegalName:      req.LegalName,
		TradeName:      req.TradeName,
		ContactNumber:  req.ContactNumber,
		ContactEmail:   req.ContactEmail,
		Website:        req.Website,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCompanyNotFoundSvc):
			return response.NotFound(c, "Company not found")
		case errors.Is(err, services.ErrInvalidRegistrationNo):
			return response.BadRequest(c, "Invalid registration number")
		case errors.Is(err, services.ErrRegistrationNoTaken):
			return response.Conflict(c, "A company with this registration number already exists")
		default:
			return response.InternalServerError(c, "Failed to update company")
		}
	}

	return response.Success(c, "Company updated successfully", company)
}

// Delete handles company deletion
// @Summary Delete company
// @Description Delete a company
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 204
// @Failure 404 {object} response.Response
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid company ID")
	}

	if err := h.companyService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrCompanyNotFoundSvc) {
			return response.NotFound(c, "Company not found")
		}
		return response.InternalServerError(c, "Failed to delete company")
	}

	return response.NoContent(c)
}
