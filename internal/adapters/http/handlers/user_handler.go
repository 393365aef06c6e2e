package handlers

import (
	"errors"
	"strconv"
	"time"

	"libris-backend/internal/core/services"
	"libris-backend/internal/pkg/pagination"
	"libris-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents create user request body
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`

	Position *string `json:"position"`
	HiredAt  *string `json:"hired_at"`

	CustomerType *string `json:"customer_type"`
	Address      *string `json:"address"`
}

// Create handles user creation (staff accounts included)
// @Summary Create user
// @Description Create a new user with any role
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateUserRequest true "User data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}
	if req.Role == "" {
		return response.BadRequest(c, "Role is required")
	}

	input := &services.CreateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		Position:     req.Position,
		CustomerType: req.CustomerType,
		Address:      req.Address,
	}

	if req.HiredAt != nil {
		hiredAt, err := time.Parse("2006-01-02", *req.HiredAt)
		if err != nil {
			return response.BadRequest(c, "Invalid hired_at date (expected YYYY-MM-DD)")
		}
		input.HiredAt = &hiredAt
	}

	user, err := h.userService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail):
			return response.BadRequest(c, "Invalid email address")
		case errors.Is(err, services.ErrPasswordTooShort):
			return response.BadRequest(c, "Password must be at least 8 characters")
		case errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Role must be CUSTOMER, EMPLOYEE or ADMIN")
		case errors.Is(err, services.ErrEmailAlreadyExists):
			return response.Conflict(c, "Email already registered")
		default:
			return response.InternalServerError(c, "Failed to create user")
		}
	}

	return response.Created(c, "User created successfully", user)
}

// List handles user listing
// @Summary List users
// @Description List users with pagination, optionally filtered by role
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param role query string false "Filter by role"
// @Param email query string false "Look up a single user by email"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	// Exact email lookup short-circuits the listing
	if email := c.Query("email"); email != "" {
		user, err := h.userService.GetByEmail(c.Context(), email)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFoundSvc) {
				return response.NotFound(c, "User not found")
			}
			return response.InternalServerError(c, "Failed to get user")
		}
		return response.Success(c, "User retrieved successfully", user)
	}

	p := pagination.GetParams(c)

	result, err := h.userService.List(c.Context(), &services.ListUsersInput{
		Page:  p.Page,
		Limit: p.Limit,
		Role:  c.Query("role"),
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidRole) {
			return response.BadRequest(c, "Role must be CUSTOMER, EMPLOYEE or ADMIN")
		}
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", result)
}

// GetByID handles fetching one user
// @Summary Get user
// @Description Get a user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFoundSvc) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", user)
}

// ListEmployees handles listing employees by position
// @Summary List employees
// @Description List employees, optionally filtered by position
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param position query string false "Filter by position"
// @Success 200 {object} response.Response
// @Router /users/employees [get]
func (h *UserHandler) ListEmployees(c *fiber.Ctx) error {
	users, err := h.userService.ListEmployeesByPosition(c.Context(), c.Query("position"))
	if err != nil {
		return response.InternalServerError(c, "Failed to list employees")
	}

	return response.Success(c, "Employees retrieved successfully", users)
}

// ListCustomers handles listing customers by type
// @Summary List customers
// @Description List customers, optionally filtered by customer type
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param type query string false "Filter by customer type"
// @Success 200 {object} response.Response
// @Router /users/customers [get]
func (h *UserHandler) ListCustomers(c *fiber.Ctx) error {
	users, err := h.userService.ListCustomersByType(c.Context(), c.Query("type"))
	if err != nil {
		return response.InternalServerError(c, "Failed to list customers")
	}

	return response.Success(c, "Customers retrieved successfully", users)
}

// UpdateUserRequest represents update user request body
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`

	Position     *string `json:"position"`
	HiredAt      *string `json:"hired_at"`
	CustomerType *string `json:"customer_type"`
	Address      *string `json:"address"`
	IsActive     *bool   `json:"is_active"`
}

// Update handles user update
// @Summary Update user
// @Description Update a user's fields
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body UpdateUserRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Position:     req.Position,
		CustomerType: req.CustomerType,
		Address:      req.Address,
		IsActive:     req.IsActive,
	}

	if req.HiredAt != nil {
		hiredAt, err := time.Parse("2006-01-02", *req.HiredAt)
		if err != nil {
			return response.BadRequest(c, "Invalid hired_at date (expected YYYY-MM-DD)")
		}
		input.HiredAt = &hiredAt
	}

	user, err := h.userService.Update(c.Context(), uint(id), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFoundSvc):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrInvalidEmail):
			return response.BadRequest(c, "Invalid email address")
		case errors.Is(err, services.ErrPasswordTooShort):
			return response.BadRequest(c, "Password must be at least 8 characters")
		case errors.Is(err, services.ErrEmailAlreadyExists):
			return response.Conflict(c, "Email already registered")
		default:
			return response.InternalServerError(c, "Failed to update user")
		}
	}

	return response.Success(c, "User updated successfully", user)
}

// Delete handles user deletion
// @Summary Delete user
// @Description Delete a user; rejected while the user holds open loans
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	requesterID, _ := c.Locals("userID").(uint)

	if err := h.userService.Delete(c.Context(), uint(id), requesterID); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFoundSvc):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrCannotDeleteSelf):
			return response.Conflict(c, "Cannot delete own account")
		case errors.Is(err, services.ErrUserHasOpenLoans):
			return response.Conflict(c, "User still holds open loans")
		default:
			return response.InternalServerError(c, "Failed to delete user")
		}
	}

	return response.NoContent(c)
}
